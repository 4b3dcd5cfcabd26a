//
// kos.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// IKNP OT Extension:
//
// Extending oblivious transfers efficiently
//  - https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf
//
// Actively Secure OT Extension with Optimal Overhead
//  - https://eprint.iacr.org/2015/546.pdf

package ot

import (
	"crypto/aes"
	"crypto/cipher"
	"io"

	"github.com/cockroachdb/errors"
)

const (
	// K defines the IKNP security parameter; the number of IKNP base
	// OTs.
	K = 128

	// kosExtra is the number of random extension rows the receiver
	// adds for the KOS consistency check.
	kosExtra = 2 * K

	// Chunk size. Must be multiple of 16 (K-bits).
	chunkSize = 2 * 1024

	// The maximum number of byte-rows in a chunk.
	chunkByteRows = chunkSize / K

	// The number of label rows in a chunk.
	chunkRows = chunkByteRows * 8
)

var (
	_ OT = &KOS{}
)

// KOS implements the actively secure IKNP OT extension as the OT
// interface. The base OTs are run with the base OT implementation,
// with swapped roles: the extension sender is the base OT receiver.
type KOS struct {
	base  OT
	rand  io.Reader
	io    IO
	delta Label
	g0    [K]cipher.Stream
	g1    [K]cipher.Stream
	role  int
}

const (
	kosNone = iota
	kosSender
	kosReceiver
)

// NewKOS creates a new KOS OT extension running its base OTs with
// base.
func NewKOS(base OT, rand io.Reader) *KOS {
	return &KOS{
		base: base,
		rand: rand,
	}
}

// InitSender implements OT.InitSender.
func (kos *KOS) InitSender(io IO) error {
	if kos.role != kosNone {
		return errors.New("KOS: already initialized")
	}
	if err := kos.base.InitReceiver(io); err != nil {
		return err
	}
	delta, err := NewLabel(kos.rand)
	if err != nil {
		return err
	}
	var flags [K]bool
	for i := 0; i < K; i++ {
		flags[i] = delta.Bit(i) == 1
	}
	var k0 [K]Label
	if err := kos.base.Receive(flags[:], k0[:]); err != nil {
		return err
	}
	for i := 0; i < K; i++ {
		kos.g0[i], err = newPrg(k0[i])
		if err != nil {
			return err
		}
	}
	kos.io = io
	kos.delta = delta
	kos.role = kosSender

	return nil
}

// InitReceiver implements OT.InitReceiver.
func (kos *KOS) InitReceiver(io IO) error {
	if kos.role != kosNone {
		return errors.New("KOS: already initialized")
	}
	if err := kos.base.InitSender(io); err != nil {
		return err
	}
	var wires [K]Wire
	for i := 0; i < K; i++ {
		l0, err := NewLabel(kos.rand)
		if err != nil {
			return err
		}
		l1, err := NewLabel(kos.rand)
		if err != nil {
			return err
		}
		wires[i] = Wire{
			L0: l0,
			L1: l1,
		}
	}
	if err := kos.base.Send(wires[:]); err != nil {
		return err
	}
	var err error
	for i := 0; i < K; i++ {
		kos.g0[i], err = newPrg(wires[i].L0)
		if err != nil {
			return err
		}
		kos.g1[i], err = newPrg(wires[i].L1)
		if err != nil {
			return err
		}
	}
	kos.io = io
	kos.role = kosReceiver

	return nil
}

// Send implements OT.Send.
func (kos *KOS) Send(wires []Wire) error {
	if kos.role != kosSender {
		return errors.New("KOS: not initialized as sender")
	}
	q, err := kos.extendSender(len(wires) + kosExtra)
	if err != nil {
		return err
	}

	// Challenge for the consistency check.
	seed, err := NewLabel(kos.rand)
	if err != nil {
		return err
	}
	hashKey, err := NewLabel(kos.rand)
	if err != nil {
		return err
	}
	var ld LabelData
	if err := kos.io.SendLabel(seed, &ld); err != nil {
		return err
	}
	if err := kos.io.SendLabel(hashKey, &ld); err != nil {
		return err
	}
	if err := kos.io.Flush(); err != nil {
		return err
	}

	chiPrg, err := newPrg(seed)
	if err != nil {
		return err
	}
	q0, q1 := vectorInnPrdtSumNoRed(prgLabels(chiPrg, len(q)), q)

	var x, t0, t1 Label
	if err := kos.io.ReceiveLabel(&x, &ld); err != nil {
		return err
	}
	if err := kos.io.ReceiveLabel(&t0, &ld); err != nil {
		return err
	}
	if err := kos.io.ReceiveLabel(&t1, &ld); err != nil {
		return err
	}
	lo, hi := mul128(x, kos.delta)
	t0.Xor(lo)
	t1.Xor(hi)
	if !q0.Equal(t0) || !q1.Equal(t1) {
		return ErrConsistency
	}

	h, err := NewTCCR(hashKey)
	if err != nil {
		return err
	}
	for j := 0; j < len(wires); j++ {
		y0 := h.Hash(q[j], uint64(j))
		y0.Xor(wires[j].L0)

		qd := q[j]
		qd.Xor(kos.delta)
		y1 := h.Hash(qd, uint64(j))
		y1.Xor(wires[j].L1)

		if err := kos.io.SendLabel(y0, &ld); err != nil {
			return err
		}
		if err := kos.io.SendLabel(y1, &ld); err != nil {
			return err
		}
	}
	return kos.io.Flush()
}

// Receive implements OT.Receive.
func (kos *KOS) Receive(flags []bool, result []Label) error {
	if kos.role != kosReceiver {
		return errors.New("KOS: not initialized as receiver")
	}
	if len(flags) != len(result) {
		return errors.Newf("KOS: #flags=%d != #result=%d",
			len(flags), len(result))
	}

	b := make([]bool, len(flags)+kosExtra)
	copy(b, flags)
	var rnd [kosExtra / 8]byte
	if _, err := io.ReadFull(kos.rand, rnd[:]); err != nil {
		return err
	}
	for i := 0; i < kosExtra; i++ {
		b[len(flags)+i] = (rnd[i/8]>>(i%8))&1 == 1
	}

	t, err := kos.extendReceiver(b)
	if err != nil {
		return err
	}

	var seed, hashKey Label
	var ld LabelData
	if err := kos.io.ReceiveLabel(&seed, &ld); err != nil {
		return err
	}
	if err := kos.io.ReceiveLabel(&hashKey, &ld); err != nil {
		return err
	}
	chiPrg, err := newPrg(seed)
	if err != nil {
		return err
	}

	chi := prgLabels(chiPrg, len(t))
	t0, t1 := vectorInnPrdtSumNoRed(chi, t)
	var x Label
	for j := 0; j < len(t); j++ {
		if b[j] {
			x.Xor(chi[j])
		}
	}
	if err := kos.io.SendLabel(x, &ld); err != nil {
		return err
	}
	if err := kos.io.SendLabel(t0, &ld); err != nil {
		return err
	}
	if err := kos.io.SendLabel(t1, &ld); err != nil {
		return err
	}
	if err := kos.io.Flush(); err != nil {
		return err
	}

	h, err := NewTCCR(hashKey)
	if err != nil {
		return err
	}
	for j := 0; j < len(flags); j++ {
		var y0, y1 Label
		if err := kos.io.ReceiveLabel(&y0, &ld); err != nil {
			return err
		}
		if err := kos.io.ReceiveLabel(&y1, &ld); err != nil {
			return err
		}
		result[j] = h.Hash(t[j], uint64(j))
		if flags[j] {
			result[j].Xor(y1)
		} else {
			result[j].Xor(y0)
		}
	}
	return nil
}

// extendSender receives the receiver's u columns and returns the
// extended q rows: q[j] = t[j] ⊕ b[j]·Δ.
func (kos *KOS) extendSender(n int) ([]Label, error) {
	result := make([]Label, n)

	var t [chunkSize]byte
	for ofs := 0; ofs < n; {
		chunk, err := kos.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 || len(chunk)%K != 0 || len(chunk) > chunkSize {
			return nil, errors.Newf("KOS: invalid chunk size: %v",
				len(chunk))
		}
		byteRows := len(chunk) / K

		for i := 0; i < K; i++ {
			col := t[i*byteRows : (i+1)*byteRows]
			prg(kos.g0[i], col)
			if kos.delta.Bit(i) == 1 {
				xor(col, chunk[i*byteRows:])
			}
		}
		createLabels(result[ofs:], t[:], byteRows)

		ofs += byteRows * 8
	}
	return result, nil
}

// extendReceiver sends the u columns for the choice bits b and
// returns the t rows.
func (kos *KOS) extendReceiver(b []bool) ([]Label, error) {
	result := make([]Label, len(b))

	bbuf := make([]byte, (len(b)+7)/8)
	for i, f := range b {
		if f {
			bbuf[i/8] |= 1 << (i % 8)
		}
	}

	var chunk, out [chunkSize]byte
	var tmp [chunkByteRows]byte

	for ofs := 0; ofs < len(b); {
		rows := chunkRows
		avail := len(b) - ofs
		if rows > avail {
			rows = avail
		}
		byteRows := (rows + 7) / 8

		for i := 0; i < K; i++ {
			prg(kos.g0[i], chunk[i*byteRows:(i+1)*byteRows])
			prg(kos.g1[i], tmp[:byteRows])

			xor(tmp[:byteRows], chunk[i*byteRows:])
			xor(tmp[:byteRows], bbuf[ofs/8:])

			copy(out[i*byteRows:], tmp[:byteRows])
		}
		if err := kos.io.SendData(out[:byteRows*K]); err != nil {
			return nil, err
		}
		createLabels(result[ofs:], chunk[:], byteRows)

		ofs += rows
	}
	if err := kos.io.Flush(); err != nil {
		return nil, err
	}
	return result, nil
}

func newPrg(key Label) (cipher.Stream, error) {
	var ld LabelData
	block, err := aes.NewCipher(key.Bytes(&ld))
	if err != nil {
		return nil, err
	}
	var iv [16]byte
	return cipher.NewCTR(block, iv[:]), nil
}

func prg(c cipher.Stream, buf []byte) {
	// Clear buffer as it is shared between different caller's
	// iterations.
	for i := 0; i < len(buf); i++ {
		buf[i] = 0
	}
	c.XORKeyStream(buf, buf)
}

func prgLabels(c cipher.Stream, n int) []Label {
	result := make([]Label, n)
	var ld LabelData
	for i := 0; i < n; i++ {
		prg(c, ld[:])
		result[i].SetData(&ld)
	}
	return result
}

func createLabels(l []Label, buf []byte, w int) {
	end := w * 8
	if end > len(l) {
		end = len(l)
	}
	for i := 0; i < end; i++ {
		row := i / 8
		bit := i % 8
		for j := 0; j < K; j++ {
			v := uint((buf[j*w+row] >> bit) & 1)
			l[i].SetBit(j, v)
		}
	}
}
