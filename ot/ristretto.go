//
// ristretto.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// The Simplest Protocol for Oblivious Transfer over the Ristretto
// prime order group.
//  - https://eprint.iacr.org/2015/267.pdf
//  - https://ristretto.group

package ot

import (
	"encoding/binary"

	"github.com/bwesterb/go-ristretto"
	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/blake2b"
)

const ristrettoGroup = "ristretto255"

var (
	_ OT = &Ristretto{}
)

// Ristretto implements the CO OT over the ristretto255 group. Unlike
// the NIST curves, every valid encoding is a group element of prime
// order so the receiver and sender only need to check that the peer's
// encodings decode.
type Ristretto struct {
	io IO
}

// NewRistretto creates a new ristretto255 OT implementing the OT
// interface.
func NewRistretto() *Ristretto {
	return &Ristretto{}
}

// InitSender initializes the OT sender.
func (r *Ristretto) InitSender(io IO) error {
	r.io = io
	if err := SendString(io, ristrettoGroup); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver initializes the OT receiver.
func (r *Ristretto) InitReceiver(io IO) error {
	r.io = io
	name, err := ReceiveString(io)
	if err != nil {
		return err
	}
	if name != ristrettoGroup {
		return errors.Newf("invalid group %s, expected %s",
			name, ristrettoGroup)
	}
	return nil
}

// Send sends the wire labels with OT.
func (r *Ristretto) Send(wires []Wire) error {
	var a ristretto.Scalar
	a.Rand()

	var A ristretto.Point
	A.ScalarMultBase(&a)

	if err := r.io.SendData(A.Bytes()); err != nil {
		return err
	}
	if err := r.io.Flush(); err != nil {
		return err
	}

	keys := make([]Wire, len(wires))
	for i := 0; i < len(wires); i++ {
		data, err := r.io.ReceiveData()
		if err != nil {
			return err
		}
		B, err := decodePoint(data)
		if err != nil {
			return errors.Wrapf(err, "ristretto: B[%d]", i)
		}
		var k0, k1, sub ristretto.Point
		k0.ScalarMult(B, &a)
		sub.Sub(B, &A)
		k1.ScalarMult(&sub, &a)

		keys[i].L0 = pointKey(&k0, i)
		keys[i].L1 = pointKey(&k1, i)
	}

	var ld LabelData
	for i := 0; i < len(wires); i++ {
		e0 := keys[i].L0
		e0.Xor(wires[i].L0)
		e1 := keys[i].L1
		e1.Xor(wires[i].L1)

		if err := r.io.SendLabel(e0, &ld); err != nil {
			return err
		}
		if err := r.io.SendLabel(e1, &ld); err != nil {
			return err
		}
	}
	return r.io.Flush()
}

// Receive receives the wire labels with OT based on the flag values.
func (r *Ristretto) Receive(flags []bool, result []Label) error {
	if len(flags) != len(result) {
		return errors.Newf("ristretto: #flags=%d != #result=%d",
			len(flags), len(result))
	}
	data, err := r.io.ReceiveData()
	if err != nil {
		return err
	}
	A, err := decodePoint(data)
	if err != nil {
		return errors.Wrap(err, "ristretto: A")
	}

	bs := make([]ristretto.Scalar, len(flags))
	for i := 0; i < len(flags); i++ {
		bs[i].Rand()

		var B ristretto.Point
		B.ScalarMultBase(&bs[i])
		if flags[i] {
			B.Add(&B, A)
		}
		if err := r.io.SendData(B.Bytes()); err != nil {
			return err
		}
	}
	if err := r.io.Flush(); err != nil {
		return err
	}

	var ld LabelData
	for i := 0; i < len(flags); i++ {
		var e0, e1 Label
		if err := r.io.ReceiveLabel(&e0, &ld); err != nil {
			return err
		}
		if err := r.io.ReceiveLabel(&e1, &ld); err != nil {
			return err
		}
		var k ristretto.Point
		k.ScalarMult(A, &bs[i])

		result[i] = pointKey(&k, i)
		if flags[i] {
			result[i].Xor(e1)
		} else {
			result[i].Xor(e0)
		}
	}
	return nil
}

func decodePoint(data []byte) (*ristretto.Point, error) {
	if len(data) != 32 {
		return nil, errors.Wrapf(ErrInvalidPoint, "encoding length %d",
			len(data))
	}
	var buf [32]byte
	copy(buf[:], data)

	p := new(ristretto.Point)
	if !p.SetBytes(&buf) {
		return nil, ErrInvalidPoint
	}
	return p, nil
}

// pointKey derives the label encryption key from the shared point p
// for the OT index id.
func pointKey(p *ristretto.Point, id int) Label {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(id))

	h, _ := blake2b.New(16, nil)
	h.Write(tmp[:])
	h.Write(p.Bytes())

	var key Label
	key.SetBytes(h.Sum(nil))
	return key
}
