//
// garble.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/malyao/ot"
	"github.com/markkurossi/malyao/symenc"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

const garbleInfo = "malyao garble v1"

// SeedSize defines the garbling seed size in bytes.
const SeedSize = 32

// Garbled contains the garbler's view of a garbled circuit.
type Garbled struct {
	// Delta is the free-XOR offset: L1 = L0 ^ Delta for all wires.
	Delta ot.Label

	// Inputs hold the garbler and evaluator input wire labels.
	Inputs []ot.Wire

	// Outputs hold the output wire labels.
	Outputs []ot.Wire

	// Tables contains the garbled tables of the AND and OR gates in
	// gate order, 4 rows per gate.
	Tables []byte

	// Decoding holds the output decoding bits.
	Decoding []bool
}

// RowSize returns the garbled table row size with the cipher.
func RowSize(enc symenc.Cipher) int {
	return 16 + enc.Overhead(16)
}

// TableSize returns the size of the circuit's garbled tables in bytes.
func (c *Circuit) TableSize(enc symenc.Cipher) int {
	return c.NumTables() * 4 * RowSize(enc)
}

// NewPRG creates a pseudorandom generator expanding the seed. The
// info separates independent streams from the same seed.
func NewPRG(seed []byte, info string) (io.Reader, error) {
	var key [16]byte
	if _, err := io.ReadFull(hkdf.New(sha256.New, seed, nil, []byte(info)),
		key[:]); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	var iv [aes.BlockSize]byte
	return &cipher.StreamReader{
		S: cipher.NewCTR(block, iv[:]),
		R: zeros{},
	}, nil
}

type zeros struct{}

func (z zeros) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

// Garble garbles the circuit with randomness derived from seed. The
// same seed, circuit, and cipher always produce the same garbled
// circuit.
func (c *Circuit) Garble(seed []byte, enc symenc.Cipher) (*Garbled, error) {
	if len(seed) != SeedSize {
		return nil, errors.Newf("garble: invalid seed size %d", len(seed))
	}
	prg, err := NewPRG(seed, garbleInfo)
	if err != nil {
		return nil, err
	}
	delta, err := ot.NewLabel(prg)
	if err != nil {
		return nil, err
	}
	delta.SetS(true)

	wires := make([]ot.Label, c.NumWires)
	numInputs := c.NumInputs()
	for i := 0; i < numInputs; i++ {
		wires[i], err = ot.NewLabel(prg)
		if err != nil {
			return nil, err
		}
	}

	rowSize := RowSize(enc)
	tables := make([]byte, 0, c.TableSize(enc))
	kdf, err := newRowKDF(enc.KeySize())
	if err != nil {
		return nil, err
	}

	for id, g := range c.Gates {
		a := wires[g.Input0]

		switch g.Op {
		case XOR:
			wires[g.Output] = a
			wires[g.Output].Xor(wires[g.Input1])

		case XNOR:
			wires[g.Output] = a
			wires[g.Output].Xor(wires[g.Input1])
			wires[g.Output].Xor(delta)

		case INV:
			wires[g.Output] = a
			wires[g.Output].Xor(delta)

		case AND, OR:
			c0, err := ot.NewLabel(prg)
			if err != nil {
				return nil, err
			}
			wires[g.Output] = c0
			c1 := c0
			c1.Xor(delta)

			b := wires[g.Input1]
			var rows [4][]byte
			for ia := 0; ia < 2; ia++ {
				la := label(a, delta, ia)
				for ib := 0; ib < 2; ib++ {
					lb := label(b, delta, ib)

					var lc ot.Label
					if apply(g.Op, ia, ib) {
						lc = c1
					} else {
						lc = c0
					}
					row := rowIndex(la, lb)
					var ld ot.LabelData
					rows[row], err = enc.Encrypt(
						kdf.key(la, lb, uint32(id), row), lc.Bytes(&ld), prg)
					if err != nil {
						return nil, err
					}
					if len(rows[row]) != rowSize {
						return nil, errors.Newf("garble: row size %d != %d",
							len(rows[row]), rowSize)
					}
				}
			}
			for _, row := range rows {
				tables = append(tables, row...)
			}

		default:
			return nil, errors.Newf("garble: invalid operation %v", g.Op)
		}
	}

	result := &Garbled{
		Delta:    delta,
		Inputs:   make([]ot.Wire, numInputs),
		Outputs:  make([]ot.Wire, c.NumOutputs()),
		Tables:   tables,
		Decoding: make([]bool, c.NumOutputs()),
	}
	for i := 0; i < numInputs; i++ {
		result.Inputs[i] = wire(wires[i], delta)
	}
	base := c.NumWires - c.NumOutputs()
	for i := 0; i < c.NumOutputs(); i++ {
		result.Outputs[i] = wire(wires[base+i], delta)
		result.Decoding[i] = wires[base+i].S()
	}
	return result, nil
}

func wire(l0, delta ot.Label) ot.Wire {
	l1 := l0
	l1.Xor(delta)
	return ot.Wire{
		L0: l0,
		L1: l1,
	}
}

func label(l0, delta ot.Label, bit int) ot.Label {
	if bit == 1 {
		l0.Xor(delta)
	}
	return l0
}

func apply(op Operation, a, b int) bool {
	switch op {
	case AND:
		return a&b == 1
	case OR:
		return a|b == 1
	default:
		return false
	}
}

func rowIndex(a, b ot.Label) int {
	var ret int
	if a.S() {
		ret |= 0x2
	}
	if b.S() {
		ret |= 0x1
	}
	return ret
}

// rowKDF derives the row encryption keys from the input labels.
type rowKDF struct {
	size int
	buf  [40]byte
}

func newRowKDF(size int) (*rowKDF, error) {
	if size <= 0 || size > blake2b.Size {
		return nil, errors.Newf("garble: invalid key size %d", size)
	}
	return &rowKDF{
		size: size,
	}, nil
}

func (kdf *rowKDF) key(a, b ot.Label, gate uint32, row int) []byte {
	var ld ot.LabelData
	copy(kdf.buf[0:], a.Bytes(&ld))
	copy(kdf.buf[16:], b.Bytes(&ld))
	binary.BigEndian.PutUint32(kdf.buf[32:], gate)
	binary.BigEndian.PutUint32(kdf.buf[36:], uint32(row))

	h, _ := blake2b.New(kdf.size, nil)
	h.Write(kdf.buf[:])
	return h.Sum(nil)
}
