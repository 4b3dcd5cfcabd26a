//
// eval.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/malyao/ot"
	"github.com/markkurossi/malyao/symenc"
)

// Eval evaluates the garbled circuit with the input labels and
// returns the output labels.
func (c *Circuit) Eval(tables []byte, inputs []ot.Label,
	enc symenc.Cipher) ([]ot.Label, error) {

	if len(inputs) != c.NumInputs() {
		return nil, errors.Newf("eval: got %d inputs, expected %d",
			len(inputs), c.NumInputs())
	}
	if len(tables) != c.TableSize(enc) {
		return nil, errors.Newf("eval: invalid tables size %d, expected %d",
			len(tables), c.TableSize(enc))
	}
	kdf, err := newRowKDF(enc.KeySize())
	if err != nil {
		return nil, err
	}
	rowSize := RowSize(enc)

	wires := make([]ot.Label, c.NumWires)
	copy(wires, inputs)

	var ofs int
	for id, g := range c.Gates {
		a := wires[g.Input0]

		switch g.Op {
		case XOR, XNOR:
			wires[g.Output] = a
			wires[g.Output].Xor(wires[g.Input1])

		case INV:
			wires[g.Output] = a

		case AND, OR:
			b := wires[g.Input1]
			row := rowIndex(a, b)
			start := ofs + row*rowSize
			plain, err := enc.Decrypt(kdf.key(a, b, uint32(id), row),
				tables[start:start+rowSize])
			if err != nil {
				return nil, errors.Wrapf(err, "eval: gate %d", id)
			}
			if len(plain) != len(ot.LabelData{}) {
				return nil, errors.Newf("eval: gate %d: invalid label", id)
			}
			wires[g.Output].SetBytes(plain)
			ofs += 4 * rowSize

		default:
			return nil, errors.Newf("eval: invalid operation %v", g.Op)
		}
	}
	return wires[c.NumWires-c.NumOutputs():], nil
}

// Decode decodes the output labels into output bits.
func Decode(outputs []ot.Label, decoding []bool) ([]bool, error) {
	if len(outputs) != len(decoding) {
		return nil, errors.Newf("decode: #outputs=%d != #decoding=%d",
			len(outputs), len(decoding))
	}
	result := make([]bool, len(outputs))
	for i, l := range outputs {
		result[i] = l.S() != decoding[i]
	}
	return result, nil
}
