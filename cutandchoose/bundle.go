//
// bundle.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package cutandchoose implements the cut-and-choose of the offline
// phase. The garbler commits to N garbled circuit bundles, the
// parties toss a joint challenge, the garbler opens the checked
// bundles by revealing their garbling seeds, and the evaluator keeps
// the remaining bundles for evaluation.
package cutandchoose

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/ot"
)

// Shape defines the dimensions of the bundles of a circuit type.
type Shape struct {
	// N1 is the number of garbler input wires.
	N1 int
	// N2 is the number of evaluator input wires after the input
	// extension.
	N2 int
	// Outputs is the number of output wires.
	Outputs int
	// Shares is the number of secret-sharing commitments.
	Shares int
}

func (s Shape) String() string {
	return fmt.Sprintf("n1=%d n2=%d out=%d shares=%d",
		s.N1, s.N2, s.Outputs, s.Shares)
}

// HeaderSize returns the size of the marshalled bundle header.
func (s Shape) HeaderSize() int {
	return 4 + DigestSize + (s.Outputs+7)/8 +
		(2*s.N1+2*s.N2+s.Shares)*DigestSize
}

// Bundle is the evaluator's view of a committed garbled circuit.
type Bundle struct {
	Index        int
	TablesDigest Digest
	Decoding     []bool

	// P1Inputs holds the commitments of the garbler's input wire
	// labels. The pair is ordered by the labels' permutation bits so
	// an opened label does not reveal its value.
	P1Inputs [][2]Digest

	// P2Inputs holds the commitments of the evaluator's extended
	// input wire labels, ordered by value.
	P2Inputs [][2]Digest

	// Shares holds the commitments of the cheating-recovery secret
	// shares.
	Shares []Digest

	// Tables holds the garbled tables. It is nil when the tables are
	// kept in a table store.
	Tables []byte

	// Choices holds the extended input bits the evaluator received
	// the keys for.
	Choices []bool

	keys   []ot.Label
	keyed  []bool
	sealed bool
}

func (b *Bundle) String() string {
	return fmt.Sprintf("bundle %d: tables=%v", b.Index, b.TablesDigest)
}

// Shape returns the bundle's shape.
func (b *Bundle) Shape() Shape {
	return Shape{
		N1:      len(b.P1Inputs),
		N2:      len(b.P2Inputs),
		Outputs: len(b.Decoding),
		Shares:  len(b.Shares),
	}
}

// Marshal encodes the bundle header. The header contains all
// commitments of the bundle but not the garbled tables.
func (b *Bundle) Marshal() []byte {
	shape := b.Shape()
	buf := make([]byte, shape.HeaderSize())

	binary.BigEndian.PutUint32(buf, uint32(b.Index))
	ofs := 4
	ofs += copy(buf[ofs:], b.TablesDigest[:])
	for i, bit := range b.Decoding {
		if bit {
			buf[ofs+i/8] |= 1 << (i % 8)
		}
	}
	ofs += (len(b.Decoding) + 7) / 8
	for _, pair := range b.P1Inputs {
		ofs += copy(buf[ofs:], pair[0][:])
		ofs += copy(buf[ofs:], pair[1][:])
	}
	for _, pair := range b.P2Inputs {
		ofs += copy(buf[ofs:], pair[0][:])
		ofs += copy(buf[ofs:], pair[1][:])
	}
	for _, share := range b.Shares {
		ofs += copy(buf[ofs:], share[:])
	}
	return buf
}

// UnmarshalBundle decodes the bundle header with the shape.
func UnmarshalBundle(data []byte, shape Shape) (*Bundle, error) {
	if len(data) != shape.HeaderSize() {
		return nil, errors.Newf("bundle: invalid header size %d, expected %d",
			len(data), shape.HeaderSize())
	}
	b := &Bundle{
		Index:    int(binary.BigEndian.Uint32(data)),
		Decoding: make([]bool, shape.Outputs),
		P1Inputs: make([][2]Digest, shape.N1),
		P2Inputs: make([][2]Digest, shape.N2),
		Shares:   make([]Digest, shape.Shares),
	}
	ofs := 4
	ofs += copy(b.TablesDigest[:], data[ofs:])
	for i := range b.Decoding {
		b.Decoding[i] = data[ofs+i/8]&(1<<(i%8)) != 0
	}
	ofs += (shape.Outputs + 7) / 8
	for i := range b.P1Inputs {
		ofs += copy(b.P1Inputs[i][0][:], data[ofs:])
		ofs += copy(b.P1Inputs[i][1][:], data[ofs:])
	}
	for i := range b.P2Inputs {
		ofs += copy(b.P2Inputs[i][0][:], data[ofs:])
		ofs += copy(b.P2Inputs[i][1][:], data[ofs:])
	}
	for i := range b.Shares {
		ofs += copy(b.Shares[i][:], data[ofs:])
	}
	return b, nil
}

// Commit returns the commitment of the bundle header.
func (b *Bundle) Commit() Digest {
	h := newHasher(domainBundle)
	h.data(b.Marshal())
	return h.sum()
}

// Verify verifies that the bundle matches the opened bundle that the
// evaluator re-derived from the garbling seed. Verify does not modify
// the bundle and it returns a cheating attempt error naming the first
// mismatching component.
func (b *Bundle) Verify(opening *Bundle) error {
	if b.Index != opening.Index {
		return mpcerr.CheatAttempt("bundle %d: opened as bundle %d",
			b.Index, opening.Index)
	}
	if b.Shape() != opening.Shape() {
		return mpcerr.CheatAttempt("bundle %d: shape %v, opened %v",
			b.Index, b.Shape(), opening.Shape())
	}
	if !b.TablesDigest.Equal(opening.TablesDigest) {
		return mpcerr.CheatAttempt("bundle %d: garbled tables mismatch",
			b.Index)
	}
	for i, bit := range b.Decoding {
		if bit != opening.Decoding[i] {
			return mpcerr.CheatAttempt("bundle %d: output decoding %d mismatch",
				b.Index, i)
		}
	}
	for i, pair := range b.P1Inputs {
		if !pair[0].Equal(opening.P1Inputs[i][0]) ||
			!pair[1].Equal(opening.P1Inputs[i][1]) {
			return mpcerr.CheatAttempt(
				"bundle %d: P1 input commitment %d mismatch", b.Index, i)
		}
	}
	for i, pair := range b.P2Inputs {
		if !pair[0].Equal(opening.P2Inputs[i][0]) ||
			!pair[1].Equal(opening.P2Inputs[i][1]) {
			return mpcerr.CheatAttempt(
				"bundle %d: P2 input commitment %d mismatch", b.Index, i)
		}
	}
	for i, share := range b.Shares {
		if !share.Equal(opening.Shares[i]) {
			return mpcerr.CheatAttempt(
				"bundle %d: secret share commitment %d mismatch", b.Index, i)
		}
	}
	if !b.Commit().Equal(opening.Commit()) {
		return mpcerr.CheatAttempt("bundle %d: commitment mismatch", b.Index)
	}
	return nil
}

// VerifyTables checks the garbled tables against the bundle's tables
// commitment.
func (b *Bundle) VerifyTables(tables []byte) error {
	if !TablesDigest(b.Index, tables, b.Decoding).Equal(b.TablesDigest) {
		return mpcerr.CheatAttempt("bundle %d: garbled tables do not match commitment",
			b.Index)
	}
	return nil
}

// SetWireKey sets the key of the evaluator's extended input wire i
// for the input value bit. The key must open the wire's commitment.
// The key slots are read-only after the bundle is sealed.
func (b *Bundle) SetWireKey(i int, bit bool, key ot.Label) error {
	if b.sealed {
		return mpcerr.Configuration("bundle %d: sealed", b.Index)
	}
	if i < 0 || i >= len(b.P2Inputs) {
		return mpcerr.Configuration("bundle %d: invalid input wire %d",
			b.Index, i)
	}
	if b.keys == nil {
		b.keys = make([]ot.Label, len(b.P2Inputs))
		b.keyed = make([]bool, len(b.P2Inputs))
		b.Choices = make([]bool, len(b.P2Inputs))
	}
	var idx int
	if bit {
		idx = 1
	}
	if !CommitP2Input(b.Index, i, bit, key).Equal(b.P2Inputs[i][idx]) {
		return mpcerr.CheatAttempt("bundle %d: input key %d does not open commitment",
			b.Index, i)
	}
	b.keys[i] = key
	b.keyed[i] = true
	b.Choices[i] = bit
	return nil
}

// Key returns the key of the evaluator's input wire i.
func (b *Bundle) Key(i int) (ot.Label, bool) {
	if i < 0 || i >= len(b.keyed) || !b.keyed[i] {
		return ot.Label{}, false
	}
	return b.keys[i], true
}

// Keys returns the keys of the evaluator's input wires. It returns
// an error if any of the keys are missing.
func (b *Bundle) Keys() ([]ot.Label, error) {
	if len(b.keyed) != len(b.P2Inputs) {
		return nil, errors.Newf("bundle %d: no input keys", b.Index)
	}
	for i, ok := range b.keyed {
		if !ok {
			return nil, errors.Newf("bundle %d: input key %d missing",
				b.Index, i)
		}
	}
	return append([]ot.Label(nil), b.keys...), nil
}

// Seal makes the key slots read-only.
func (b *Bundle) Seal() {
	b.sealed = true
}

// Sealed tests if the bundle is sealed.
func (b *Bundle) Sealed() bool {
	return b.sealed
}
