//
// matrix.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Probe-resistant input encoding:
//
// An Efficient Protocol for Secure Two-Party Computation in the
// Presence of Malicious Adversaries, section 5.2.1
//  - https://eprint.iacr.org/2008/049.pdf

// Package prmatrix implements k-probe-resistant matrices. The
// evaluator encodes its input y into a random y' with M·y' = y and
// uses y' as its OT choice bits; the garbled circuit recomputes y
// from y'. Since every non-empty XOR of rows of M has weight at least
// k, a garbler that corrupts fewer than k OT keys learns nothing
// about y from the evaluator aborting or not.
package prmatrix

import (
	"fmt"
	"io"
	"math/bits"
	"strconv"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/malyao/mpcerr"
)

// Kind identifies the matrix construction.
type Kind byte

// Matrix constructions.
const (
	// Random matrices are uniformly random with m = max(4n, 8s)
	// columns.
	Random Kind = iota

	// Block matrices repeat each input bit s times. They have n·s
	// columns and are s-probe-resistant by construction.
	Block
)

var kinds = map[Kind]string{
	Random: "random",
	Block:  "block",
}

func (k Kind) String() string {
	name, ok := kinds[k]
	if ok {
		return name
	}
	return "{Kind " + strconv.Itoa(int(k)) + "}"
}

// ParseKind parses the matrix construction name.
func ParseKind(name string) (Kind, error) {
	for k, v := range kinds {
		if v == name {
			return k, nil
		}
	}
	return 0, errors.Newf("unknown matrix kind '%s'", name)
}

// Matrix defines a k-probe-resistant binary matrix with N rows and M
// columns.
type Matrix interface {
	// Kind returns the matrix construction.
	Kind() Kind

	// N returns the number of rows.
	N() int

	// M returns the number of columns.
	M() int

	// K returns the probe-resistance parameter.
	K() int

	// Row returns the row i. The caller must not modify the row.
	Row(i int) *bitset.BitSet

	// Encode returns a uniformly random y' for which M·y' = y.
	Encode(y *bitset.BitSet, rand io.Reader) (*bitset.BitSet, error)

	// Decode computes y = M·y'.
	Decode(yp *bitset.BitSet) *bitset.BitSet

	// Marshal encodes the matrix description.
	Marshal() []byte
}

// Build creates a new n-row matrix of the kind with the statistical
// parameter s.
func Build(kind Kind, n, s int, rand io.Reader) (Matrix, error) {
	if n <= 0 {
		return nil, mpcerr.Configuration("prmatrix: invalid rows %d", n)
	}
	if s <= 0 {
		return nil, mpcerr.Configuration(
			"prmatrix: invalid statistical parameter %d", s)
	}
	switch kind {
	case Random:
		matrix, err := newRandom(n, s, rand)
		if err != nil {
			return nil, err
		}
		return matrix, nil
	case Block:
		return newBlock(n, s), nil
	default:
		return nil, mpcerr.Configuration("prmatrix: unsupported kind %v",
			kind)
	}
}

// rows implements the row storage and decoding shared by all
// matrices.
type rows struct {
	n    int
	m    int
	k    int
	data []*bitset.BitSet
}

func (r *rows) String() string {
	return fmt.Sprintf("%dx%d k=%d", r.n, r.m, r.k)
}

func (r *rows) N() int {
	return r.n
}

func (r *rows) M() int {
	return r.m
}

func (r *rows) K() int {
	return r.k
}

func (r *rows) Row(i int) *bitset.BitSet {
	return r.data[i]
}

func (r *rows) Decode(yp *bitset.BitSet) *bitset.BitSet {
	y := bitset.New(uint(r.n))
	for i, row := range r.data {
		if row.IntersectionCardinality(yp)%2 == 1 {
			y.Set(uint(i))
		}
	}
	return y
}

func randomBits(m int, rand io.Reader) (*bitset.BitSet, error) {
	buf := make([]byte, (m+7)/8)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, err
	}
	bs := bitset.New(uint(m))
	for i := 0; i < m; i++ {
		if buf[i/8]&(1<<(i%8)) != 0 {
			bs.Set(uint(i))
		}
	}
	return bs, nil
}

// ProbeResistant tests exhaustively that the XOR of every non-empty
// subset of the matrix rows has at least k bits set. The test is
// exponential in the number of rows.
func ProbeResistant(m Matrix, k int) bool {
	n := m.N()
	if n > 24 {
		return false
	}
	// Gray code enumeration: consecutive subsets differ by one row.
	acc := bitset.New(uint(m.M()))
	for i := uint64(1); i < 1<<n; i++ {
		row := bits.TrailingZeros64(i)
		acc.InPlaceSymmetricDifference(m.Row(row))
		if int(acc.Count()) < k {
			return false
		}
	}
	return true
}
