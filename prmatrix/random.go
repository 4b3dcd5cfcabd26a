//
// random.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prmatrix

import (
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
)

const (
	// maxAttempts limits the random matrix sampling attempts.
	maxAttempts = 1000

	// exhaustiveLimit is the largest row count for which newly
	// sampled matrices are checked with ProbeResistant.
	exhaustiveLimit = 16
)

var (
	_ Matrix = &RandomMatrix{}
)

// RandomMatrix implements a uniformly random probe-resistant matrix.
type RandomMatrix struct {
	rows
	pivots []int
	inv    []*bitset.BitSet
}

// Kind implements Matrix.Kind.
func (r *RandomMatrix) Kind() Kind {
	return Random
}

func randomColumns(n, s int) int {
	m := 4 * n
	if 8*s > m {
		m = 8 * s
	}
	return m
}

func newRandom(n, s int, rand io.Reader) (*RandomMatrix, error) {
	m := randomColumns(n, s)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		data := make([]*bitset.BitSet, n)
		ok := true
		for i := 0; i < n; i++ {
			row, err := randomBits(m, rand)
			if err != nil {
				return nil, err
			}
			if int(row.Count()) < s {
				ok = false
				break
			}
			data[i] = row
		}
		if !ok {
			continue
		}
		matrix, err := newRandomMatrix(n, m, s, data)
		if err != nil {
			continue
		}
		if n <= exhaustiveLimit && !ProbeResistant(matrix, s) {
			continue
		}
		return matrix, nil
	}
	return nil, errors.Newf("prmatrix: failed to sample %dx%d matrix", n, m)
}

// newRandomMatrix creates the matrix from its rows. It fails if the
// rows are not linearly independent.
func newRandomMatrix(n, m, k int, data []*bitset.BitSet) (
	*RandomMatrix, error) {

	pivots, err := pivotColumns(data, m)
	if err != nil {
		return nil, err
	}
	inv, err := invert(data, pivots)
	if err != nil {
		return nil, err
	}
	return &RandomMatrix{
		rows: rows{
			n:    n,
			m:    m,
			k:    k,
			data: data,
		},
		pivots: pivots,
		inv:    inv,
	}, nil
}

// pivotColumns returns n linearly independent columns of the n-row
// matrix.
func pivotColumns(data []*bitset.BitSet, m int) ([]int, error) {
	n := len(data)
	work := make([]*bitset.BitSet, n)
	for i, row := range data {
		work[i] = row.Clone()
	}
	var pivots []int
	r := 0
	for col := 0; col < m && r < n; col++ {
		sel := -1
		for i := r; i < n; i++ {
			if work[i].Test(uint(col)) {
				sel = i
				break
			}
		}
		if sel < 0 {
			continue
		}
		work[r], work[sel] = work[sel], work[r]
		for i := 0; i < n; i++ {
			if i != r && work[i].Test(uint(col)) {
				work[i].InPlaceSymmetricDifference(work[r])
			}
		}
		pivots = append(pivots, col)
		r++
	}
	if r != n {
		return nil, errors.Newf("prmatrix: rank %d < %d", r, n)
	}
	return pivots, nil
}

// invert computes the inverse of the n×n submatrix of the pivot
// columns. Row i of the result holds the coefficients of the pivot
// column values as a function of y.
func invert(data []*bitset.BitSet, pivots []int) ([]*bitset.BitSet, error) {
	n := len(data)

	// Augmented [A | I] where A[i][j] = data[i][pivots[j]].
	a := make([]*bitset.BitSet, n)
	id := make([]*bitset.BitSet, n)
	for i := 0; i < n; i++ {
		a[i] = bitset.New(uint(n))
		for j, p := range pivots {
			if data[i].Test(uint(p)) {
				a[i].Set(uint(j))
			}
		}
		id[i] = bitset.New(uint(n))
		id[i].Set(uint(i))
	}
	for col := 0; col < n; col++ {
		sel := -1
		for i := col; i < n; i++ {
			if a[i].Test(uint(col)) {
				sel = i
				break
			}
		}
		if sel < 0 {
			return nil, errors.New("prmatrix: singular pivot matrix")
		}
		a[col], a[sel] = a[sel], a[col]
		id[col], id[sel] = id[sel], id[col]
		for i := 0; i < n; i++ {
			if i != col && a[i].Test(uint(col)) {
				a[i].InPlaceSymmetricDifference(a[col])
				id[i].InPlaceSymmetricDifference(id[col])
			}
		}
	}
	return id, nil
}

// Encode implements Matrix.Encode. It samples a random r and adds
// the pivot-column solution z of M·z = y ^ M·r.
func (r *RandomMatrix) Encode(y *bitset.BitSet, rand io.Reader) (
	*bitset.BitSet, error) {

	yp, err := randomBits(r.m, rand)
	if err != nil {
		return nil, err
	}
	d := r.Decode(yp)
	d.InPlaceSymmetricDifference(y)

	for j, p := range r.pivots {
		if r.inv[j].IntersectionCardinality(d)%2 == 1 {
			yp.Flip(uint(p))
		}
	}
	return yp, nil
}

// Marshal implements Matrix.Marshal.
func (r *RandomMatrix) Marshal() []byte {
	return marshal(Random, r.n, r.m, r.k, r.data)
}
