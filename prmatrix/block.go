//
// block.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prmatrix

import (
	"io"

	"github.com/bits-and-blooms/bitset"
)

var (
	_ Matrix = &BlockMatrix{}
)

// BlockMatrix implements the block-repetition matrix: row i has ones
// in the columns i·s...(i+1)·s-1. The XOR of any L rows has weight
// L·s so the matrix is s-probe-resistant.
type BlockMatrix struct {
	rows
}

func newBlock(n, s int) *BlockMatrix {
	data := make([]*bitset.BitSet, n)
	for i := 0; i < n; i++ {
		data[i] = bitset.New(uint(n * s))
		for j := i * s; j < (i+1)*s; j++ {
			data[i].Set(uint(j))
		}
	}
	return &BlockMatrix{
		rows: rows{
			n:    n,
			m:    n * s,
			k:    s,
			data: data,
		},
	}
}

// Kind implements Matrix.Kind.
func (b *BlockMatrix) Kind() Kind {
	return Block
}

// Encode implements Matrix.Encode. Each input bit is split into s
// random XOR shares.
func (b *BlockMatrix) Encode(y *bitset.BitSet, rand io.Reader) (
	*bitset.BitSet, error) {

	yp, err := randomBits(b.m, rand)
	if err != nil {
		return nil, err
	}
	s := b.k
	for i := 0; i < b.n; i++ {
		var parity bool
		for j := i * s; j < (i+1)*s; j++ {
			parity = parity != yp.Test(uint(j))
		}
		if parity != y.Test(uint(i)) {
			yp.Flip(uint((i+1)*s - 1))
		}
	}
	return yp, nil
}

// Marshal implements Matrix.Marshal.
func (b *BlockMatrix) Marshal() []byte {
	return marshal(Block, b.n, b.m, b.k, nil)
}
