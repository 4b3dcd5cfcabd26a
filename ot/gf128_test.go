//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// mul128Ref multiplies bit by bit.
func mul128Ref(a, b Label) (lo, hi Label) {
	for i := 0; i < 128; i++ {
		if b.Bit(i) == 0 {
			continue
		}
		for j := 0; j < 128; j++ {
			if a.Bit(j) == 0 {
				continue
			}
			k := i + j
			if k < 128 {
				lo.SetBit(k, lo.Bit(k)^1)
			} else {
				hi.SetBit(k-128, hi.Bit(k-128)^1)
			}
		}
	}
	return
}

func TestMul128(t *testing.T) {
	for i := 0; i < 100; i++ {
		a, err := NewLabel(rand.Reader)
		require.NoError(t, err)
		b, err := NewLabel(rand.Reader)
		require.NoError(t, err)

		lo, hi := mul128(a, b)
		rlo, rhi := mul128Ref(a, b)
		require.Equal(t, rlo, lo)
		require.Equal(t, rhi, hi)
	}
}

func TestMul128Identity(t *testing.T) {
	a, err := NewLabel(rand.Reader)
	require.NoError(t, err)

	one := Label{D0: 1}
	lo, hi := mul128(a, one)
	require.Equal(t, a, lo)
	require.Equal(t, Label{}, hi)
}

func TestInnerProduct(t *testing.T) {
	a := make([]Label, 10)
	b := make([]Label, 10)
	for i := range a {
		a[i], _ = NewLabel(rand.Reader)
		b[i], _ = NewLabel(rand.Reader)
	}
	lo, hi := vectorInnPrdtSumNoRed(a, b)

	var elo, ehi Label
	for i := range a {
		l, h := mul128Ref(a[i], b[i])
		elo.Xor(l)
		ehi.Xor(h)
	}
	require.Equal(t, elo, lo)
	require.Equal(t, ehi, hi)
}

func TestTCCR(t *testing.T) {
	key, err := NewLabel(rand.Reader)
	require.NoError(t, err)
	h, err := NewTCCR(key)
	require.NoError(t, err)

	x, err := NewLabel(rand.Reader)
	require.NoError(t, err)

	require.Equal(t, h.Hash(x, 1), h.Hash(x, 1))
	require.NotEqual(t, h.Hash(x, 1), h.Hash(x, 2))
	require.NotEqual(t, x, h.Hash(x, 0))
}
