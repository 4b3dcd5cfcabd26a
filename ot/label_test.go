//
// label_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabelBits(t *testing.T) {
	var l Label
	for _, i := range []int{0, 1, 63, 64, 100, 127} {
		require.Equal(t, uint(0), l.Bit(i))
		l.SetBit(i, 1)
		require.Equal(t, uint(1), l.Bit(i))
	}
	require.Equal(t, uint64(0x8000000000000003), l.D0)
	l.SetBit(127, 0)
	require.Equal(t, uint(0), l.Bit(127))
	require.True(t, l.S())
	l.SetS(false)
	require.False(t, l.S())
}

func TestLabelData(t *testing.T) {
	l := Label{
		D0: 0x0102030405060708,
		D1: 0x090a0b0c0d0e0f10,
	}
	var ld LabelData
	data := l.Bytes(&ld)
	require.Equal(t, byte(1), data[0])
	require.Equal(t, byte(0x10), data[15])

	var l2 Label
	l2.SetBytes(data)
	require.True(t, l.Equal(l2))
	require.Equal(t, "0102030405060708090a0b0c0d0e0f10", l2.String())
}

func TestWireLabel(t *testing.T) {
	w := Wire{
		L0: Label{D0: 1},
		L1: Label{D0: 2},
	}
	require.Equal(t, w.L0, w.Label(false))
	require.Equal(t, w.L1, w.Label(true))
}
