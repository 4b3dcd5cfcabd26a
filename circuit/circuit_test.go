//
// Copyright (c) 2022-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/require"
)

func bits(v uint64, n int) []bool {
	result := make([]bool, n)
	for i := 0; i < n; i++ {
		result[i] = (v>>i)&1 == 1
	}
	return result
}

func value(b []bool) uint64 {
	var result uint64
	for i, bit := range b {
		if bit {
			result |= 1 << i
		}
	}
	return result
}

func TestComparator(t *testing.T) {
	const n = 4
	c, err := NewComparator(n)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	for x := uint64(0); x < 1<<n; x++ {
		for y := uint64(0); y < 1<<n; y++ {
			out, err := c.Compute(append(bits(x, n), bits(y, n)...))
			require.NoError(t, err)
			require.Len(t, out, 1)
			require.Equal(t, x > y, out[0], "%d > %d", x, y)
		}
	}
}

func TestAdder(t *testing.T) {
	const n = 4
	c, err := NewAdder(n)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	for x := uint64(0); x < 1<<n; x++ {
		for y := uint64(0); y < 1<<n; y++ {
			out, err := c.Compute(append(bits(x, n), bits(y, n)...))
			require.NoError(t, err)
			require.Equal(t, x+y, value(out))
		}
	}
}

func TestCheatingRecovery(t *testing.T) {
	c, err := NewCheatingRecovery(4, 3)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	require.Equal(t, 7, c.N1())
	require.Equal(t, 3, c.N2())

	in := append(bits(0xb, 4), bits(5, 3)...)
	out, err := c.Compute(append(in, bits(5, 3)...))
	require.NoError(t, err)
	require.Equal(t, uint64(0xb), value(out))

	out, err = c.Compute(append(in, bits(4, 3)...))
	require.NoError(t, err)
	require.Equal(t, uint64(0), value(out))

	_, err = NewCheatingRecovery(4, 0)
	require.Error(t, err)
}

func TestBuilderOutputs(t *testing.T) {
	b := NewBuilder(IOArg{Size: 1}, IOArg{Size: 1})
	w := b.AND(b.Input(0, 0), b.Input(1, 0))

	_, err := b.Build(IO{{Size: 1}}, []Wire{b.Input(0, 0)})
	require.Error(t, err)

	_, err = b.Build(IO{{Size: 2}}, []Wire{w, w})
	require.Error(t, err)

	_, err = b.Build(IO{{Size: 2}}, []Wire{w})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	c, err := NewAdder(2)
	require.NoError(t, err)

	c.Gates[0].Input0 = Wire(c.NumWires - 1)
	require.Error(t, c.Validate())

	c, err = NewAdder(2)
	require.NoError(t, err)
	c.Stats[AND]++
	require.Error(t, c.Validate())

	c.Inputs = c.Inputs[:1]
	require.Error(t, c.Validate())
}

type testEncoding struct {
	m    int
	rows []*bitset.BitSet
}

func (e *testEncoding) N() int {
	return len(e.rows)
}

func (e *testEncoding) M() int {
	return e.m
}

func (e *testEncoding) Row(i int) *bitset.BitSet {
	return e.rows[i]
}

func newTestEncoding(m int, rows ...[]uint) *testEncoding {
	e := &testEncoding{
		m: m,
	}
	for _, row := range rows {
		bs := bitset.New(uint(m))
		for _, j := range row {
			bs.Set(j)
		}
		e.rows = append(e.rows, bs)
	}
	return e
}

func TestExtend(t *testing.T) {
	const n = 3
	c, err := NewAdder(n)
	require.NoError(t, err)

	enc := newTestEncoding(5, []uint{0, 2}, []uint{1}, []uint{2, 3, 4})
	ext, err := Extend(c, enc)
	require.NoError(t, err)
	require.NoError(t, ext.Validate())
	require.Equal(t, n, ext.N1())
	require.Equal(t, 5, ext.N2())
	require.Equal(t, c.NumTables(), ext.NumTables())

	for x := uint64(0); x < 1<<n; x++ {
		for yp := uint64(0); yp < 1<<5; yp++ {
			ybits := bits(yp, 5)
			y := []bool{
				ybits[0] != ybits[2],
				ybits[1],
				ybits[2] != ybits[3] != ybits[4],
			}
			out, err := ext.Compute(append(bits(x, n), ybits...))
			require.NoError(t, err)
			require.Equal(t, x+value(y), value(out))
		}
	}

	_, err = Extend(c, newTestEncoding(5, []uint{0}))
	require.Error(t, err)

	_, err = Extend(c, newTestEncoding(5, []uint{0}, []uint{}, []uint{1}))
	require.Error(t, err)
}

func TestDot(t *testing.T) {
	c, err := NewComparator(2)
	require.NoError(t, err)

	var buf bytes.Buffer
	c.Dot(&buf)
	out := buf.String()

	require.True(t, strings.HasPrefix(out, "digraph circuit\n{\n"))
	require.True(t, strings.HasSuffix(out, "}\n"))
	require.Equal(t, 3, strings.Count(out, "rank=same"))
	require.Equal(t, len(c.Gates), strings.Count(out, "[label=\"")-c.NumWires)
	require.Contains(t, out, "{  rank=same; w0; w1;}")
}
