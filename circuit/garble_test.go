//
// garble_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"crypto/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/malyao/ot"
	"github.com/markkurossi/malyao/symenc"
	"github.com/stretchr/testify/require"
)

func newSeed(t testing.TB) []byte {
	seed := make([]byte, SeedSize)
	_, err := rand.Read(seed)
	require.NoError(t, err)
	return seed
}

func evalGarbled(t *testing.T, c *Circuit, g *Garbled, enc symenc.Cipher,
	inputs []bool) []bool {

	labels := make([]ot.Label, len(inputs))
	for i, bit := range inputs {
		labels[i] = g.Inputs[i].Label(bit)
	}
	out, err := c.Eval(g.Tables, labels, enc)
	require.NoError(t, err)
	for i, l := range out {
		require.True(t, l.Equal(g.Outputs[i].L0) || l.Equal(g.Outputs[i].L1))
	}
	result, err := Decode(out, g.Decoding)
	require.NoError(t, err)
	return result
}

func TestGarbleEval(t *testing.T) {
	const n = 3
	circuits := []func(int) (*Circuit, error){
		NewAdder, NewComparator,
	}
	for _, kind := range []symenc.Kind{symenc.CTR, symenc.CBC, symenc.Box} {
		enc, err := symenc.New(kind)
		require.NoError(t, err)

		for _, create := range circuits {
			c, err := create(n)
			require.NoError(t, err)

			g, err := c.Garble(newSeed(t), enc)
			require.NoError(t, err)
			require.Len(t, g.Tables, c.TableSize(enc))

			for x := uint64(0); x < 1<<n; x++ {
				for y := uint64(0); y < 1<<n; y++ {
					in := append(bits(x, n), bits(y, n)...)
					expected, err := c.Compute(in)
					require.NoError(t, err)
					require.Equal(t, expected, evalGarbled(t, c, g, enc, in))
				}
			}
		}
	}
}

func TestGarbleXNORINV(t *testing.T) {
	b := NewBuilder(IOArg{Size: 2}, IOArg{Size: 1})
	w := b.XNOR(b.Input(0, 0), b.Input(1, 0))
	w = b.INV(w)
	o := b.OR(w, b.Input(0, 1))
	c, err := b.Build(IO{{Size: 2}}, []Wire{o, w})
	require.NoError(t, err)

	enc, err := symenc.New(symenc.CTR)
	require.NoError(t, err)
	g, err := c.Garble(newSeed(t), enc)
	require.NoError(t, err)

	for v := uint64(0); v < 8; v++ {
		in := bits(v, 3)
		expected, err := c.Compute(in)
		require.NoError(t, err)
		require.Equal(t, expected, evalGarbled(t, c, g, enc, in))
	}
}

func TestGarbleDeterministic(t *testing.T) {
	c, err := NewAdder(8)
	require.NoError(t, err)
	enc, err := symenc.New(symenc.Box)
	require.NoError(t, err)

	seed := newSeed(t)
	g1, err := c.Garble(seed, enc)
	require.NoError(t, err)
	g2, err := c.Garble(seed, enc)
	require.NoError(t, err)
	require.Equal(t, g1, g2)

	g3, err := c.Garble(newSeed(t), enc)
	require.NoError(t, err)
	require.NotEqual(t, g1.Tables, g3.Tables)
	require.True(t, g1.Delta.S())
}

func TestEvalTampered(t *testing.T) {
	c, err := NewComparator(2)
	require.NoError(t, err)
	enc, err := symenc.New(symenc.Box)
	require.NoError(t, err)
	g, err := c.Garble(newSeed(t), enc)
	require.NoError(t, err)

	labels := make([]ot.Label, c.NumInputs())
	for i := range labels {
		labels[i] = g.Inputs[i].L0
	}
	tables := append([]byte(nil), g.Tables...)
	for i := range tables {
		tables[i] ^= 0xff
	}
	_, err = c.Eval(tables, labels, enc)
	require.True(t, errors.Is(err, symenc.ErrDecrypt))

	_, err = c.Eval(g.Tables[1:], labels, enc)
	require.Error(t, err)
	_, err = c.Garble(seedOfSize(10), enc)
	require.Error(t, err)
}

func seedOfSize(n int) []byte {
	return make([]byte, n)
}

func TestPRG(t *testing.T) {
	seed := make([]byte, SeedSize)
	r1, err := NewPRG(seed, "a")
	require.NoError(t, err)
	r2, err := NewPRG(seed, "a")
	require.NoError(t, err)
	r3, err := NewPRG(seed, "b")
	require.NoError(t, err)

	var b1, b2, b3 [64]byte
	r1.Read(b1[:])
	r2.Read(b2[:])
	r3.Read(b3[:])
	require.Equal(t, b1, b2)
	require.NotEqual(t, b1, b3)
}

func BenchmarkGarble(b *testing.B) {
	c, err := NewAdder(64)
	require.NoError(b, err)
	enc, err := symenc.New(symenc.CTR)
	require.NoError(b, err)
	seed := newSeed(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Garble(seed, enc); err != nil {
			b.Fatal(err)
		}
	}
}
