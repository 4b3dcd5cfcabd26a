//
// matrix_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prmatrix

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/markkurossi/malyao/circuit"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/p2p"
	"github.com/markkurossi/malyao/params"
	"github.com/stretchr/testify/require"
)

var kindsTest = []Kind{Random, Block}

func TestProbeResistance(t *testing.T) {
	for _, kind := range kindsTest {
		for _, n := range []int{1, 2, 5, 12} {
			for _, s := range []int{4, 8, 20} {
				name := fmt.Sprintf("%v/%d/%d", kind, n, s)
				m, err := Build(kind, n, s, rand.Reader)
				require.NoError(t, err, name)
				require.Equal(t, n, m.N(), name)
				require.Equal(t, s, m.K(), name)
				require.True(t, ProbeResistant(m, s), name)

				for i := 0; i < n; i++ {
					require.GreaterOrEqual(t, int(m.Row(i).Count()), s)
					for j := i + 1; j < n; j++ {
						require.False(t, m.Row(i).Equal(m.Row(j)), name)
					}
				}
			}
		}
	}
}

func TestColumns(t *testing.T) {
	m, err := Build(Random, 10, 40, rand.Reader)
	require.NoError(t, err)
	require.Equal(t, 320, m.M())

	m, err = Build(Random, 100, 40, rand.Reader)
	require.NoError(t, err)
	require.Equal(t, 400, m.M())

	m, err = Build(Block, 10, 40, rand.Reader)
	require.NoError(t, err)
	require.Equal(t, 400, m.M())
}

func TestNotProbeResistant(t *testing.T) {
	m, err := Build(Block, 3, 4, rand.Reader)
	require.NoError(t, err)
	require.True(t, ProbeResistant(m, 4))
	require.False(t, ProbeResistant(m, 5))

	// Rows 0 and 1 equal: their XOR is zero.
	data := []*bitset.BitSet{
		bitset.New(8).Set(0).Set(1).Set(2),
		bitset.New(8).Set(0).Set(1).Set(2),
	}
	_, err = newRandomMatrix(2, 8, 3, data)
	require.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	for _, kind := range kindsTest {
		for _, n := range []int{1, 7, 64} {
			m, err := Build(kind, n, 8, rand.Reader)
			require.NoError(t, err)

			for i := 0; i < 10; i++ {
				y, err := randomBits(n, rand.Reader)
				require.NoError(t, err)

				yp, err := m.Encode(y, rand.Reader)
				require.NoError(t, err)
				require.True(t, y.Equal(m.Decode(yp)), "%v/%d", kind, n)

				yp2, err := m.Encode(y, rand.Reader)
				require.NoError(t, err)
				if m.M() > 16 {
					require.False(t, yp.Equal(yp2))
				}
			}
		}
	}
}

func TestInvalidParameters(t *testing.T) {
	for _, test := range []struct {
		kind Kind
		n, s int
	}{
		{Random, 0, 40},
		{Random, 10, 0},
		{Block, -1, 40},
		{Kind(7), 10, 40},
	} {
		_, err := Build(test.kind, test.n, test.s, rand.Reader)
		require.True(t, mpcerr.IsConfiguration(err), "%v", test)
	}
}

func TestMarshal(t *testing.T) {
	for _, kind := range kindsTest {
		m, err := Build(kind, 9, 10, rand.Reader)
		require.NoError(t, err)

		m2, err := Unmarshal(m.Marshal())
		require.NoError(t, err)
		require.Equal(t, m.Kind(), m2.Kind())
		require.Equal(t, m.N(), m2.N())
		require.Equal(t, m.M(), m2.M())
		require.Equal(t, m.K(), m2.K())
		for i := 0; i < m.N(); i++ {
			require.True(t, m.Row(i).Equal(m2.Row(i)))
		}
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	m, err := Build(Random, 4, 8, rand.Reader)
	require.NoError(t, err)
	data := m.Marshal()

	_, err = Unmarshal(data[:10])
	require.Error(t, err)
	_, err = Unmarshal(data[:len(data)-1])
	require.Error(t, err)

	bad := append([]byte(nil), data...)
	bad[0] = 9
	_, err = Unmarshal(bad)
	require.Error(t, err)

	// All-zero rows fail the weight check.
	zero := append([]byte(nil), data[:13]...)
	zero = append(zero, make([]byte, len(data)-13)...)
	_, err = Unmarshal(zero)
	require.Error(t, err)
}

func TestSelectAndSend(t *testing.T) {
	c, err := circuit.NewComparator(6)
	require.NoError(t, err)
	execution := params.Execution{
		Circuit:              c,
		NumCircuits:          4,
		CheckCircuits:        2,
		EvalCircuits:         2,
		BucketSize:           1,
		NumBuckets:           2,
		StatisticalParameter: 8,
	}
	c0, c1 := p2p.Pipe()

	type result struct {
		m   Matrix
		err error
	}
	ch := make(chan result)
	go func() {
		m, err := Receive(c1, execution)
		ch <- result{m, err}
	}()

	m, err := SelectAndSend(c0, execution, Random, rand.Reader)
	require.NoError(t, err)
	r := <-ch
	require.NoError(t, r.err)
	require.Equal(t, m.Marshal(), r.m.Marshal())

	// The peer expects more statistical security.
	go func() {
		strict := execution
		strict.StatisticalParameter = 16
		m, err := Receive(c1, strict)
		ch <- result{m, err}
	}()
	_, err = SelectAndSend(c0, execution, Block, rand.Reader)
	require.NoError(t, err)
	r = <-ch
	require.True(t, mpcerr.IsCheatAttempt(r.err))

	// Transport failure.
	require.NoError(t, c1.Shutdown())
	_, err = Receive(c1, execution)
	require.True(t, mpcerr.IsCommunication(err))

	execution.CheckCircuits = 3
	_, err = SelectAndSend(c0, execution, Block, rand.Reader)
	require.True(t, mpcerr.IsConfiguration(err))
}
