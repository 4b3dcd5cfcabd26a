//
// offline_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package offline

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/malyao/circuit"
	"github.com/markkurossi/malyao/cutandchoose"
	"github.com/markkurossi/malyao/env"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/ot"
	"github.com/markkurossi/malyao/p2p"
	"github.com/markkurossi/malyao/params"
	"github.com/markkurossi/malyao/prmatrix"
	"github.com/markkurossi/malyao/symenc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testS = 4

func executions(t *testing.T) (params.Execution, params.Execution) {
	mainCircuit, err := circuit.NewComparator(4)
	require.NoError(t, err)
	crCircuit, err := circuit.NewCheatingRecovery(3, 4)
	require.NoError(t, err)

	main := params.Execution{
		Circuit:              mainCircuit,
		NumCircuits:          8,
		CheckCircuits:        4,
		EvalCircuits:         4,
		BucketSize:           2,
		NumBuckets:           2,
		StatisticalParameter: testS,
	}
	cr := params.Execution{
		Circuit:              crCircuit,
		NumCircuits:          7,
		CheckCircuits:        3,
		EvalCircuits:         4,
		BucketSize:           2,
		NumBuckets:           2,
		StatisticalParameter: testS,
		InputSizeY2:          4,
	}
	return main, cr
}

type parties struct {
	p1     *P1
	p2     *P2
	c1, c2 *p2p.Conn
	res1   *GarblerResult
	err1   error
	res2   *Result
	err2   error
}

func newParties(t *testing.T, main, cr params.Execution, scheme ot.Scheme,
	options Options) *parties {

	c1, c2 := p2p.Pipe()
	config := &env.Config{
		Logger: zaptest.NewLogger(t),
	}
	return &parties{
		p1: NewP1(config, main, cr, c1, scheme, options),
		p2: NewP2(config, main, cr, c2, scheme, options),
		c1: c1,
		c2: c2,
	}
}

func (p *parties) run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.res1, p.err1 = p.p1.Run(context.Background())
		if p.err1 != nil {
			p.c1.Shutdown()
		}
	}()
	p.res2, p.err2 = p.p2.Run(ctx)
	if p.err2 != nil {
		p.c2.Shutdown()
	}
	wg.Wait()
}

func TestOffline(t *testing.T) {
	for _, scheme := range []ot.Scheme{
		ot.SchemeCO, ot.SchemeRistretto, ot.SchemeKOS,
	} {
		for _, kind := range []prmatrix.Kind{prmatrix.Random, prmatrix.Block} {
			main, cr := executions(t)
			p := newParties(t, main, cr, scheme, Options{
				Cipher:     symenc.CTR,
				MatrixKind: kind,
			})
			p.run(context.Background())
			require.NoError(t, p.err1, "%v/%v", scheme, kind)
			require.NoError(t, p.err2, "%v/%v", scheme, kind)

			r := p.res2
			require.NotNil(t, r)
			require.True(t, prmatrix.ProbeResistant(r.MainMatrix, testS))
			require.True(t, prmatrix.ProbeResistant(r.CRMatrix, testS))
			require.Equal(t, r.MainMatrix.Marshal(), p.res1.MainMatrix.Marshal())

			require.Equal(t, main.NumBuckets, r.MainBuckets.NumBuckets())
			require.Equal(t, cr.NumBuckets, r.CRBuckets.NumBuckets())
			require.True(t, r.MainBuckets.Sealed())
			require.True(t, r.CRBuckets.Sealed())
			for _, b := range r.MainBuckets.Bundles() {
				_, err := b.Keys()
				require.NoError(t, err)
				require.True(t, b.Sealed())
			}
			for _, b := range r.CRBuckets.Bundles() {
				_, err := b.Keys()
				require.NoError(t, err)
				require.Len(t, b.Shares, cr.InputSizeY2)
			}

			evaluate(t, main, r, p.res1, symenc.CTR)
		}
	}
}

func TestTwoBucketsOfFive(t *testing.T) {
	for _, kind := range []prmatrix.Kind{prmatrix.Random, prmatrix.Block} {
		main, cr := executions(t)
		main.NumCircuits = 20
		main.CheckCircuits = 10
		main.EvalCircuits = 10
		main.BucketSize = 5
		main.NumBuckets = 2

		p := newParties(t, main, cr, ot.SchemeKOS, Options{
			Cipher:     symenc.CBC,
			MatrixKind: kind,
		})
		p.run(context.Background())
		require.NoError(t, p.err1, "%v", kind)
		require.NoError(t, p.err2, "%v", kind)

		r := p.res2
		require.NotNil(t, r.MainMatrix)
		require.NotNil(t, r.CRMatrix)
		require.NotNil(t, r.CRBuckets)
		require.Equal(t, 2, r.MainBuckets.NumBuckets())
		require.Equal(t, 5, r.MainBuckets.BucketSize())

		seen := make(map[int]bool)
		for i := 0; i < r.MainBuckets.NumBuckets(); i++ {
			bucket := r.MainBuckets.Bucket(i)
			require.Len(t, bucket, 5)
			for _, b := range bucket {
				require.False(t, seen[b.Index], "bundle %d", b.Index)
				seen[b.Index] = true
			}
		}
		require.Len(t, seen, 10)

		evaluate(t, main, r, p.res1, symenc.CBC)
	}
}

// evaluate evaluates the main buckets with the transferred keys and
// compares the results with the plaintext computation.
func evaluate(t *testing.T, main params.Execution, r *Result,
	g *GarblerResult, kind symenc.Kind) {

	ext, err := circuit.Extend(main.Circuit, r.MainMatrix)
	require.NoError(t, err)
	enc, err := symenc.New(kind)
	require.NoError(t, err)

	x := []bool{true, false, true, true}

	for i := 0; i < r.MainBuckets.NumBuckets(); i++ {
		eb := r.MainBuckets.Bucket(i)
		gb := g.MainBuckets.Bucket(i)

		inputs := append([]bool(nil), x...)
		for j := 0; j < main.Circuit.N2(); j++ {
			inputs = append(inputs, r.MainInputs[i].Test(uint(j)))
		}
		expected, err := main.Circuit.Compute(inputs)
		require.NoError(t, err)

		for k, bundle := range eb {
			require.Equal(t, gb[k].Bundle.Index, bundle.Index)

			var labels []ot.Label
			for j, bit := range x {
				labels = append(labels, gb[k].P1Wire(j).Label(bit))
			}
			keys, err := bundle.Keys()
			require.NoError(t, err)
			labels = append(labels, keys...)

			tables, err := bundle.GarbledTables(r.MainTables())
			require.NoError(t, err)
			out, err := ext.Eval(tables, labels, enc)
			require.NoError(t, err)
			result, err := circuit.Decode(out, bundle.Decoding)
			require.NoError(t, err)
			require.Equal(t, expected, result)
		}
	}
}

func TestWriteToFile(t *testing.T) {
	main, cr := executions(t)
	p := newParties(t, main, cr, ot.SchemeKOS, Options{
		WriteToFile:    true,
		TableDir:       t.TempDir(),
		Cipher:         symenc.Box,
		MatrixKind:     prmatrix.Random,
		ParallelVerify: 4,
	})
	p.run(context.Background())
	require.NoError(t, p.err1)
	require.NoError(t, p.err2)

	for _, b := range p.res2.MainBuckets.Bundles() {
		require.Nil(t, b.Tables)
	}
	for _, b := range p.res2.CRBuckets.Bundles() {
		tables, err := b.GarbledTables(p.res2.CRTables())
		require.NoError(t, err)
		require.NotEmpty(t, tables)
	}
	evaluate(t, main, p.res2, p.res1, symenc.Box)
}

type tamperBuilder struct {
	cutandchoose.Builder
	tamper func(g *cutandchoose.GarbledBundle)
}

func (b *tamperBuilder) Build(index int, seed []byte) (
	*cutandchoose.GarbledBundle, error) {

	g, err := b.Builder.Build(index, seed)
	if err != nil {
		return nil, err
	}
	b.tamper(g)
	return g, nil
}

func TestCheatingGarbler(t *testing.T) {
	main, cr := executions(t)
	p := newParties(t, main, cr, ot.SchemeCO, Options{
		MatrixKind: prmatrix.Random,
	})
	p.p1.wrap = func(b cutandchoose.Builder) cutandchoose.Builder {
		return &tamperBuilder{
			Builder: b,
			tamper: func(g *cutandchoose.GarbledBundle) {
				g.Bundle.P2Inputs[1][0][0] ^= 0x01
			},
		}
	}
	p.run(context.Background())
	require.Error(t, p.err2)
	require.True(t, mpcerr.IsCheatAttempt(p.err2), "%v", p.err2)
	require.Nil(t, p.res2)
	require.Error(t, p.err1)
}

func TestCheatingGarblerKeys(t *testing.T) {
	main, cr := executions(t)
	p := newParties(t, main, cr, ot.SchemeKOS, Options{
		MatrixKind: prmatrix.Block,
	})
	p.p1.wrap = func(b cutandchoose.Builder) cutandchoose.Builder {
		return &tamperBuilder{
			Builder: b,
			tamper: func(g *cutandchoose.GarbledBundle) {
				// Commitments are already computed. Corrupt the
				// labels the OT transfers.
				idx := g.Bundle.Shape().N1
				g.Garbled.Inputs[idx].L0.D0 ^= 0x01
				g.Garbled.Inputs[idx].L1.D0 ^= 0x01
			},
		}
	}
	p.run(context.Background())
	require.True(t, mpcerr.IsCheatAttempt(p.err2), "%v", p.err2)
	require.Nil(t, p.res2)
}

func TestCheatingGarblerRemovesTables(t *testing.T) {
	main, cr := executions(t)
	dir := t.TempDir()
	p := newParties(t, main, cr, ot.SchemeKOS, Options{
		WriteToFile: true,
		TableDir:    dir,
		MatrixKind:  prmatrix.Random,
	})
	p.p1.wrap = func(b cutandchoose.Builder) cutandchoose.Builder {
		return &tamperBuilder{
			Builder: b,
			tamper: func(g *cutandchoose.GarbledBundle) {
				idx := g.Bundle.Shape().N1
				g.Garbled.Inputs[idx].L0.D1 ^= 0x80
				g.Garbled.Inputs[idx].L1.D1 ^= 0x80
			},
		}
	}
	p.run(context.Background())
	require.True(t, mpcerr.IsCheatAttempt(p.err2), "%v", p.err2)
	require.Nil(t, p.res2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestInvalidConfiguration(t *testing.T) {
	main, cr := executions(t)
	main.EvalCircuits = 5

	c1, c2 := p2p.Pipe()
	defer c1.Shutdown()

	p2 := NewP2(nil, main, cr, c2, ot.SchemeCO, Options{})
	result, err := p2.Run(context.Background())
	require.Nil(t, result)
	require.True(t, mpcerr.IsConfiguration(err), "%v", err)
	require.Zero(t, c2.Stats.Sent.Load())

	main, cr = executions(t)
	for _, options := range []Options{
		{WriteToFile: true},
		{Cipher: symenc.Kind(99)},
		{ParallelVerify: -1},
	} {
		p2 = NewP2(nil, main, cr, c2, ot.SchemeCO, options)
		_, err = p2.Run(context.Background())
		require.True(t, mpcerr.IsConfiguration(err), "%v", err)
	}

	cr.InputSizeY2 = -1
	p2 = NewP2(nil, main, cr, c2, ot.SchemeCO, Options{})
	_, err = p2.Run(context.Background())
	require.True(t, mpcerr.IsConfiguration(err), "%v", err)

	require.Zero(t, c2.Stats.Sent.Load())
}

func TestDisconnect(t *testing.T) {
	main, cr := executions(t)
	c1, c2 := p2p.Pipe()

	done := make(chan error)
	go func() {
		_, err := prmatrix.Receive(c1, main)
		if err == nil {
			_, err = prmatrix.Receive(c1, cr)
		}
		c1.Shutdown()
		done <- err
	}()

	p2 := NewP2(nil, main, cr, c2, ot.SchemeCO, Options{})
	result, err := p2.Run(context.Background())
	require.NoError(t, <-done)
	require.Nil(t, result)
	require.True(t, mpcerr.IsCommunication(err), "%v", err)
	require.False(t, mpcerr.IsCheatAttempt(err))
}

func TestCanceled(t *testing.T) {
	main, cr := executions(t)
	p := newParties(t, main, cr, ot.SchemeCO, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.run(ctx)
	require.Nil(t, p.res2)
	require.True(t, mpcerr.IsCommunication(p.err2), "%v", p.err2)
	require.True(t, errors.Is(p.err2, context.Canceled))
}
