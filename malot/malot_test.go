//
// malot_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package malot

import (
	"context"
	"crypto/rand"
	"sync"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/markkurossi/malyao/bucket"
	"github.com/markkurossi/malyao/circuit"
	"github.com/markkurossi/malyao/cutandchoose"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/ot"
	"github.com/markkurossi/malyao/p2p"
	"github.com/markkurossi/malyao/params"
	"github.com/markkurossi/malyao/prmatrix"
	"github.com/markkurossi/malyao/symenc"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	execution params.Execution
	matrix    prmatrix.Matrix
	garbler   *bucket.List[*cutandchoose.GarbledBundle]
	evaluator *bucket.List[*cutandchoose.Bundle]
}

func newFixture(t *testing.T, kind prmatrix.Kind,
	tamper func(g *cutandchoose.GarbledBundle)) *fixture {

	c, err := circuit.NewAdder(3)
	require.NoError(t, err)
	execution := params.Execution{
		Circuit:              c,
		NumCircuits:          9,
		CheckCircuits:        3,
		EvalCircuits:         6,
		BucketSize:           3,
		NumBuckets:           2,
		StatisticalParameter: 4,
	}
	matrix, err := prmatrix.Build(kind, c.N2(), 4, rand.Reader)
	require.NoError(t, err)
	enc, err := symenc.New(symenc.CTR)
	require.NoError(t, err)
	builder, err := cutandchoose.NewBundleBuilder(c, matrix, enc, nil)
	require.NoError(t, err)

	var gb []*cutandchoose.GarbledBundle
	var eb []*cutandchoose.Bundle
	for j := 0; j < execution.EvalCircuits; j++ {
		seed := make([]byte, circuit.SeedSize)
		_, err := rand.Read(seed)
		require.NoError(t, err)
		g, err := builder.Build(j+10, seed)
		require.NoError(t, err)
		e, err := cutandchoose.UnmarshalBundle(g.Bundle.Marshal(),
			builder.Shape())
		require.NoError(t, err)
		if tamper != nil {
			tamper(g)
		}
		gb = append(gb, g)
		eb = append(eb, e)
	}
	perm := []int{4, 0, 2, 5, 1, 3}

	f := &fixture{
		execution: execution,
		matrix:    matrix,
	}
	f.garbler, err = bucket.Assign(gb, 2, 3, perm)
	require.NoError(t, err)
	f.evaluator, err = bucket.Assign(eb, 2, 3, perm)
	require.NoError(t, err)
	return f
}

func (f *fixture) run(t *testing.T, scheme ot.Scheme) (
	[]*bitset.BitSet, error, error) {

	c1, c2 := p2p.Pipe()

	sot, err := scheme.New(rand.Reader)
	require.NoError(t, err)
	rot, err := scheme.New(rand.Reader)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var sendErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		sendErr = sot.InitSender(c1)
		if sendErr == nil {
			sender := &Sender{
				OT:   sot,
				Rand: rand.Reader,
			}
			sendErr = sender.Run(context.Background(), c1, f.execution,
				f.matrix, f.garbler)
		}
		if sendErr != nil {
			c1.Shutdown()
		}
	}()

	var inputs []*bitset.BitSet
	recvErr := rot.InitReceiver(c2)
	if recvErr == nil {
		receiver := &Receiver{
			OT:   rot,
			Rand: rand.Reader,
		}
		inputs, recvErr = receiver.Run(context.Background(), c2, f.execution,
			f.matrix, f.evaluator)
	}
	if recvErr != nil {
		c2.Shutdown()
	}
	wg.Wait()

	return inputs, recvErr, sendErr
}

func TestTransfer(t *testing.T) {
	for _, scheme := range []ot.Scheme{ot.SchemeCO, ot.SchemeKOS} {
		for _, kind := range []prmatrix.Kind{prmatrix.Random, prmatrix.Block} {
			f := newFixture(t, kind, nil)
			inputs, recvErr, sendErr := f.run(t, scheme)
			require.NoError(t, recvErr, "%v/%v", scheme, kind)
			require.NoError(t, sendErr, "%v/%v", scheme, kind)
			require.Len(t, inputs, f.execution.NumBuckets)

			m := f.matrix.M()
			for b := 0; b < f.evaluator.NumBuckets(); b++ {
				eb := f.evaluator.Bucket(b)
				gb := f.garbler.Bucket(b)
				for k, bundle := range eb {
					keys, err := bundle.Keys()
					require.NoError(t, err)
					require.Len(t, keys, m)
					require.Equal(t, eb[0].Choices, bundle.Choices)

					yp := bitset.New(uint(m))
					for j, key := range keys {
						expected := gb[k].P2Wire(j).Label(bundle.Choices[j])
						require.True(t, key.Equal(expected))
						if bundle.Choices[j] {
							yp.Set(uint(j))
						}
					}
					require.True(t, f.matrix.Decode(yp).Equal(inputs[b]))
				}
			}
		}
	}
}

func TestCorruptedKey(t *testing.T) {
	f := newFixture(t, prmatrix.Random, func(g *cutandchoose.GarbledBundle) {
		idx := g.Bundle.Shape().N1
		g.Garbled.Inputs[idx].L0.D1 ^= 0x100
		g.Garbled.Inputs[idx].L1.D1 ^= 0x100
	})
	_, recvErr, _ := f.run(t, ot.SchemeCO)
	require.True(t, mpcerr.IsCheatAttempt(recvErr), "%v", recvErr)
}

func TestSealed(t *testing.T) {
	f := newFixture(t, prmatrix.Block, nil)
	f.evaluator.Seal()

	receiver := &Receiver{
		OT:   ot.NewCO(),
		Rand: rand.Reader,
	}
	_, err := receiver.Run(context.Background(), nil, f.execution, f.matrix,
		f.evaluator)
	require.True(t, mpcerr.IsConfiguration(err))
}

func TestParams(t *testing.T) {
	f := newFixture(t, prmatrix.Block, nil)

	other, err := prmatrix.Build(prmatrix.Block, f.execution.Circuit.N2(), 5,
		rand.Reader)
	require.NoError(t, err)

	receiver := &Receiver{
		OT:   ot.NewCO(),
		Rand: rand.Reader,
	}
	_, err = receiver.Run(context.Background(), nil, f.execution, other,
		f.evaluator)
	require.True(t, mpcerr.IsConfiguration(err))

	sender := &Sender{
		OT:   ot.NewCO(),
		Rand: rand.Reader,
	}
	execution := f.execution
	execution.NumBuckets = 3
	execution.BucketSize = 2
	err = sender.Run(context.Background(), nil, execution, f.matrix,
		f.garbler)
	require.True(t, mpcerr.IsConfiguration(err))

	err = sender.Run(context.Background(), nil, f.execution, f.matrix, nil)
	require.True(t, mpcerr.IsConfiguration(err))
}
