//
// verifier.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package cutandchoose

import (
	"context"
	"io"

	"github.com/markkurossi/malyao/bucket"
	"github.com/markkurossi/malyao/circuit"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/p2p"
	"github.com/markkurossi/malyao/params"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Verifier runs the evaluator's side of cut-and-choose.
type Verifier struct {
	Rand   io.Reader
	Logger *zap.Logger

	// Parallel defines how many checked bundles are verified
	// concurrently. Values smaller than 2 verify sequentially.
	Parallel int

	// Store keeps the evaluation bundles' garbled tables. If nil,
	// the tables stay in the bundles.
	Store TableStore
}

func (v *Verifier) log() *zap.Logger {
	if v.Logger == nil {
		return zap.NewNop()
	}
	return v.Logger
}

// Run runs cut-and-choose with the garbler. It checks the opened
// bundles against their commitments and the evaluation bundles'
// tables against their tables commitments. It returns the evaluation
// bundles assigned into buckets. The y2Size is the number of the
// cheating-recovery secret shares each bundle must commit to.
func (v *Verifier) Run(ctx context.Context, conn *p2p.Conn,
	execution params.Execution, builder Builder, y2Size int) (
	*bucket.List[*Bundle], error) {

	if err := checkExecution(execution, builder); err != nil {
		return nil, err
	}
	shape := builder.Shape()
	if shape.Shares != y2Size {
		return nil, mpcerr.Configuration("builder shares %d != Y2 size %d",
			shape.Shares, y2Size)
	}
	log := v.log().With(zap.Stringer("execution", execution))
	N := execution.NumCircuits

	coin, err := NewCoin(v.Rand)
	if err != nil {
		return nil, mpcerr.Configuration("coin: %v", err)
	}

	// Round 1: coin commitment.
	commitment := coin.Commitment()
	if err := conn.SendData(commitment[:]); err != nil {
		return nil, mpcerr.Communication(err, "send coin commitment")
	}
	if err := conn.Flush(); err != nil {
		return nil, mpcerr.Communication(err, "send coin commitment")
	}
	log.Debug("coin committed")
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Round 2: bundle commitments and garbler's coin share.
	count, err := conn.ReceiveUint32()
	if err != nil {
		return nil, mpcerr.Communication(err, "receive bundle count")
	}
	if count != N {
		return nil, mpcerr.CheatAttempt("got %d bundles, expected %d", count, N)
	}
	bundles := make([]*Bundle, N)
	for j := 0; j < N; j++ {
		data, err := conn.ReceiveData()
		if err != nil {
			return nil, mpcerr.Communication(err, "receive bundle %d", j)
		}
		bundle, err := UnmarshalBundle(data, shape)
		if err != nil {
			return nil, mpcerr.Communication(err, "receive bundle %d", j)
		}
		if bundle.Index != j {
			return nil, mpcerr.CheatAttempt("bundle %d sent as %d",
				bundle.Index, j)
		}
		bundles[j] = bundle
	}
	data, err := receiveFixed(conn, CoinSize, "coin share")
	if err != nil {
		return nil, err
	}
	var s1 [CoinSize]byte
	copy(s1[:], data)
	log.Debug("bundles committed", zap.Int("count", N))
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Round 3: open coin.
	if err := conn.SendData(coin.Share[:]); err != nil {
		return nil, mpcerr.Communication(err, "open coin")
	}
	if err := conn.SendData(coin.Nonce[:]); err != nil {
		return nil, mpcerr.Communication(err, "open coin")
	}
	if err := conn.Flush(); err != nil {
		return nil, mpcerr.Communication(err, "open coin")
	}
	challenge, err := NewChallenge(s1, coin.Share, N, execution.CheckCircuits)
	if err != nil {
		return nil, err
	}
	log.Debug("challenge", zap.Ints("check", challenge.Check))
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Round 4: openings of the checked bundles.
	seeds := make([][]byte, len(challenge.Check))
	for i := range seeds {
		seeds[i], err = receiveFixed(conn, circuit.SeedSize, "opening")
		if err != nil {
			return nil, err
		}
	}
	if err := v.verify(ctx, builder, bundles, challenge.Check, seeds); err != nil {
		log.Warn("cut-and-choose check failed", zap.Error(err))
		return nil, err
	}
	log.Debug("checked bundles verified", zap.Int("count", len(seeds)))
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Round 5: garbled tables of the evaluation bundles.
	eval := make([]*Bundle, len(challenge.Eval))
	for i, j := range challenge.Eval {
		tables, err := conn.ReceiveData()
		if err != nil {
			return nil, mpcerr.Communication(err, "receive tables of bundle %d",
				j)
		}
		bundle := bundles[j]
		if err := bundle.VerifyTables(tables); err != nil {
			log.Warn("garbled tables mismatch", zap.Int("bundle", j))
			return nil, err
		}
		if v.Store != nil {
			if err := v.Store.Put(j, tables); err != nil {
				return nil, err
			}
		} else {
			bundle.Tables = tables
		}
		eval[i] = bundle
	}
	log.Debug("evaluation tables received", zap.Int("count", len(eval)))

	return bucket.Assign(eval, execution.NumBuckets, execution.BucketSize,
		challenge.Perm)
}

func (v *Verifier) verify(ctx context.Context, builder Builder,
	bundles []*Bundle, check []int, seeds [][]byte) error {

	errs := make([]error, len(check))

	if v.Parallel < 2 {
		for i, j := range check {
			errs[i] = verifyOpening(builder, bundles[j], seeds[i])
			if errs[i] != nil {
				return errs[i]
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(v.Parallel)
	for i, j := range check {
		g.Go(func() error {
			errs[i] = verifyOpening(builder, bundles[j], seeds[i])
			return nil
		})
	}
	g.Wait()

	// Report the first failing bundle so the result does not depend
	// on the scheduling.
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return checkContext(ctx)
}

// verifyOpening rebuilds the bundle from the seed and compares it with
// the committed bundle.
func verifyOpening(builder Builder, bundle *Bundle, seed []byte) error {
	opened, err := builder.Build(bundle.Index, seed)
	if err != nil {
		return mpcerr.WrapCheatAttempt(err, "bundle %d: invalid opening",
			bundle.Index)
	}
	return bundle.Verify(opened.Bundle)
}
