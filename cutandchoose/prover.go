//
// prover.go
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
)

// Prover runs the garbler's side of cut-and-choose.
type Prover struct {
	Rand   io.Reader
	Logger *zap.Logger
}

// Run runs cut-and-choose with the evaluator and returns the
// evaluation bundles assigned into buckets.
func (p *Prover) Run(ctx context.Context, conn *p2p.Conn,
	execution params.Execution, builder Builder) (
	*bucket.List[*GarbledBundle], error) {

	if err := checkExecution(execution, builder); err != nil {
		return nil, err
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	N := execution.NumCircuits

	bundles := make([]*GarbledBundle, N)
	for j := 0; j < N; j++ {
		seed := make([]byte, circuit.SeedSize)
		if _, err := io.ReadFull(p.Rand, seed); err != nil {
			return nil, mpcerr.Configuration("seed: %v", err)
		}
		bundle, err := builder.Build(j, seed)
		if err != nil {
			return nil, err
		}
		bundles[j] = bundle
	}
	coin, err := NewCoin(p.Rand)
	if err != nil {
		return nil, mpcerr.Configuration("coin: %v", err)
	}
	log.Debug("bundles garbled", zap.Int("count", N))

	// Round 1: evaluator's coin commitment.
	data, err := receiveFixed(conn, DigestSize, "coin commitment")
	if err != nil {
		return nil, err
	}
	var commitment Digest
	copy(commitment[:], data)
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Round 2: bundle commitments and our coin share.
	if err := conn.SendUint32(N); err != nil {
		return nil, mpcerr.Communication(err, "send bundles")
	}
	for _, bundle := range bundles {
		if err := conn.SendData(bundle.Bundle.Marshal()); err != nil {
			return nil, mpcerr.Communication(err, "send bundles")
		}
	}
	if err := conn.SendData(coin.Share[:]); err != nil {
		return nil, mpcerr.Communication(err, "send coin share")
	}
	if err := conn.Flush(); err != nil {
		return nil, mpcerr.Communication(err, "send bundles")
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Round 3: evaluator opens its coin.
	var peer Coin
	data, err = receiveFixed(conn, CoinSize, "coin opening")
	if err != nil {
		return nil, err
	}
	copy(peer.Share[:], data)
	data, err = receiveFixed(conn, CoinSize, "coin opening")
	if err != nil {
		return nil, err
	}
	copy(peer.Nonce[:], data)
	if !peer.Commitment().Equal(commitment) {
		return nil, mpcerr.CheatAttempt("coin opening does not match commitment")
	}
	challenge, err := NewChallenge(coin.Share, peer.Share, N,
		execution.CheckCircuits)
	if err != nil {
		return nil, err
	}
	log.Debug("challenge", zap.Ints("check", challenge.Check))
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Round 4: open checked bundles.
	for _, j := range challenge.Check {
		if err := conn.SendData(bundles[j].Seed); err != nil {
			return nil, mpcerr.Communication(err, "send opening %d", j)
		}
	}
	if err := conn.Flush(); err != nil {
		return nil, mpcerr.Communication(err, "send openings")
	}

	// Round 5: garbled tables of the evaluation bundles.
	eval := make([]*GarbledBundle, len(challenge.Eval))
	for i, j := range challenge.Eval {
		if err := conn.SendData(bundles[j].Garbled.Tables); err != nil {
			return nil, mpcerr.Communication(err, "send tables %d", j)
		}
		eval[i] = bundles[j]
	}
	if err := conn.Flush(); err != nil {
		return nil, mpcerr.Communication(err, "send tables")
	}
	log.Debug("evaluation tables sent", zap.Int("count", len(eval)))

	return bucket.Assign(eval, execution.NumBuckets, execution.BucketSize,
		challenge.Perm)
}
