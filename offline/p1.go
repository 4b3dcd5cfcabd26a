//
// p1.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package offline

import (
	"context"

	"github.com/markkurossi/malyao/circuit"
	"github.com/markkurossi/malyao/cutandchoose"
	"github.com/markkurossi/malyao/env"
	"github.com/markkurossi/malyao/malot"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/ot"
	"github.com/markkurossi/malyao/p2p"
	"github.com/markkurossi/malyao/params"
	"github.com/markkurossi/malyao/prmatrix"
	"go.uber.org/zap"
)

// P1 runs the garbler's offline phase.
type P1 struct {
	config  *env.Config
	main    params.Execution
	cr      params.Execution
	conn    *p2p.Conn
	scheme  ot.Scheme
	options Options

	// wrap wraps the bundle builders. Tests use it to run a
	// cheating garbler.
	wrap func(b cutandchoose.Builder) cutandchoose.Builder
}

// NewP1 creates the garbler's offline phase for the main and
// cheating-recovery executions.
func NewP1(config *env.Config, main, cr params.Execution, conn *p2p.Conn,
	scheme ot.Scheme, options Options) *P1 {

	return &P1{
		config:  config,
		main:    main,
		cr:      cr,
		conn:    conn,
		scheme:  scheme,
		options: options,
	}
}

func (p *P1) builder(b cutandchoose.Builder) cutandchoose.Builder {
	if p.wrap != nil {
		return p.wrap(b)
	}
	return b
}

// Run runs the offline phase.
func (p *P1) Run(ctx context.Context) (*GarblerResult, error) {
	config := config(p.config)
	log := config.GetLogger(1)
	rand := config.GetRandom()

	enc, labels, err := validate(p.main, p.cr, p.options)
	if err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return nil, err
	}
	o, err := p.scheme.New(rand)
	if err != nil {
		return nil, mpcerr.Configuration("%v", err)
	}
	timing := circuit.NewTiming()

	mainMatrix, err := prmatrix.Receive(p.conn, p.main)
	if err != nil {
		return nil, err
	}
	crMatrix, err := prmatrix.Receive(p.conn, p.cr)
	if err != nil {
		return nil, err
	}
	timing.Transfer("Matrices", p.conn.Stats)

	mainBuilder, crBuilder, err := newBuilders(p.main, p.cr, mainMatrix,
		crMatrix, enc, labels)
	if err != nil {
		return nil, err
	}

	prover := &cutandchoose.Prover{
		Rand:   rand,
		Logger: log.Named("main"),
	}
	mainBuckets, err := prover.Run(ctx, p.conn, p.main,
		p.builder(mainBuilder))
	if err != nil {
		return nil, err
	}
	prover.Logger = log.Named("cr")
	crBuckets, err := prover.Run(ctx, p.conn, p.cr, p.builder(crBuilder))
	if err != nil {
		return nil, err
	}
	timing.Transfer("Cut-and-choose", p.conn.Stats)

	sender := &malot.Sender{
		OT:     o,
		Rand:   rand,
		Logger: log,
	}
	if err := sender.Init(p.conn); err != nil {
		return nil, err
	}
	if err := sender.Run(ctx, p.conn, p.main, mainMatrix, mainBuckets); err != nil {
		return nil, err
	}
	if err := sender.Run(ctx, p.conn, p.cr, crMatrix, crBuckets); err != nil {
		return nil, err
	}
	timing.Transfer("OT", p.conn.Stats)

	mainBuckets.Seal()
	crBuckets.Seal()

	log.Info("offline phase complete",
		zap.Stringer("main", mainBuckets), zap.Stringer("cr", crBuckets))

	return &GarblerResult{
		MainBuckets: mainBuckets,
		CRBuckets:   crBuckets,
		MainMatrix:  mainMatrix,
		CRMatrix:    crMatrix,
		Timing:      timing,
	}, nil
}
