//
// p2.go
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
	"github.com/markkurossi/malyao/store"
	"go.uber.org/zap"
)

// P2 runs the evaluator's offline phase.
type P2 struct {
	config  *env.Config
	main    params.Execution
	cr      params.Execution
	conn    *p2p.Conn
	scheme  ot.Scheme
	options Options
}

// NewP2 creates the evaluator's offline phase for the main and
// cheating-recovery executions. The OT scheme must match the
// garbler's scheme.
func NewP2(config *env.Config, main, cr params.Execution, conn *p2p.Conn,
	scheme ot.Scheme, options Options) *P2 {

	return &P2{
		config:  config,
		main:    main,
		cr:      cr,
		conn:    conn,
		scheme:  scheme,
		options: options,
	}
}

// Run runs the offline phase. It returns the result only if all
// steps succeed. The errors are classified with the mpcerr error
// classes.
func (p *P2) Run(ctx context.Context) (*Result, error) {
	config := config(p.config)
	log := config.GetLogger(2)
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
	var dir *store.Dir
	if p.options.WriteToFile {
		dir, err = store.Open(p.options.TableDir, rand)
		if err != nil {
			return nil, mpcerr.Configuration("%v", err)
		}
		log.Debug("table store", zap.String("dir", dir.Path()))
	}

	timing := circuit.NewTiming()
	log.Info("offline phase", zap.Stringer("main", p.main),
		zap.Stringer("cr", p.cr))

	// Probe-resistant matrices.
	mainMatrix, err := prmatrix.SelectAndSend(p.conn, p.main,
		p.options.MatrixKind, rand)
	if err != nil {
		return nil, p.fail(log, dir, "main matrix", err)
	}
	crMatrix, err := prmatrix.SelectAndSend(p.conn, p.cr,
		p.options.MatrixKind, rand)
	if err != nil {
		return nil, p.fail(log, dir, "cr matrix", err)
	}
	log.Debug("matrices selected",
		zap.Int("main", mainMatrix.M()), zap.Int("cr", crMatrix.M()))
	timing.Transfer("Matrices", p.conn.Stats)

	mainBuilder, crBuilder, err := newBuilders(p.main, p.cr, mainMatrix,
		crMatrix, enc, labels)
	if err != nil {
		return nil, p.fail(log, dir, "builders", err)
	}

	// Cut-and-choose.
	verifier := &cutandchoose.Verifier{
		Rand:     rand,
		Logger:   log.Named("main"),
		Parallel: p.options.ParallelVerify,
	}
	if dir != nil {
		verifier.Store = dir.Tables(mainTables)
	}
	mainBuckets, err := verifier.Run(ctx, p.conn, p.main, mainBuilder, 0)
	if err != nil {
		return nil, p.fail(log, dir, "main cut-and-choose", err)
	}

	verifier.Logger = log.Named("cr")
	if dir != nil {
		verifier.Store = dir.Tables(crTables)
	}
	crBuckets, err := verifier.Run(ctx, p.conn, p.cr, crBuilder, len(labels))
	if err != nil {
		return nil, p.fail(log, dir, "cr cut-and-choose", err)
	}
	timing.Transfer("Cut-and-choose", p.conn.Stats)

	// Input keys.
	receiver := &malot.Receiver{
		OT:     o,
		Rand:   rand,
		Logger: log,
	}
	if err := receiver.Init(p.conn); err != nil {
		return nil, p.fail(log, dir, "OT init", err)
	}
	mainInputs, err := receiver.Run(ctx, p.conn, p.main, mainMatrix,
		mainBuckets)
	if err != nil {
		return nil, p.fail(log, dir, "main OT", err)
	}
	crInputs, err := receiver.Run(ctx, p.conn, p.cr, crMatrix, crBuckets)
	if err != nil {
		return nil, p.fail(log, dir, "cr OT", err)
	}
	timing.Transfer("OT", p.conn.Stats)

	mainBuckets.Seal()
	crBuckets.Seal()

	log.Info("offline phase complete",
		zap.Stringer("main", mainBuckets), zap.Stringer("cr", crBuckets))

	return &Result{
		MainBuckets: mainBuckets,
		CRBuckets:   crBuckets,
		MainMatrix:  mainMatrix,
		CRMatrix:    crMatrix,
		MainInputs:  mainInputs,
		CRInputs:    crInputs,
		Tables:      dir,
		Timing:      timing,
	}, nil
}

func (p *P2) fail(log *zap.Logger, dir *store.Dir, step string,
	err error) error {

	log.Error("offline phase failed", zap.String("step", step),
		zap.Error(err), zap.Bool("cheat", mpcerr.IsCheatAttempt(err)))
	if dir != nil {
		if rerr := dir.RemoveAll(); rerr != nil {
			log.Warn("failed to remove tables", zap.Error(rerr))
		}
	}
	return err
}
