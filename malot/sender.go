//
// sender.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package malot

import (
	"context"
	"io"

	"github.com/markkurossi/malyao/bucket"
	"github.com/markkurossi/malyao/cutandchoose"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/ot"
	"github.com/markkurossi/malyao/p2p"
	"github.com/markkurossi/malyao/params"
	"github.com/markkurossi/malyao/prmatrix"
	"go.uber.org/zap"
)

// Sender runs the garbler's side of the transfer. The OT must be
// initialized as a sender.
type Sender struct {
	OT     ot.OT
	Rand   io.Reader
	Logger *zap.Logger
}

// Init initializes the OT as a sender.
func (s *Sender) Init(conn *p2p.Conn) error {
	if s.OT == nil {
		return mpcerr.Configuration("malot: no OT")
	}
	if err := s.OT.InitSender(conn); err != nil {
		return otError(err, "malot: init OT")
	}
	return nil
}

// Run sends the evaluator's input keys of all bundles of the buckets.
func (s *Sender) Run(ctx context.Context, conn *p2p.Conn,
	execution params.Execution, matrix prmatrix.Matrix,
	buckets *bucket.List[*cutandchoose.GarbledBundle]) error {

	if buckets == nil || buckets.NumBuckets() == 0 {
		return mpcerr.Configuration("malot: no buckets")
	}
	if s.OT == nil {
		return mpcerr.Configuration("malot: no OT")
	}
	n2 := buckets.Bucket(0)[0].Bundle.Shape().N2
	if err := checkParams(execution, matrix, buckets.NumBuckets(),
		buckets.BucketSize(), n2); err != nil {
		return err
	}
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := matrix.M()
	numBuckets := buckets.NumBuckets()

	keys := make([]ot.Wire, numBuckets*m)
	for i := range keys {
		l0, err := ot.NewLabel(s.Rand)
		if err != nil {
			return mpcerr.Configuration("malot: transfer key: %v", err)
		}
		l1, err := ot.NewLabel(s.Rand)
		if err != nil {
			return mpcerr.Configuration("malot: transfer key: %v", err)
		}
		keys[i] = ot.Wire{
			L0: l0,
			L1: l1,
		}
	}
	if err := s.OT.Send(keys); err != nil {
		return otError(err, "malot: send transfer keys")
	}
	log.Debug("transfer keys sent", zap.Int("count", len(keys)))
	if err := ctx.Err(); err != nil {
		return mpcerr.Communication(err, "malot")
	}

	var ld ot.LabelData
	for b := 0; b < numBuckets; b++ {
		for _, bundle := range buckets.Bucket(b) {
			for j := 0; j < m; j++ {
				w := bundle.P2Wire(j)
				k := keys[b*m+j]

				e0 := w.L0
				e0.Xor(mask(k.L0, bundle.Bundle.Index, j))
				e1 := w.L1
				e1.Xor(mask(k.L1, bundle.Bundle.Index, j))

				if err := conn.SendLabel(e0, &ld); err != nil {
					return mpcerr.Communication(err, "malot: send keys")
				}
				if err := conn.SendLabel(e1, &ld); err != nil {
					return mpcerr.Communication(err, "malot: send keys")
				}
			}
		}
	}
	if err := conn.Flush(); err != nil {
		return mpcerr.Communication(err, "malot: send keys")
	}
	return nil
}
