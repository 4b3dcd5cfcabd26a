//
// receiver.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package malot

import (
	"context"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/markkurossi/malyao/bucket"
	"github.com/markkurossi/malyao/cutandchoose"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/ot"
	"github.com/markkurossi/malyao/p2p"
	"github.com/markkurossi/malyao/params"
	"github.com/markkurossi/malyao/prmatrix"
	"go.uber.org/zap"
)

// Receiver runs the evaluator's side of the transfer. The OT must be
// initialized as a receiver.
type Receiver struct {
	OT     ot.OT
	Rand   io.Reader
	Logger *zap.Logger
}

// Init initializes the OT as a receiver.
func (r *Receiver) Init(conn *p2p.Conn) error {
	if r.OT == nil {
		return mpcerr.Configuration("malot: no OT")
	}
	if err := r.OT.InitReceiver(conn); err != nil {
		return otError(err, "malot: init OT")
	}
	return nil
}

// Run receives the evaluator's input keys for all bundles of the
// buckets. The keys are written into the bundles' key slots. The
// received inputs are the decoded extended input bits: for bucket b,
// Inputs[b] is the evaluator's n-bit input matching its keys.
func (r *Receiver) Run(ctx context.Context, conn *p2p.Conn,
	execution params.Execution, matrix prmatrix.Matrix,
	buckets *bucket.List[*cutandchoose.Bundle]) ([]*bitset.BitSet, error) {

	if buckets == nil || buckets.NumBuckets() == 0 {
		return nil, mpcerr.Configuration("malot: no buckets")
	}
	if buckets.Sealed() {
		return nil, mpcerr.Configuration("malot: buckets sealed")
	}
	if r.OT == nil {
		return nil, mpcerr.Configuration("malot: no OT")
	}
	n2 := buckets.Bucket(0)[0].Shape().N2
	if err := checkParams(execution, matrix, buckets.NumBuckets(),
		buckets.BucketSize(), n2); err != nil {
		return nil, err
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := matrix.M()
	numBuckets := buckets.NumBuckets()

	inputs := make([]*bitset.BitSet, numBuckets)
	flags := make([]bool, numBuckets*m)
	for b := 0; b < numBuckets; b++ {
		y, err := randomInput(matrix.N(), r.Rand)
		if err != nil {
			return nil, mpcerr.Configuration("malot: input: %v", err)
		}
		yp, err := matrix.Encode(y, r.Rand)
		if err != nil {
			return nil, mpcerr.Configuration("malot: encode: %v", err)
		}
		for j := 0; j < m; j++ {
			flags[b*m+j] = yp.Test(uint(j))
		}
		inputs[b] = y
	}
	if err := ctx.Err(); err != nil {
		return nil, mpcerr.Communication(err, "malot")
	}

	keys := make([]ot.Label, len(flags))
	if err := r.OT.Receive(flags, keys); err != nil {
		return nil, otError(err, "malot: receive transfer keys")
	}
	log.Debug("transfer keys received", zap.Int("count", len(keys)))
	if err := ctx.Err(); err != nil {
		return nil, mpcerr.Communication(err, "malot")
	}

	var ld ot.LabelData
	for b := 0; b < numBuckets; b++ {
		slots, err := buckets.KeySlots(b)
		if err != nil {
			return nil, err
		}
		for _, bundle := range slots {
			for j := 0; j < m; j++ {
				var e0, e1 ot.Label
				if err := conn.ReceiveLabel(&e0, &ld); err != nil {
					return nil, mpcerr.Communication(err, "malot: receive keys")
				}
				if err := conn.ReceiveLabel(&e1, &ld); err != nil {
					return nil, mpcerr.Communication(err, "malot: receive keys")
				}
				bit := flags[b*m+j]
				key := e0
				if bit {
					key = e1
				}
				key.Xor(mask(keys[b*m+j], bundle.Index, j))

				if err := bundle.SetWireKey(j, bit, key); err != nil {
					log.Warn("input key rejected", zap.Int("bundle", bundle.Index),
						zap.Int("wire", j))
					return nil, err
				}
			}
		}
	}
	log.Debug("input keys verified", zap.Int("buckets", numBuckets))

	return inputs, nil
}

func randomInput(n int, rand io.Reader) (*bitset.BitSet, error) {
	buf := make([]byte, (n+7)/8)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, err
	}
	y := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		if buf[i/8]&(1<<(i%8)) != 0 {
			y.Set(uint(i))
		}
	}
	return y, nil
}
