//
// protocol.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package cutandchoose

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/p2p"
	"github.com/markkurossi/malyao/params"
)

// The protocol runs in five rounds:
//
//	P2 -> P1: coin commitment
//	P1 -> P2: N bundle headers, coin share s1
//	P2 -> P1: coin share s2 and its nonce
//	P1 -> P2: garbling seeds of the checked bundles
//	P1 -> P2: garbled tables of the evaluation bundles
//
// Both parties derive the challenge from s1 and s2 after the third
// round.

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return mpcerr.Communication(err, "cut-and-choose")
	}
	return nil
}

func checkExecution(execution params.Execution, builder Builder) error {
	if err := execution.Validate(); err != nil {
		return err
	}
	if builder == nil {
		return mpcerr.Configuration("no bundle builder")
	}
	shape := builder.Shape()
	if shape.N1 != execution.Circuit.N1() {
		return mpcerr.Configuration("builder P1 inputs %d != %d",
			shape.N1, execution.Circuit.N1())
	}
	if shape.Outputs != execution.Circuit.NumOutputs() {
		return mpcerr.Configuration("builder outputs %d != %d",
			shape.Outputs, execution.Circuit.NumOutputs())
	}
	return nil
}

func receiveFixed(conn *p2p.Conn, size int, what string) ([]byte, error) {
	data, err := conn.ReceiveData()
	if err != nil {
		return nil, mpcerr.Communication(err, "receive %s", what)
	}
	if len(data) != size {
		return nil, mpcerr.Communication(
			errors.Newf("invalid size %d, expected %d", len(data), size),
			"receive %s", what)
	}
	return data, nil
}
