//
// protocol.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prmatrix

import (
	"io"

	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/p2p"
	"github.com/markkurossi/malyao/params"
)

// SelectAndSend builds a matrix for the evaluator's input of the
// execution and sends its description to the peer.
func SelectAndSend(conn *p2p.Conn, execution params.Execution, kind Kind,
	rand io.Reader) (Matrix, error) {

	if err := execution.Validate(); err != nil {
		return nil, err
	}
	matrix, err := Build(kind, execution.Circuit.N2(),
		execution.StatisticalParameter, rand)
	if err != nil {
		return nil, err
	}
	if err := conn.SendData(matrix.Marshal()); err != nil {
		return nil, mpcerr.Communication(err, "send matrix")
	}
	if err := conn.Flush(); err != nil {
		return nil, mpcerr.Communication(err, "send matrix")
	}
	return matrix, nil
}

// Receive receives the matrix description from the peer and checks
// that it matches the execution.
func Receive(conn *p2p.Conn, execution params.Execution) (Matrix, error) {
	data, err := conn.ReceiveData()
	if err != nil {
		return nil, mpcerr.Communication(err, "receive matrix")
	}
	matrix, err := Unmarshal(data)
	if err != nil {
		return nil, mpcerr.WrapCheatAttempt(err, "invalid matrix")
	}
	if matrix.N() != execution.Circuit.N2() ||
		matrix.K() < execution.StatisticalParameter {
		return nil, mpcerr.CheatAttempt(
			"matrix %dx%d k=%d does not match input size %d and s=%d",
			matrix.N(), matrix.M(), matrix.K(), execution.Circuit.N2(),
			execution.StatisticalParameter)
	}
	return matrix, nil
}
