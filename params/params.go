//
// params.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package params defines the execution parameters of one circuit type
// of the offline phase.
package params

import (
	"fmt"

	"github.com/markkurossi/malyao/circuit"
	"github.com/markkurossi/malyao/mpcerr"
)

// Execution holds the parameters of one circuit type: the circuit,
// the number of candidate circuits and their split into checked and
// evaluated circuits, and the bucket layout. Execution values are
// passed by value and not modified after construction.
type Execution struct {
	Circuit              *circuit.Circuit
	NumCircuits          int
	CheckCircuits        int
	EvalCircuits         int
	BucketSize           int
	NumBuckets           int
	StatisticalParameter int

	// InputSizeY2 is the number of the evaluator's input bits that
	// carry secret shares. It is zero for the main circuit.
	InputSizeY2 int
}

func (e Execution) String() string {
	return fmt.Sprintf("N=%d check=%d eval=%d buckets=%dx%d s=%d y2=%d",
		e.NumCircuits, e.CheckCircuits, e.EvalCircuits, e.NumBuckets,
		e.BucketSize, e.StatisticalParameter, e.InputSizeY2)
}

// Validate checks that the parameters are consistent. All failures
// are configuration errors.
func (e Execution) Validate() error {
	if e.Circuit == nil {
		return mpcerr.Configuration("no circuit")
	}
	if err := e.Circuit.Validate(); err != nil {
		return mpcerr.Configuration("invalid circuit: %v", err)
	}
	if e.Circuit.N2() <= 0 {
		return mpcerr.Configuration("circuit has no evaluator inputs")
	}
	if e.NumCircuits <= 0 {
		return mpcerr.Configuration("invalid number of circuits: %d",
			e.NumCircuits)
	}
	if e.CheckCircuits <= 0 || e.EvalCircuits <= 0 {
		return mpcerr.Configuration("invalid check/eval split: %d/%d",
			e.CheckCircuits, e.EvalCircuits)
	}
	if e.CheckCircuits+e.EvalCircuits != e.NumCircuits {
		return mpcerr.Configuration("check=%d + eval=%d != N=%d",
			e.CheckCircuits, e.EvalCircuits, e.NumCircuits)
	}
	if e.BucketSize <= 0 || e.NumBuckets <= 0 {
		return mpcerr.Configuration("invalid buckets: %dx%d",
			e.NumBuckets, e.BucketSize)
	}
	if e.NumBuckets*e.BucketSize != e.EvalCircuits {
		return mpcerr.Configuration("buckets %dx%d != eval=%d",
			e.NumBuckets, e.BucketSize, e.EvalCircuits)
	}
	if e.StatisticalParameter <= 0 {
		return mpcerr.Configuration("invalid statistical parameter: %d",
			e.StatisticalParameter)
	}
	if e.InputSizeY2 < 0 || e.InputSizeY2 > e.Circuit.N2() {
		return mpcerr.Configuration("invalid Y2 input size %d",
			e.InputSizeY2)
	}
	return nil
}

// SecretSharingLabels returns the indices 1...crInputSizeY of the
// cheating-recovery circuit's Y2 input labels that carry secret
// shares.
func SecretSharingLabels(crInputSizeY int) ([]int, error) {
	if crInputSizeY < 0 {
		return nil, mpcerr.Configuration("invalid Y2 input size %d",
			crInputSizeY)
	}
	result := make([]int, crInputSizeY)
	for i := range result {
		result[i] = i + 1
	}
	return result, nil
}
