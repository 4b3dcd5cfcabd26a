//
// malot.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package malot transfers the evaluator's input wire keys of the
// evaluation bundles with a malicious-secure oblivious transfer.
//
// The evaluator picks random extended input bits for each bucket.
// One OT per bucket and extended input bit transfers a pair of random
// transfer keys. The garbler then sends each bundle's wire labels
// encrypted under the transfer keys. Because all bundles of a bucket
// share the transfer keys, the evaluator gets the keys of the same
// input in all of them. The probe-resistant input encoding makes the
// evaluator's abort behavior independent of its real input, and each
// received key is checked against the bundle's input commitment.
package malot

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/ot"
	"github.com/markkurossi/malyao/params"
	"github.com/markkurossi/malyao/prmatrix"
	"github.com/zeebo/blake3"
)

const maskDomain = "malyao transfer key"

// mask derives the mask of the bundle's input wire from the transfer
// key.
func mask(key ot.Label, bundle, wire int) ot.Label {
	var buf [16 + 16]byte
	var ld ot.LabelData

	h := blake3.New()
	h.Write([]byte(maskDomain))
	copy(buf[:], key.Bytes(&ld))
	binary.BigEndian.PutUint64(buf[16:], uint64(bundle))
	binary.BigEndian.PutUint64(buf[24:], uint64(wire))
	h.Write(buf[:])

	var sum [32]byte
	h.Sum(sum[:0])

	var result ot.Label
	result.SetBytes(sum[:16])
	return result
}

// otError classifies the OT error err.
func otError(err error, what string) error {
	if errors.Is(err, ot.ErrConsistency) || errors.Is(err, ot.ErrInvalidPoint) {
		return mpcerr.WrapCheatAttempt(err, "%s", what)
	}
	return mpcerr.Communication(err, "%s", what)
}

// checkParams checks that the matrix and the bucket layout match the
// execution.
func checkParams(execution params.Execution, matrix prmatrix.Matrix,
	numBuckets, bucketSize, n2 int) error {

	if err := execution.Validate(); err != nil {
		return err
	}
	if matrix == nil {
		return mpcerr.Configuration("malot: no matrix")
	}
	if matrix.N() != execution.Circuit.N2() {
		return mpcerr.Configuration("malot: matrix rows %d != input size %d",
			matrix.N(), execution.Circuit.N2())
	}
	if numBuckets != execution.NumBuckets ||
		bucketSize != execution.BucketSize {
		return mpcerr.Configuration("malot: buckets %dx%d != %dx%d",
			numBuckets, bucketSize, execution.NumBuckets,
			execution.BucketSize)
	}
	if n2 != matrix.M() {
		return mpcerr.Configuration(
			"malot: extended input size %d != matrix columns %d",
			n2, matrix.M())
	}
	return nil
}
