//
// offline.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package offline runs the offline phase of the malicious-secure
// two-party computation for the main circuit and the cheating-recovery
// circuit. The evaluator (P2) builds the probe-resistant matrices,
// runs cut-and-choose, assigns the surviving circuits into buckets,
// and receives its input keys with a malicious-secure OT. The garbler
// (P1) runs the counterparts.
package offline

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/markkurossi/malyao/bucket"
	"github.com/markkurossi/malyao/circuit"
	"github.com/markkurossi/malyao/cutandchoose"
	"github.com/markkurossi/malyao/env"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/params"
	"github.com/markkurossi/malyao/prmatrix"
	"github.com/markkurossi/malyao/store"
	"github.com/markkurossi/malyao/symenc"
)

// Options define the offline phase options.
type Options struct {
	// WriteToFile stores the evaluation circuits' garbled tables in
	// TableDir instead of memory.
	WriteToFile bool
	TableDir    string

	// Cipher is the garbled table cipher.
	Cipher symenc.Kind

	// MatrixKind selects the probe-resistant matrix construction.
	MatrixKind prmatrix.Kind

	// ParallelVerify is the number of checked circuits verified
	// concurrently.
	ParallelVerify int
}

// Result holds the evaluator's offline phase artifacts.
type Result struct {
	MainBuckets *bucket.List[*cutandchoose.Bundle]
	CRBuckets   *bucket.List[*cutandchoose.Bundle]
	MainMatrix  prmatrix.Matrix
	CRMatrix    prmatrix.Matrix

	// MainInputs and CRInputs hold the evaluator's random inputs per
	// bucket. The input keys in the bundles encode these inputs.
	MainInputs []*bitset.BitSet
	CRInputs   []*bitset.BitSet

	// Tables is the table store when the tables are written to
	// files.
	Tables *store.Dir

	Timing *circuit.Timing
}

func (r *Result) String() string {
	return fmt.Sprintf("main=%v cr=%v", r.MainBuckets, r.CRBuckets)
}

// MainTables returns the main circuit's table store or nil if the
// tables are kept in memory.
func (r *Result) MainTables() cutandchoose.TableStore {
	if r.Tables == nil {
		return nil
	}
	return r.Tables.Tables(mainTables)
}

// CRTables returns the cheating-recovery circuit's table store or nil
// if the tables are kept in memory.
func (r *Result) CRTables() cutandchoose.TableStore {
	if r.Tables == nil {
		return nil
	}
	return r.Tables.Tables(crTables)
}

// GarblerResult holds the garbler's offline phase artifacts.
type GarblerResult struct {
	MainBuckets *bucket.List[*cutandchoose.GarbledBundle]
	CRBuckets   *bucket.List[*cutandchoose.GarbledBundle]
	MainMatrix  prmatrix.Matrix
	CRMatrix    prmatrix.Matrix
	Timing      *circuit.Timing
}

const (
	mainTables = "main"
	crTables   = "cr"
)

// validate checks the configuration before any network traffic.
func validate(main, cr params.Execution, options Options) (
	symenc.Cipher, []int, error) {

	if err := main.Validate(); err != nil {
		return nil, nil, err
	}
	if err := cr.Validate(); err != nil {
		return nil, nil, err
	}
	if main.InputSizeY2 != 0 {
		return nil, nil, mpcerr.Configuration(
			"main circuit has secret-sharing inputs")
	}
	labels, err := params.SecretSharingLabels(cr.InputSizeY2)
	if err != nil {
		return nil, nil, err
	}
	if options.WriteToFile && options.TableDir == "" {
		return nil, nil, mpcerr.Configuration("no table directory")
	}
	if options.ParallelVerify < 0 {
		return nil, nil, mpcerr.Configuration("invalid parallel verify %d",
			options.ParallelVerify)
	}
	enc, err := symenc.New(options.Cipher)
	if err != nil {
		return nil, nil, mpcerr.Configuration("%v", err)
	}
	return enc, labels, nil
}

func newBuilders(main, cr params.Execution, mainMatrix,
	crMatrix prmatrix.Matrix, enc symenc.Cipher, labels []int) (
	mainBuilder, crBuilder *cutandchoose.BundleBuilder, err error) {

	mainBuilder, err = cutandchoose.NewBundleBuilder(main.Circuit, mainMatrix,
		enc, nil)
	if err != nil {
		return
	}
	crBuilder, err = cutandchoose.NewBundleBuilder(cr.Circuit, crMatrix, enc,
		labels)
	return
}

func config(c *env.Config) *env.Config {
	if c == nil {
		return new(env.Config)
	}
	return c
}
