//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"

	"github.com/markkurossi/malyao/circuit"
	"github.com/markkurossi/malyao/env"
	"github.com/markkurossi/malyao/offline"
	"github.com/markkurossi/malyao/ot"
	"github.com/markkurossi/malyao/p2p"
	"github.com/markkurossi/malyao/params"
	"github.com/markkurossi/malyao/prmatrix"
	"github.com/markkurossi/malyao/symenc"
	"go.uber.org/zap"
)

var (
	verbose = false
	dotFile = ""
)

func main() {
	evaluator := flag.Bool("e", false, "evaluator mode")
	garbler := flag.Bool("g", false, "garbler mode")
	addr := flag.String("addr", ":8080", "network address")
	bits := flag.Int("bits", 8, "comparator input size in bits")
	numCircuits := flag.Int("N", 40, "number of candidate circuits")
	check := flag.Int("check", 20, "number of checked circuits")
	bucketSize := flag.Int("bucket", 4, "bucket size")
	s := flag.Int("s", 40, "statistical security parameter")
	crBits := flag.Int("cr", 8, "cheating-recovery proof size in bits")
	otScheme := flag.String("ot", "kos", "OT scheme: co, ristretto, kos")
	matrixKind := flag.String("matrix", "random",
		"probe-resistant matrix: random, block")
	cipherKind := flag.String("cipher", "ctr", "table cipher: ctr, cbc, box")
	tables := flag.String("tables", "", "garbled table directory")
	parallel := flag.Int("parallel", 0, "parallel verification")
	dot := flag.String("dot", "", "write extended main circuit graph to `file`")
	fVerbose := flag.Bool("v", false, "verbose output")
	fDebug := flag.Bool("d", false, "debug logging")
	flag.Parse()

	log.SetFlags(0)
	verbose = *fVerbose
	dotFile = *dot

	var mainCircuit *circuit.Circuit
	var err error
	if len(flag.Args()) > 0 {
		mainCircuit, err = circuit.ParseFile(flag.Args()[0])
	} else {
		mainCircuit, err = circuit.NewComparator(*bits)
	}
	if err != nil {
		log.Fatal(err)
	}
	cr, err := circuit.NewCheatingRecovery(mainCircuit.N1(), *crBits)
	if err != nil {
		log.Fatal(err)
	}
	if verbose {
		fmt.Printf("main: %v\n", mainCircuit)
		fmt.Printf("cr  : %v\n", cr)
	}

	mainExec := execution(mainCircuit, *numCircuits, *check, *bucketSize, *s, 0)
	crExec := execution(cr, *numCircuits, *check, *bucketSize, *s, *crBits)

	scheme, err := ot.ParseScheme(*otScheme)
	if err != nil {
		log.Fatal(err)
	}
	kind, err := prmatrix.ParseKind(*matrixKind)
	if err != nil {
		log.Fatal(err)
	}
	cipher, err := symenc.ParseKind(*cipherKind)
	if err != nil {
		log.Fatal(err)
	}
	options := offline.Options{
		WriteToFile:    len(*tables) > 0,
		TableDir:       *tables,
		Cipher:         cipher,
		MatrixKind:     kind,
		ParallelVerify: *parallel,
	}

	logger := zap.NewNop()
	if *fDebug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatal(err)
		}
		defer logger.Sync()
	}
	config := &env.Config{
		Logger:  logger,
		Verbose: verbose,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *evaluator:
		err = evaluatorMode(ctx, config, mainExec, crExec, scheme, options,
			*addr)
	case *garbler:
		err = garblerMode(ctx, config, mainExec, crExec, scheme, options,
			*addr)
	default:
		err = pipeMode(ctx, config, mainExec, crExec, scheme, options)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func execution(c *circuit.Circuit, n, check, bucketSize, s,
	y2 int) params.Execution {

	eval := n - check
	var buckets int
	if bucketSize > 0 {
		buckets = eval / bucketSize
	}
	return params.Execution{
		Circuit:              c,
		NumCircuits:          n,
		CheckCircuits:        check,
		EvalCircuits:         eval,
		BucketSize:           bucketSize,
		NumBuckets:           buckets,
		StatisticalParameter: s,
		InputSizeY2:          y2,
	}
}

func evaluatorMode(ctx context.Context, config *env.Config,
	main, cr params.Execution, scheme ot.Scheme, options offline.Options,
	addr string) error {

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer listener.Close()
	if config.Verbose {
		fmt.Printf("Listening for connections at %s\n", addr)
	}
	conn, peer, err := p2p.Accept(ctx, listener, 2, config.GetLogger(2))
	if err != nil {
		return err
	}
	defer conn.Close()
	if config.Verbose {
		fmt.Printf(" - Peer P%d connected\n", peer)
	}
	return runEvaluator(ctx, config, main, cr, conn, scheme, options)
}

func runEvaluator(ctx context.Context, config *env.Config,
	main, cr params.Execution, conn *p2p.Conn, scheme ot.Scheme,
	options offline.Options) error {

	if config.Verbose {
		fmt.Printf(" - Running offline phase...\n")
	}
	result, err := offline.NewP2(config, main, cr, conn, scheme, options).
		Run(ctx)
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Printf(" - Main buckets: %v\n", result.MainBuckets)
		fmt.Printf(" - CR buckets  : %v\n", result.CRBuckets)
		fmt.Printf(" - Main matrix : %dx%d\n",
			result.MainMatrix.N(), result.MainMatrix.M())
		fmt.Printf(" - CR matrix   : %dx%d\n",
			result.CRMatrix.N(), result.CRMatrix.M())
		if result.Tables != nil {
			fmt.Printf(" - Tables      : %s\n", result.Tables.Path())
		}
	}
	result.Timing.Print(os.Stdout, conn.Stats)

	if len(dotFile) > 0 {
		ext, err := circuit.Extend(main.Circuit, result.MainMatrix)
		if err != nil {
			return err
		}
		f, err := os.Create(dotFile)
		if err != nil {
			return err
		}
		ext.Dot(f)
		return f.Close()
	}
	return nil
}

func garblerMode(ctx context.Context, config *env.Config,
	main, cr params.Execution, scheme ot.Scheme, options offline.Options,
	addr string) error {

	conn, peer, err := p2p.Dial(ctx, addr, 1, config.GetLogger(1))
	if err != nil {
		return err
	}
	defer conn.Close()
	if config.Verbose {
		fmt.Printf(" - Connected to P%d\n", peer)
	}
	result, err := offline.NewP1(config, main, cr, conn, scheme, options).
		Run(ctx)
	if err != nil {
		return err
	}
	result.Timing.Print(os.Stdout, conn.Stats)
	return nil
}

func pipeMode(ctx context.Context, config *env.Config,
	main, cr params.Execution, scheme ot.Scheme,
	options offline.Options) error {

	c1, c2 := p2p.Pipe()

	done := make(chan error)
	go func() {
		_, err := offline.NewP1(config, main, cr, c1, scheme, options).
			Run(ctx)
		if err != nil {
			c1.Shutdown()
		}
		done <- err
	}()

	err := runEvaluator(ctx, config, main, cr, c2, scheme, options)
	if err != nil {
		c2.Shutdown()
	}
	gerr := <-done
	if err != nil {
		return err
	}
	return gerr
}
