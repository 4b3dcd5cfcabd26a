//
// builder.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package cutandchoose

import (
	"io"

	"github.com/markkurossi/malyao/circuit"
	"github.com/markkurossi/malyao/mpcerr"
	"github.com/markkurossi/malyao/ot"
	"github.com/markkurossi/malyao/prmatrix"
	"github.com/markkurossi/malyao/symenc"
)

const shareInfo = "malyao secret shares v1"

// Builder builds the garbler's bundle for a candidate index from a
// garbling seed. The same index and seed always produce the same
// bundle so the evaluator can rebuild opened bundles.
type Builder interface {
	Shape() Shape
	Build(index int, seed []byte) (*GarbledBundle, error)
}

// GarbledBundle is the garbler's view of a bundle. Shares[i] is the
// label of the original evaluator input wire labels[i]-1 for the
// corresponding bit of the proof secret.
type GarbledBundle struct {
	Seed    []byte
	Garbled *circuit.Garbled
	Shares  []ot.Label
	Bundle  *Bundle
	n1      int
	y2      []ot.Wire
}

// Seal implements bucket.Sealer. The garbler side has no key slots.
func (g *GarbledBundle) Seal() {
}

// P1Wire returns the garbler's input wire i.
func (g *GarbledBundle) P1Wire(i int) ot.Wire {
	return g.Garbled.Inputs[i]
}

// P2Wire returns the evaluator's extended input wire i.
func (g *GarbledBundle) P2Wire(i int) ot.Wire {
	return g.Garbled.Inputs[g.n1+i]
}

// Secret returns the cheating-recovery proof secret that the
// bundle's shares encode. The evaluator input that equals the secret
// opens the garbler's input in the cheating-recovery circuit.
func (g *GarbledBundle) Secret() []bool {
	result := make([]bool, len(g.Shares))
	for i, share := range g.Shares {
		result[i] = share.Equal(g.y2[i].L1)
	}
	return result
}

// Y2Wire returns the wire of the original evaluator input bit that
// carries the share i.
func (g *GarbledBundle) Y2Wire(i int) ot.Wire {
	return g.y2[i]
}

// BundleBuilder garbles the circuit with the evaluator input extended
// by a probe-resistant matrix.
type BundleBuilder struct {
	circuit *circuit.Circuit
	matrix  prmatrix.Matrix
	cipher  symenc.Cipher
	labels  []int
}

// NewBundleBuilder creates a builder for the circuit c. The evaluator
// input of c is extended with the matrix. The labels define the
// evaluator's Y2 input labels that carry cheating-recovery secret
// shares.
func NewBundleBuilder(c *circuit.Circuit, matrix prmatrix.Matrix,
	enc symenc.Cipher, labels []int) (*BundleBuilder, error) {

	if c == nil || matrix == nil || enc == nil {
		return nil, mpcerr.Configuration("bundle builder: missing arguments")
	}
	for _, l := range labels {
		if l < 1 || l > c.N2() {
			return nil, mpcerr.Configuration("bundle builder: invalid label %d",
				l)
		}
	}
	extended, err := circuit.Extend(c, matrix)
	if err != nil {
		return nil, mpcerr.Configuration("bundle builder: %v", err)
	}
	return &BundleBuilder{
		circuit: extended,
		matrix:  matrix,
		cipher:  enc,
		labels:  append([]int(nil), labels...),
	}, nil
}

// Circuit returns the extended circuit.
func (b *BundleBuilder) Circuit() *circuit.Circuit {
	return b.circuit
}

// Cipher returns the garbled table cipher.
func (b *BundleBuilder) Cipher() symenc.Cipher {
	return b.cipher
}

// Shape implements Builder.Shape.
func (b *BundleBuilder) Shape() Shape {
	return Shape{
		N1:      b.circuit.N1(),
		N2:      b.circuit.N2(),
		Outputs: b.circuit.NumOutputs(),
		Shares:  len(b.labels),
	}
}

// Build implements Builder.Build.
func (b *BundleBuilder) Build(index int, seed []byte) (*GarbledBundle, error) {
	garbled, err := b.circuit.Garble(seed, b.cipher)
	if err != nil {
		return nil, err
	}
	n1 := b.circuit.N1()
	n2 := b.circuit.N2()

	bundle := &Bundle{
		Index:        index,
		TablesDigest: TablesDigest(index, garbled.Tables, garbled.Decoding),
		Decoding:     garbled.Decoding,
		P1Inputs:     make([][2]Digest, n1),
		P2Inputs:     make([][2]Digest, n2),
		Shares:       make([]Digest, len(b.labels)),
		Tables:       garbled.Tables,
	}
	for i := 0; i < n1; i++ {
		w := garbled.Inputs[i]
		l0, l1 := w.L0, w.L1
		if l0.S() {
			l0, l1 = l1, l0
		}
		bundle.P1Inputs[i][0] = CommitP1Input(index, i, false, l0)
		bundle.P1Inputs[i][1] = CommitP1Input(index, i, true, l1)
	}
	for i := 0; i < n2; i++ {
		w := garbled.Inputs[n1+i]
		bundle.P2Inputs[i][0] = CommitP2Input(index, i, false, w.L0)
		bundle.P2Inputs[i][1] = CommitP2Input(index, i, true, w.L1)
	}

	prg, err := circuit.NewPRG(seed, shareInfo)
	if err != nil {
		return nil, err
	}
	proof := make([]byte, len(b.labels))
	if _, err := io.ReadFull(prg, proof); err != nil {
		return nil, err
	}
	shares := make([]ot.Label, len(b.labels))
	y2 := make([]ot.Wire, len(b.labels))
	for i, l := range b.labels {
		y2[i] = b.inputWire(garbled, l-1)
		shares[i] = y2[i].Label(proof[i]&1 == 1)
		bundle.Shares[i] = CommitShare(index, l, shares[i])
	}

	return &GarbledBundle{
		Seed:    append([]byte(nil), seed...),
		Garbled: garbled,
		Shares:  shares,
		Bundle:  bundle,
		n1:      n1,
		y2:      y2,
	}, nil
}

// inputWire returns the labels of the original evaluator input bit
// i. The bit is the XOR of the extended input bits on the matrix row
// i so with free-XOR its zero label is the XOR of their zero labels.
func (b *BundleBuilder) inputWire(garbled *circuit.Garbled, i int) ot.Wire {
	n1 := b.circuit.N1()
	m := b.matrix.M()

	var l0 ot.Label
	row := b.matrix.Row(i)
	for j, ok := row.NextSet(0); ok && int(j) < m; j, ok = row.NextSet(j + 1) {
		l0.Xor(garbled.Inputs[n1+int(j)].L0)
	}
	l1 := l0
	l1.Xor(garbled.Delta)
	return ot.Wire{
		L0: l0,
		L1: l1,
	}
}
