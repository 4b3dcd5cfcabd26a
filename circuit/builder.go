//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
)

// Builder builds two-party circuits gate by gate.
type Builder struct {
	inputs   IO
	numWires int
	gates    []Gate
	stats    Stats
}

// NewBuilder creates a new builder for a circuit with the garbler and
// evaluator input arguments.
func NewBuilder(garbler, evaluator IOArg) *Builder {
	return &Builder{
		inputs:   IO{garbler, evaluator},
		numWires: garbler.Size + evaluator.Size,
	}
}

// Input returns the wire of party's input bit i. The garbler is
// party 0 and the evaluator party 1.
func (b *Builder) Input(party, i int) Wire {
	if party == 0 {
		return Wire(i)
	}
	return Wire(b.inputs[0].Size + i)
}

func (b *Builder) gate(op Operation, i0, i1 Wire) Wire {
	o := Wire(b.numWires)
	b.numWires++
	b.gates = append(b.gates, Gate{
		Input0: i0,
		Input1: i1,
		Output: o,
		Op:     op,
	})
	b.stats[op]++
	return o
}

// XOR adds an XOR gate.
func (b *Builder) XOR(x, y Wire) Wire {
	return b.gate(XOR, x, y)
}

// XNOR adds an XNOR gate.
func (b *Builder) XNOR(x, y Wire) Wire {
	return b.gate(XNOR, x, y)
}

// AND adds an AND gate.
func (b *Builder) AND(x, y Wire) Wire {
	return b.gate(AND, x, y)
}

// OR adds an OR gate.
func (b *Builder) OR(x, y Wire) Wire {
	return b.gate(OR, x, y)
}

// INV adds an INV gate.
func (b *Builder) INV(x Wire) Wire {
	return b.gate(INV, x, 0)
}

// Build creates the circuit with the output wires. The wires are
// renumbered so that the outputs are the last wires of the circuit.
// Each output must be a distinct gate output.
func (b *Builder) Build(outputs IO, wires []Wire) (*Circuit, error) {
	if outputs.Size() != len(wires) {
		return nil, errors.Newf("circuit: #outputs=%d != #wires=%d",
			outputs.Size(), len(wires))
	}
	numInputs := b.inputs.Size()
	numWires := b.numWires

	mapping := make([]Wire, numWires)
	assigned := make([]bool, numWires)
	for i := 0; i < numInputs; i++ {
		mapping[i] = Wire(i)
	}
	for idx, w := range wires {
		if w.ID() < numInputs || w.ID() >= numWires {
			return nil, errors.Newf("circuit: output %d: %v is not a gate",
				idx, w)
		}
		if assigned[w] {
			return nil, errors.Newf("circuit: output %d: duplicate %v",
				idx, w)
		}
		assigned[w] = true
		mapping[w] = Wire(numWires - len(wires) + idx)
	}
	next := numInputs
	for i := numInputs; i < numWires; i++ {
		if !assigned[i] {
			mapping[i] = Wire(next)
			next++
		}
	}

	gates := make([]Gate, len(b.gates))
	for idx, g := range b.gates {
		gates[idx] = Gate{
			Input0: mapping[g.Input0],
			Output: mapping[g.Output],
			Op:     g.Op,
		}
		if g.Op != INV {
			gates[idx].Input1 = mapping[g.Input1]
		}
	}

	return &Circuit{
		NumGates: len(gates),
		NumWires: numWires,
		Inputs:   b.inputs,
		Outputs:  outputs,
		Gates:    gates,
		Stats:    b.stats,
	}, nil
}

// Encoding defines a binary matrix encoding the evaluator's inputs:
// the evaluator's original input bit i is the XOR of the extended
// input bits j for which Row(i) has bit j set.
type Encoding interface {
	// N returns the number of rows i.e. original input bits.
	N() int

	// M returns the number of columns i.e. extended input bits.
	M() int

	// Row returns the row i of the matrix.
	Row(i int) *bitset.BitSet
}

// Extend creates a new circuit where the evaluator's input is
// replaced with the extended input of the encoding. The new circuit
// recomputes the original input from the extended input with an XOR
// layer in front of the original circuit.
func Extend(c *Circuit, enc Encoding) (*Circuit, error) {
	n1 := c.N1()
	n2 := c.N2()
	if enc.N() != n2 {
		return nil, errors.Newf("circuit: encoding rows %d != input size %d",
			enc.N(), n2)
	}
	evaluator := c.Inputs[1]
	evaluator.Name += "'"
	evaluator.Size = enc.M()

	b := NewBuilder(c.Inputs[0], evaluator)

	mapping := make([]Wire, c.NumWires)
	for i := 0; i < n1; i++ {
		mapping[i] = b.Input(0, i)
	}
	for i := 0; i < n2; i++ {
		row := enc.Row(i)
		var w Wire
		var count int
		for j, ok := row.NextSet(0); ok; j, ok = row.NextSet(j + 1) {
			if int(j) >= enc.M() {
				break
			}
			if count == 0 {
				w = b.Input(1, int(j))
			} else {
				w = b.XOR(w, b.Input(1, int(j)))
			}
			count++
		}
		if count == 0 {
			return nil, errors.Newf("circuit: encoding row %d is zero", i)
		}
		mapping[n1+i] = w
	}
	for _, g := range c.Gates {
		var i1 Wire
		if g.Op != INV {
			i1 = mapping[g.Input1]
		}
		mapping[g.Output] = b.gate(g.Op, mapping[g.Input0], i1)
	}

	numOutputs := c.NumOutputs()
	outputs := make([]Wire, numOutputs)
	for i := 0; i < numOutputs; i++ {
		outputs[i] = mapping[c.NumWires-numOutputs+i]
	}
	return b.Build(c.Outputs, outputs)
}
