//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package circuit implements boolean circuits and their free-XOR,
// point-and-permute garbling. Garbling is deterministic in its seed
// so that a garbled circuit can be re-derived from an opening.
package circuit

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Operation specifies gate function.
type Operation byte

// Gate functions.
const (
	XOR Operation = iota
	XNOR
	AND
	OR
	INV
)

// Stats holds statistics about circuit operations.
type Stats [INV + 1]int

func (op Operation) String() string {
	switch op {
	case XOR:
		return "XOR"
	case XNOR:
		return "XNOR"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case INV:
		return "INV"
	default:
		return fmt.Sprintf("{Operation %d}", op)
	}
}

// Free tests if the gate function is evaluated without a garbled
// table.
func (op Operation) Free() bool {
	switch op {
	case XOR, XNOR, INV:
		return true
	default:
		return false
	}
}

// IOArg describes circuit input argument.
type IOArg struct {
	Name string
	Type string
	Size int
}

func (io IOArg) String() string {
	if len(io.Name) > 0 {
		return io.Name + ":" + io.Type
	}
	return io.Type
}

// IO specifies circuit input and output arguments.
type IO []IOArg

// Size computes the size of the circuit input and output arguments in
// bits.
func (io IO) Size() int {
	var sum int
	for _, a := range io {
		sum += a.Size
	}
	return sum
}

func (io IO) String() string {
	var str = ""
	for i, a := range io {
		if i > 0 {
			str += ", "
		}
		str += a.String()
	}
	return str
}

// Circuit specifies a two-party boolean circuit. The wires
// 0...N1()-1 are the garbler's inputs, the next N2() wires are the
// evaluator's inputs, and the last Outputs.Size() wires are the
// circuit outputs. Gates are in topological order.
type Circuit struct {
	NumGates int
	NumWires int
	Inputs   IO
	Outputs  IO
	Gates    []Gate
	Stats    Stats
}

func (c *Circuit) String() string {
	var stats string

	for k := XOR; k <= INV; k++ {
		v := c.Stats[k]
		if len(stats) > 0 {
			stats += " "
		}
		stats += fmt.Sprintf("%s=%d", k, v)
	}
	return fmt.Sprintf("#gates=%d (%s) #w=%d", c.NumGates, stats, c.NumWires)
}

// N1 returns the number of garbler input bits.
func (c *Circuit) N1() int {
	if len(c.Inputs) < 1 {
		return 0
	}
	return c.Inputs[0].Size
}

// N2 returns the number of evaluator input bits.
func (c *Circuit) N2() int {
	if len(c.Inputs) < 2 {
		return 0
	}
	return c.Inputs[1].Size
}

// NumInputs returns the total number of input wires.
func (c *Circuit) NumInputs() int {
	return c.N1() + c.N2()
}

// NumOutputs returns the number of output wires.
func (c *Circuit) NumOutputs() int {
	return c.Outputs.Size()
}

// NumTables returns the number of gates needing a garbled table.
func (c *Circuit) NumTables() int {
	return c.Stats[AND] + c.Stats[OR]
}

// Cost computes the relative computational cost of the circuit.
func (c *Circuit) Cost() int {
	return (c.Stats[AND] + c.Stats[OR]) * 4
}

// Dump prints a debug dump of the circuit.
func (c *Circuit) Dump() {
	fmt.Printf("circuit %s\n", c)
	for id, gate := range c.Gates {
		fmt.Printf("%04d\t%s\n", id, gate)
	}
}

// Validate checks the circuit structure: it must have exactly two
// input arguments, all gate inputs must be assigned before use, and
// each wire must be assigned at most once.
func (c *Circuit) Validate() error {
	if len(c.Inputs) != 2 {
		return errors.Newf("circuit: expected 2 inputs, got %d",
			len(c.Inputs))
	}
	if c.NumGates != len(c.Gates) {
		return errors.Newf("circuit: #gates=%d != len(gates)=%d",
			c.NumGates, len(c.Gates))
	}
	numInputs := c.NumInputs()
	if numInputs+c.NumOutputs() > c.NumWires {
		return errors.Newf("circuit: #inputs=%d + #outputs=%d > #wires=%d",
			numInputs, c.NumOutputs(), c.NumWires)
	}
	assigned := make([]bool, c.NumWires)
	for i := 0; i < numInputs; i++ {
		assigned[i] = true
	}
	var stats Stats
	for id, g := range c.Gates {
		if g.Op > INV {
			return errors.Newf("circuit: gate %d: invalid operation %v",
				id, g.Op)
		}
		stats[g.Op]++
		for _, w := range g.Inputs() {
			if w.ID() >= c.NumWires || !assigned[w] {
				return errors.Newf("circuit: gate %d: input %v not assigned",
					id, w)
			}
		}
		if g.Output.ID() >= c.NumWires || assigned[g.Output] {
			return errors.Newf("circuit: gate %d: invalid output %v",
				id, g.Output)
		}
		assigned[g.Output] = true
	}
	for i := c.NumWires - c.NumOutputs(); i < c.NumWires; i++ {
		if !assigned[i] {
			return errors.Newf("circuit: output wire %d not assigned", i)
		}
	}
	if stats != c.Stats {
		return errors.Newf("circuit: invalid stats %v, expected %v",
			c.Stats, stats)
	}
	return nil
}

// Compute evaluates the circuit in plaintext. The inputs contain the
// garbler's input bits followed by the evaluator's input bits.
func (c *Circuit) Compute(inputs []bool) ([]bool, error) {
	if len(inputs) != c.NumInputs() {
		return nil, errors.Newf("circuit: got %d inputs, expected %d",
			len(inputs), c.NumInputs())
	}
	wires := make([]bool, c.NumWires)
	copy(wires, inputs)

	for _, g := range c.Gates {
		var result bool
		switch g.Op {
		case XOR:
			result = wires[g.Input0] != wires[g.Input1]
		case XNOR:
			result = wires[g.Input0] == wires[g.Input1]
		case AND:
			result = wires[g.Input0] && wires[g.Input1]
		case OR:
			result = wires[g.Input0] || wires[g.Input1]
		case INV:
			result = !wires[g.Input0]
		default:
			return nil, errors.Newf("circuit: invalid operation %v", g.Op)
		}
		wires[g.Output] = result
	}
	return wires[c.NumWires-c.NumOutputs():], nil
}

// Gate specifies a boolean gate.
type Gate struct {
	Input0 Wire
	Input1 Wire
	Output Wire
	Op     Operation
}

func (g Gate) String() string {
	return fmt.Sprintf("%v %v %v", g.Inputs(), g.Op, g.Output)
}

// Inputs returns gate input wires.
func (g Gate) Inputs() []Wire {
	switch g.Op {
	case INV:
		return []Wire{g.Input0}
	default:
		return []Wire{g.Input0, g.Input1}
	}
}

// Wire specifies a wire ID.
type Wire uint32

// ID returns the wire ID as integer.
func (w Wire) ID() int {
	return int(w)
}

func (w Wire) String() string {
	return fmt.Sprintf("w%d", w)
}
