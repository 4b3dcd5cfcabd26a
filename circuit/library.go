//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// NewComparator creates a circuit computing x > y for the garbler's
// n-bit input x and the evaluator's n-bit input y.
func NewComparator(n int) (*Circuit, error) {
	if n <= 0 {
		return nil, errors.Newf("comparator: invalid size %d", n)
	}
	typ := fmt.Sprintf("u%d", n)
	b := NewBuilder(IOArg{
		Name: "x",
		Type: typ,
		Size: n,
	}, IOArg{
		Name: "y",
		Type: typ,
		Size: n,
	})

	gt := b.AND(b.Input(0, 0), b.INV(b.Input(1, 0)))
	for i := 1; i < n; i++ {
		x := b.Input(0, i)
		y := b.Input(1, i)
		gtBit := b.AND(x, b.INV(y))
		eq := b.XNOR(x, y)
		gt = b.OR(gtBit, b.AND(eq, gt))
	}
	return b.Build(IO{{Name: "gt", Type: "bool", Size: 1}}, []Wire{gt})
}

// NewAdder creates a circuit computing the n+1-bit sum of the
// garbler's and the evaluator's n-bit inputs.
func NewAdder(n int) (*Circuit, error) {
	if n <= 0 {
		return nil, errors.Newf("adder: invalid size %d", n)
	}
	typ := fmt.Sprintf("u%d", n)
	b := NewBuilder(IOArg{
		Name: "x",
		Type: typ,
		Size: n,
	}, IOArg{
		Name: "y",
		Type: typ,
		Size: n,
	})

	var outputs []Wire
	var carry Wire
	for i := 0; i < n; i++ {
		x := b.Input(0, i)
		y := b.Input(1, i)
		xy := b.XOR(x, y)
		if i == 0 {
			outputs = append(outputs, xy)
			carry = b.AND(x, y)
			continue
		}
		outputs = append(outputs, b.XOR(xy, carry))
		carry = b.OR(b.AND(x, y), b.AND(carry, xy))
	}
	outputs = append(outputs, carry)

	return b.Build(IO{{
		Name: "sum",
		Type: fmt.Sprintf("u%d", n+1),
		Size: n + 1,
	}}, outputs)
}

// NewCheatingRecovery creates the cheating-recovery circuit. The
// garbler's input is its n-bit input x followed by the k-bit proof
// secret d. The evaluator's input is a k-bit proof d'. The circuit
// outputs x if d' equals d and zero otherwise.
func NewCheatingRecovery(n, k int) (*Circuit, error) {
	if n <= 0 || k <= 0 {
		return nil, errors.Newf("cheating recovery: invalid sizes n=%d, k=%d",
			n, k)
	}
	b := NewBuilder(IOArg{
		Name: "x",
		Type: fmt.Sprintf("u%d", n+k),
		Size: n + k,
	}, IOArg{
		Name: "d",
		Type: fmt.Sprintf("u%d", k),
		Size: k,
	})

	eq := b.XNOR(b.Input(0, n), b.Input(1, 0))
	for i := 1; i < k; i++ {
		eq = b.AND(eq, b.XNOR(b.Input(0, n+i), b.Input(1, i)))
	}
	outputs := make([]Wire, n)
	for i := 0; i < n; i++ {
		outputs[i] = b.AND(b.Input(0, i), eq)
	}
	return b.Build(IO{{
		Name: "x",
		Type: fmt.Sprintf("u%d", n),
		Size: n,
	}}, outputs)
}
