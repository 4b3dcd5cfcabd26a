//
// parser.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
)

var reParts = regexp.MustCompilePOSIX("[[:space:]]+")

// ParseFile parses the Bristol Fashion circuit file.
func ParseFile(file string) (*Circuit, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseBristol(f)
}

// ParseBristol parses a two-party circuit in the Bristol Fashion
// format.
func ParseBristol(in io.Reader) (*Circuit, error) {
	r := bufio.NewReader(in)

	// NumGates NumWires
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if len(line) != 2 {
		return nil, errors.Newf("invalid 1st line: %v", line)
	}
	numGates, err := atoi(line[0])
	if err != nil {
		return nil, err
	}
	numWires, err := atoi(line[1])
	if err != nil {
		return nil, err
	}

	inputs, err := parseIO(r, "i")
	if err != nil {
		return nil, err
	}
	if len(inputs) != 2 {
		return nil, errors.Newf("expected 2 inputs, got %d", len(inputs))
	}
	outputs, err := parseIO(r, "o")
	if err != nil {
		return nil, err
	}

	var stats Stats
	gates := make([]Gate, 0, numGates)
	for {
		line, err = readLine(r)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if len(line) < 3 {
			return nil, errors.Newf("invalid gate: %v", line)
		}
		n1, err := atoi(line[0])
		if err != nil {
			return nil, err
		}
		n2, err := atoi(line[1])
		if err != nil {
			return nil, err
		}
		if 2+n1+n2+1 != len(line) || n2 != 1 {
			return nil, errors.Newf("invalid gate: %v", line)
		}

		var wires []Wire
		for i := 0; i < n1+n2; i++ {
			v, err := atoi(line[2+i])
			if err != nil {
				return nil, err
			}
			if v >= numWires {
				return nil, errors.Newf("invalid wire %d: %v", v, line)
			}
			wires = append(wires, Wire(v))
		}

		var op Operation
		var arity int
		switch line[len(line)-1] {
		case "XOR":
			op, arity = XOR, 2
		case "XNOR":
			op, arity = XNOR, 2
		case "AND":
			op, arity = AND, 2
		case "OR":
			op, arity = OR, 2
		case "INV":
			op, arity = INV, 1
		default:
			return nil, errors.Newf("invalid operation '%s'",
				line[len(line)-1])
		}
		if n1 != arity {
			return nil, errors.Newf("invalid %s arity %d", op, n1)
		}
		g := Gate{
			Input0: wires[0],
			Output: wires[n1],
			Op:     op,
		}
		if arity == 2 {
			g.Input1 = wires[1]
		}
		gates = append(gates, g)
		stats[op]++
	}
	if len(gates) != numGates {
		return nil, errors.Newf("got %d gates, expected %d",
			len(gates), numGates)
	}

	c := &Circuit{
		NumGates: numGates,
		NumWires: numWires,
		Inputs:   inputs,
		Outputs:  outputs,
		Gates:    gates,
		Stats:    stats,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func parseIO(r *bufio.Reader, prefix string) (IO, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if len(line) < 1 {
		return nil, errors.New("invalid I/O line")
	}
	count, err := atoi(line[0])
	if err != nil {
		return nil, err
	}
	if len(line) != count+1 {
		return nil, errors.Newf("invalid I/O line: %v", line)
	}
	var result IO
	for i := 0; i < count; i++ {
		size, err := atoi(line[1+i])
		if err != nil {
			return nil, err
		}
		result = append(result, IOArg{
			Name: fmt.Sprintf("%s%d", prefix, i),
			Type: fmt.Sprintf("u%d", size),
			Size: size,
		})
	}
	return result, nil
}

func atoi(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.Newf("negative value %d", v)
	}
	return v, nil
}

func readLine(r *bufio.Reader) ([]string, error) {
	for {
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || len(line) == 0) {
			return nil, err
		}
		parts := reParts.Split(line, -1)
		var result []string
		for _, p := range parts {
			if len(p) > 0 {
				result = append(result, p)
			}
		}
		if len(result) > 0 {
			return result, nil
		}
		if err == io.EOF {
			return nil, err
		}
	}
}
