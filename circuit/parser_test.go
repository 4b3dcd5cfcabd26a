//
// parser_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var data = `3 6
2 2 1
1 2

2 1 0 2 3 XOR
2 1 1 3 4 AND
1 1 3 5 INV
`

func TestParse(t *testing.T) {
	c, err := ParseBristol(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 3, c.NumGates)
	require.Equal(t, 6, c.NumWires)
	require.Equal(t, 2, c.N1())
	require.Equal(t, 1, c.N2())
	require.Equal(t, 2, c.NumOutputs())
	require.Equal(t, 1, c.Stats[AND])
	require.Equal(t, 1, c.NumTables())

	out, err := c.Compute([]bool{true, true, false})
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, out)
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"1\n",
		"1 3\n1 1\n1 1\n\n2 1 0 1 2 AND\n",
		"1 3\n2 1 1\n1 1\n\n2 1 0 1 2 NAND\n",
		"1 3\n2 1 1\n1 1\n\n1 1 0 1 2 AND\n",
		"2 3\n2 1 1\n1 1\n\n2 1 0 1 2 AND\n",
		"1 3\n2 1 1\n1 1\n\n2 1 0 9 2 AND\n",
	} {
		_, err := ParseBristol(strings.NewReader(input))
		require.Error(t, err, input)
	}
}
