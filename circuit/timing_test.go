//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bytes"
	"testing"

	"github.com/markkurossi/malyao/p2p"
	"github.com/stretchr/testify/require"
)

func TestFileSize(t *testing.T) {
	require.Equal(t, "999B", FileSize(999).String())
	require.Equal(t, "2kB", FileSize(2001).String())
	require.Equal(t, "3MB", FileSize(3*1000*1000+1).String())
}

func TestTiming(t *testing.T) {
	stats := p2p.NewIOStats()
	timing := NewTiming()

	stats.Sent.Add(1500)
	timing.Transfer("Cut-and-Choose", stats)
	stats.Recvd.Add(2500)
	sample := timing.Transfer("OT", stats)
	require.Equal(t, []string{"2kB"}, sample.Cols)
	sample.AbsSubSample("main", 10)

	var buf bytes.Buffer
	timing.Print(&buf, stats)
	require.Contains(t, buf.String(), "Cut-and-Choose")
	require.Contains(t, buf.String(), "Total")
}
