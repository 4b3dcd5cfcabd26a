//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package mpcerr

import (
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestClasses(t *testing.T) {
	cfg := Configuration("check %d + eval %d != %d", 4, 7, 10)
	require.True(t, IsConfiguration(cfg))
	require.False(t, IsCommunication(cfg))
	require.False(t, IsCheatAttempt(cfg))

	comm := Communication(io.ErrUnexpectedEOF, "receiving bundle %d", 3)
	require.True(t, IsCommunication(comm))
	require.False(t, IsCheatAttempt(comm))
	require.True(t, errors.Is(comm, io.ErrUnexpectedEOF))

	cheat := CheatAttempt("circuit %d: commitment mismatch", 5)
	require.True(t, IsCheatAttempt(cheat))
	require.False(t, IsCommunication(cheat))
}

func TestCommunicationKeepsClass(t *testing.T) {
	cheat := CheatAttempt("invalid point")
	err := Communication(cheat, "OT receive")
	require.True(t, IsCheatAttempt(err))
	require.False(t, IsCommunication(err))

	require.NoError(t, Communication(nil, "nothing"))
	require.NoError(t, WrapCheatAttempt(nil, "nothing"))
}

func TestWrappedClass(t *testing.T) {
	err := errors.Wrap(Configuration("bad"), "offline")
	require.True(t, IsConfiguration(err))
	require.True(t, Classified(err))
	require.False(t, Classified(io.EOF))
}
