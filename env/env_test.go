//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaults(t *testing.T) {
	var cfg *Config
	require.Equal(t, rand.Reader, cfg.GetRandom())
	require.NotNil(t, cfg.GetLogger(2))

	cfg = &Config{
		Rand: bytes.NewReader(make([]byte, 16)),
	}
	require.NotEqual(t, rand.Reader, cfg.GetRandom())
}

func TestLoggerName(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := &Config{
		Logger: zap.New(core),
	}
	cfg.GetLogger(2).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "P²", entries[0].LoggerName)
}
