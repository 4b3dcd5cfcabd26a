//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements global environment for the offline protocol.
package env

import (
	"crypto/rand"
	"io"

	"github.com/markkurossi/text/superscript"
	"go.uber.org/zap"
)

// Config defines the global system configuration for the protocol
// parties. Config must not be modified after being passed to any
// protocol module. It is safe for concurrent use by multiple modules
// as they do not modify it.
type Config struct {
	Rand    io.Reader
	Logger  *zap.Logger
	Verbose bool
}

// GetRandom returns the source of entropy for garbling, OT, and other
// cryptography operations.
func (config *Config) GetRandom() io.Reader {
	if config != nil && config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetLogger returns the logger for the protocol party. The logger is
// named after the party, for example "P²".
func (config *Config) GetLogger(party int) *zap.Logger {
	var logger *zap.Logger
	if config != nil && config.Logger != nil {
		logger = config.Logger
	} else {
		logger = zap.NewNop()
	}
	return logger.Named("P" + superscript.Itoa(party))
}
