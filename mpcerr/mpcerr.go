//
// mpcerr.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package mpcerr defines the error classes of the offline protocol.
// Every error returned from the protocol packages carries exactly one
// of the class markers so callers can tell a misconfigured run from a
// broken link and from a cheating peer.
package mpcerr

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrConfiguration marks invalid parameter combinations. It is
	// detected before any network interaction and is never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrCommunication marks channel failures: send and receive
	// errors, disconnects, and malformed framing. The caller may
	// retry at the transport level.
	ErrCommunication = errors.New("communication error")

	// ErrCheatAttempt marks a detected cheating attempt by the
	// peer. The whole offline run is aborted and no artifact is
	// usable.
	ErrCheatAttempt = errors.New("cheating attempt detected")
)

// Configuration creates a new configuration error.
func Configuration(format string, a ...interface{}) error {
	return errors.Mark(errors.Newf(format, a...), ErrConfiguration)
}

// Communication wraps the channel error err as a communication
// error. If err already carries an error class, it is returned with
// the additional context only.
func Communication(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	wrapped := errors.Wrapf(err, format, a...)
	if Classified(err) {
		return wrapped
	}
	return errors.Mark(wrapped, ErrCommunication)
}

// CheatAttempt creates a new cheating attempt error.
func CheatAttempt(format string, a ...interface{}) error {
	return errors.Mark(errors.Newf(format, a...), ErrCheatAttempt)
}

// WrapCheatAttempt wraps err as a cheating attempt error.
func WrapCheatAttempt(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, format, a...), ErrCheatAttempt)
}

// IsConfiguration tests if err is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsCommunication tests if err is a communication error.
func IsCommunication(err error) bool {
	return errors.Is(err, ErrCommunication)
}

// IsCheatAttempt tests if err is a cheating attempt error.
func IsCheatAttempt(err error) bool {
	return errors.Is(err, ErrCheatAttempt)
}

// Classified tests if err carries any of the error classes.
func Classified(err error) bool {
	return IsConfiguration(err) || IsCommunication(err) || IsCheatAttempt(err)
}
