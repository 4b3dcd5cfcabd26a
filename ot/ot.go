//
// ot.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

// Package ot implements the oblivious transfer protocols the offline
// phase uses to deliver the evaluator's input wire keys. All
// implementations retain their guarantees against an actively
// cheating peer: invalid group elements and failed consistency checks
// abort the transfer with ErrInvalidPoint or ErrConsistency.
package ot

import (
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidPoint is returned when the peer sends a group element
	// that is not a valid point of the group.
	ErrInvalidPoint = errors.New("ot: invalid group element")

	// ErrConsistency is returned when the OT extension consistency
	// check fails.
	ErrConsistency = errors.New("ot: extension consistency check failed")
)

// OT defines the base 1-out-of-2 Oblivious Transfer protocol. The
// sender uses the Send function to send a []Wire array where each
// wire has zero and one Label. The receiver calls Receive with a
// []bool array of selection bits. The higher level protocol must
// ensure the []Wire and []bool array lengths match.
type OT interface {
	// InitSender initializes the OT sender.
	InitSender(io IO) error

	// InitReceiver initializes the OT receiver.
	InitReceiver(io IO) error

	// Send sends the wire labels with OT.
	Send(wires []Wire) error

	// Receive receives the wire labels with OT based on the flag values.
	Receive(flags []bool, result []Label) error
}

// Scheme identifies an OT implementation.
type Scheme int

// Supported OT schemes.
const (
	SchemeCO Scheme = iota
	SchemeRistretto
	SchemeKOS
)

var schemes = map[Scheme]string{
	SchemeCO:        "co",
	SchemeRistretto: "ristretto",
	SchemeKOS:       "kos",
}

func (s Scheme) String() string {
	name, ok := schemes[s]
	if ok {
		return name
	}
	return "{Scheme " + strconv.Itoa(int(s)) + "}"
}

// ParseScheme parses the OT scheme name.
func ParseScheme(name string) (Scheme, error) {
	for k, v := range schemes {
		if v == name {
			return k, nil
		}
	}
	return 0, errors.Newf("unknown OT scheme '%s'", name)
}

// New creates a new OT instance for the scheme. The KOS scheme runs
// its base OTs with CO.
func (s Scheme) New(r io.Reader) (OT, error) {
	switch s {
	case SchemeCO:
		return NewCO(), nil
	case SchemeRistretto:
		return NewRistretto(), nil
	case SchemeKOS:
		return NewKOS(NewCO(), r), nil
	default:
		return nil, errors.Newf("unsupported OT scheme %v", s)
	}
}
