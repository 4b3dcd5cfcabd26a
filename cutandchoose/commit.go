//
// commit.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package cutandchoose

import (
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"

	"github.com/markkurossi/malyao/ot"
	"github.com/zeebo/blake3"
)

// DigestSize defines the commitment digest size in bytes.
const DigestSize = 32

// Digest is a hash commitment.
type Digest [DigestSize]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:8])
}

// Equal tests if the digests are equal. The comparison runs in
// constant time.
func (d Digest) Equal(o Digest) bool {
	return subtle.ConstantTimeCompare(d[:], o[:]) == 1
}

// Commitment domains.
const (
	domainP1Input     = "malyao p1 input"
	domainP2Input     = "malyao p2 input"
	domainSecretShare = "malyao secret share"
	domainTables      = "malyao tables"
	domainBundle      = "malyao bundle"
	domainCoin        = "malyao coin"
	domainChallenge   = "malyao challenge"
)

type hasher struct {
	h   *blake3.Hasher
	buf [8]byte
}

func newHasher(domain string) *hasher {
	h := &hasher{
		h: blake3.New(),
	}
	h.data([]byte(domain))
	return h
}

func (h *hasher) uint(v int) {
	binary.BigEndian.PutUint64(h.buf[:], uint64(v))
	h.h.Write(h.buf[:])
}

func (h *hasher) data(d []byte) {
	h.uint(len(d))
	h.h.Write(d)
}

func (h *hasher) bools(bits []bool) {
	h.uint(len(bits))
	for _, b := range bits {
		if b {
			h.buf[0] = 1
		} else {
			h.buf[0] = 0
		}
		h.h.Write(h.buf[:1])
	}
}

func (h *hasher) sum() Digest {
	var d Digest
	h.h.Sum(d[:0])
	return d
}

// CommitLabel computes the commitment of the wire label of bundle's
// input wire with the value bit. The domain separates P1 and P2
// input wires.
func commitLabel(domain string, bundle, wire int, bit bool,
	label ot.Label) Digest {

	h := newHasher(domain)
	h.uint(bundle)
	h.uint(wire)
	h.bools([]bool{bit})

	var ld ot.LabelData
	h.data(label.Bytes(&ld))
	return h.sum()
}

// CommitP2Input computes the commitment of the evaluator's input wire
// label.
func CommitP2Input(bundle, wire int, bit bool, label ot.Label) Digest {
	return commitLabel(domainP2Input, bundle, wire, bit, label)
}

// CommitP1Input computes the commitment of the garbler's input wire
// label.
func CommitP1Input(bundle, wire int, bit bool, label ot.Label) Digest {
	return commitLabel(domainP1Input, bundle, wire, bit, label)
}

// CommitShare computes the commitment of the secret share. The share
// is the wire label of the evaluator input bit label-1.
func CommitShare(bundle, label int, share ot.Label) Digest {
	h := newHasher(domainSecretShare)
	h.uint(bundle)
	h.uint(label)

	var ld ot.LabelData
	h.data(share.Bytes(&ld))
	return h.sum()
}

// TablesDigest computes the digest of the garbled tables and the
// output decoding bits.
func TablesDigest(bundle int, tables []byte, decoding []bool) Digest {
	h := newHasher(domainTables)
	h.uint(bundle)
	h.data(tables)
	h.bools(decoding)
	return h.sum()
}
