//
// cointoss.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package cutandchoose

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/markkurossi/malyao/mpcerr"
	"github.com/zeebo/blake3"
)

// CoinSize defines the coin share size in bytes.
const CoinSize = 32

// Coin is one party's share of the jointly tossed challenge seed. The
// evaluator commits to its coin before it sees the garbler's bundle
// commitments and opens it after them.
type Coin struct {
	Share [CoinSize]byte
	Nonce [CoinSize]byte
}

// NewCoin creates a random coin.
func NewCoin(rand io.Reader) (*Coin, error) {
	coin := new(Coin)
	if _, err := io.ReadFull(rand, coin.Share[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(rand, coin.Nonce[:]); err != nil {
		return nil, err
	}
	return coin, nil
}

// Commitment returns the commitment of the coin.
func (c *Coin) Commitment() Digest {
	h := newHasher(domainCoin)
	h.data(c.Share[:])
	h.data(c.Nonce[:])
	return h.sum()
}

// Challenge defines the check and evaluation subsets of the candidate
// circuits and the bucket permutation of the evaluation circuits.
type Challenge struct {
	Check []int
	Eval  []int
	Perm  []int
}

// NewChallenge derives the challenge from the garbler's and the
// evaluator's coin shares. Both parties derive the same challenge
// from the same shares. The check set is a uniformly random subset of
// size check from the n candidates and the bucket permutation is a
// uniformly random permutation of the evaluation circuits.
func NewChallenge(s1, s2 [CoinSize]byte, n, check int) (*Challenge, error) {
	if n <= 0 || check <= 0 || check >= n {
		return nil, mpcerr.Configuration("invalid challenge %d/%d", check, n)
	}
	var seed [CoinSize]byte
	for i := range seed {
		seed[i] = s1[i] ^ s2[i]
	}
	h := newHasher(domainChallenge)
	h.data(seed[:])
	h.uint(n)
	h.uint(check)

	stream := &xof{
		r: h.h.Digest(),
	}
	candidates := stream.perm(n)

	result := &Challenge{
		Check: append([]int(nil), candidates[:check]...),
		Eval:  append([]int(nil), candidates[check:]...),
	}
	sort.Ints(result.Check)
	sort.Ints(result.Eval)

	result.Perm = stream.perm(len(result.Eval))

	return result, nil
}

// IsCheck tests if the candidate j is in the check set.
func (c *Challenge) IsCheck(j int) bool {
	idx := sort.SearchInts(c.Check, j)
	return idx < len(c.Check) && c.Check[idx] == j
}

type xof struct {
	r   *blake3.Digest
	buf [8]byte
}

// intn returns a uniform random value from [0...n).
func (x *xof) intn(n int) int {
	bound := uint64(n)
	limit := ^uint64(0) - (^uint64(0) % bound)
	for {
		// The blake3 XOF never fails.
		x.r.Read(x.buf[:])
		v := binary.BigEndian.Uint64(x.buf[:])
		if v < limit {
			return int(v % bound)
		}
	}
}

// perm returns a random permutation of [0...n) with the Fisher-Yates
// shuffle.
func (x *xof) perm(n int) []int {
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := x.intn(i + 1)
		result[i], result[j] = result[j], result[i]
	}
	return result
}
