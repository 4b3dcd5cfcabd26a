//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Efficient and Secure Multiparty Computation from Fixed-Key Block
// Ciphers, section 7.4
//  - https://eprint.iacr.org/2019/074.pdf

package ot

import (
	"crypto/aes"
	"crypto/cipher"
)

// TCCR implements a tweakable circular correlation robust hash with
// a fixed-key block cipher: H(x, i) = π(π(x) ⊕ i) ⊕ π(x).
type TCCR struct {
	block cipher.Block
}

// NewTCCR creates a new hash with the fixed key.
func NewTCCR(key Label) (*TCCR, error) {
	var ld LabelData
	block, err := aes.NewCipher(key.Bytes(&ld))
	if err != nil {
		return nil, err
	}
	return &TCCR{
		block: block,
	}, nil
}

// Hash hashes the label x with the tweak i.
func (h *TCCR) Hash(x Label, i uint64) Label {
	var ld LabelData

	x.GetData(&ld)
	h.block.Encrypt(ld[:], ld[:])

	var px Label
	px.SetData(&ld)

	t := px
	t.D1 ^= i
	t.GetData(&ld)
	h.block.Encrypt(ld[:], ld[:])

	var result Label
	result.SetData(&ld)
	result.Xor(px)

	return result
}
