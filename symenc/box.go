//
// box.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package symenc

import (
	"io"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// boxCipher implements XSalsa20-Poly1305 authenticated encryption
// with the nonce prepended to the ciphertext.
type boxCipher struct{}

func (c *boxCipher) Kind() Kind {
	return Box
}

func (c *boxCipher) KeySize() int {
	return 32
}

func (c *boxCipher) Overhead(plaintext int) int {
	return nonceSize + secretbox.Overhead
}

func (c *boxCipher) Encrypt(key, plaintext []byte, rand io.Reader) (
	[]byte, error) {

	if err := checkKey(c, key); err != nil {
		return nil, err
	}
	var k [32]byte
	var nonce [nonceSize]byte
	copy(k[:], key)
	if _, err := io.ReadFull(rand, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &k), nil
}

func (c *boxCipher) Decrypt(key, ciphertext []byte) ([]byte, error) {
	if err := checkKey(c, key); err != nil {
		return nil, err
	}
	if len(ciphertext) < nonceSize+secretbox.Overhead {
		return nil, errors.Wrapf(ErrDecrypt, "ciphertext too short: %d",
			len(ciphertext))
	}
	var k [32]byte
	var nonce [nonceSize]byte
	copy(k[:], key)
	copy(nonce[:], ciphertext)

	result, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, &k)
	if !ok {
		return nil, ErrDecrypt
	}
	return result, nil
}
