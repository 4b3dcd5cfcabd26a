//
// aes.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package symenc

import (
	"crypto/aes"
	"crypto/cipher"
	"io"

	"github.com/cockroachdb/errors"
)

// ctrCipher implements AES-128 in CTR mode with the IV prepended to
// the ciphertext. It does not detect wrong keys.
type ctrCipher struct{}

func (c *ctrCipher) Kind() Kind {
	return CTR
}

func (c *ctrCipher) KeySize() int {
	return 16
}

func (c *ctrCipher) Overhead(plaintext int) int {
	return aes.BlockSize
}

func (c *ctrCipher) Encrypt(key, plaintext []byte, rand io.Reader) (
	[]byte, error) {

	if err := checkKey(c, key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	result := make([]byte, aes.BlockSize+len(plaintext))
	iv := result[:aes.BlockSize]
	if _, err := io.ReadFull(rand, iv); err != nil {
		return nil, err
	}
	cipher.NewCTR(block, iv).XORKeyStream(result[aes.BlockSize:], plaintext)

	return result, nil
}

func (c *ctrCipher) Decrypt(key, ciphertext []byte) ([]byte, error) {
	if err := checkKey(c, key); err != nil {
		return nil, err
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, errors.Wrapf(ErrDecrypt, "ciphertext too short: %d",
			len(ciphertext))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv := ciphertext[:aes.BlockSize]
	result := make([]byte, len(ciphertext)-aes.BlockSize)
	cipher.NewCTR(block, iv).XORKeyStream(result, ciphertext[aes.BlockSize:])

	return result, nil
}

// cbcCipher implements AES-128 in CBC mode with PKCS #7 padding and
// the IV prepended to the ciphertext. Wrong keys are detected with
// high probability from invalid padding.
type cbcCipher struct{}

func (c *cbcCipher) Kind() Kind {
	return CBC
}

func (c *cbcCipher) KeySize() int {
	return 16
}

func (c *cbcCipher) Overhead(plaintext int) int {
	return aes.BlockSize + aes.BlockSize - plaintext%aes.BlockSize
}

func (c *cbcCipher) Encrypt(key, plaintext []byte, rand io.Reader) (
	[]byte, error) {

	if err := checkKey(c, key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	pad := aes.BlockSize - len(plaintext)%aes.BlockSize
	result := make([]byte, aes.BlockSize+len(plaintext)+pad)
	iv := result[:aes.BlockSize]
	if _, err := io.ReadFull(rand, iv); err != nil {
		return nil, err
	}
	data := result[aes.BlockSize:]
	copy(data, plaintext)
	for i := len(plaintext); i < len(data); i++ {
		data[i] = byte(pad)
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(data, data)

	return result, nil
}

func (c *cbcCipher) Decrypt(key, ciphertext []byte) ([]byte, error) {
	if err := checkKey(c, key); err != nil {
		return nil, err
	}
	if len(ciphertext) < 2*aes.BlockSize ||
		len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.Wrapf(ErrDecrypt, "invalid ciphertext length %d",
			len(ciphertext))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(ciphertext)-aes.BlockSize)
	cipher.NewCBCDecrypter(block, ciphertext[:aes.BlockSize]).
		CryptBlocks(data, ciphertext[aes.BlockSize:])

	pad := int(data[len(data)-1])
	if pad == 0 || pad > aes.BlockSize {
		return nil, ErrDecrypt
	}
	for i := len(data) - pad; i < len(data); i++ {
		if int(data[i]) != pad {
			return nil, ErrDecrypt
		}
	}
	return data[:len(data)-pad], nil
}
