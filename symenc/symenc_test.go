//
// symenc_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package symenc

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

var allKinds = []Kind{CTR, CBC, Box}

func newKey(t *testing.T, c Cipher) []byte {
	key := make([]byte, c.KeySize())
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestRoundTrip(t *testing.T) {
	for _, kind := range allKinds {
		c, err := New(kind)
		require.NoError(t, err)
		require.Equal(t, kind, c.Kind())

		key := newKey(t, c)
		for _, size := range []int{0, 1, 15, 16, 17, 100} {
			plain := make([]byte, size)
			_, err = rand.Read(plain)
			require.NoError(t, err)

			ct, err := c.Encrypt(key, plain, rand.Reader)
			require.NoError(t, err)
			require.Len(t, ct, size+c.Overhead(size), "%v/%d", kind, size)

			pt, err := c.Decrypt(key, ct)
			require.NoError(t, err)
			require.True(t, bytes.Equal(plain, pt), "%v/%d", kind, size)
		}
	}
}

func TestDeterministic(t *testing.T) {
	var seed [64]byte
	for _, kind := range allKinds {
		c, err := New(kind)
		require.NoError(t, err)
		key := make([]byte, c.KeySize())
		plain := []byte("garbled row")

		ct1, err := c.Encrypt(key, plain, bytes.NewReader(seed[:]))
		require.NoError(t, err)
		ct2, err := c.Encrypt(key, plain, bytes.NewReader(seed[:]))
		require.NoError(t, err)
		require.Equal(t, ct1, ct2)
	}
}

func TestWrongKeyDetected(t *testing.T) {
	c, err := New(Box)
	require.NoError(t, err)

	ct, err := c.Encrypt(newKey(t, c), []byte("secret"), rand.Reader)
	require.NoError(t, err)
	_, err = c.Decrypt(newKey(t, c), ct)
	require.True(t, errors.Is(err, ErrDecrypt))

	ct[len(ct)-1] ^= 1
	_, err = c.Decrypt(newKey(t, c), ct)
	require.True(t, errors.Is(err, ErrDecrypt))
}

func TestInvalidInput(t *testing.T) {
	for _, kind := range allKinds {
		c, err := New(kind)
		require.NoError(t, err)

		_, err = c.Encrypt(make([]byte, 3), nil, rand.Reader)
		require.Error(t, err)

		_, err = c.Decrypt(make([]byte, c.KeySize()), []byte{1, 2})
		require.True(t, errors.Is(err, ErrDecrypt), kind.String())
	}
}

func TestKind(t *testing.T) {
	for _, kind := range allKinds {
		k, err := ParseKind(kind.String())
		require.NoError(t, err)
		require.Equal(t, kind, k)
	}
	_, err := ParseKind("ecb")
	require.Error(t, err)

	_, err = New(Kind(9))
	require.Error(t, err)
}
