package cryptox

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	passphrase := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(passphrase, salt)
	key2 := DeriveKey(passphrase, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != 32 {
		t.Errorf("expected 32-byte key, got %d", len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	passphrase := []byte("secret-password")

	key1 := DeriveKey(passphrase, []byte("salt-1"))
	key2 := DeriveKey(passphrase, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewOwnerSealer([]byte("household"), "uid-1")
	require.NoError(t, err)

	token, err := s.Seal("hunter2")
	require.NoError(t, err)
	assert.True(t, IsSealed(token))
	assert.NotContains(t, token, "hunter2")

	plain, err := s.Open(token)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plain)
}

func TestSealer_EmptyAndPlainValues(t *testing.T) {
	s, err := NewSealer(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	token, err := s.Seal("")
	require.NoError(t, err)
	assert.Empty(t, token)

	plain, err := s.Open("legacy-plaintext")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plaintext", plain)
}

func TestSealer_WrongKeyFails(t *testing.T) {
	a, err := NewOwnerSealer([]byte("household"), "uid-1")
	require.NoError(t, err)
	b, err := NewOwnerSealer([]byte("household"), "uid-2")
	require.NoError(t, err)

	token, err := a.Seal("hunter2")
	require.NoError(t, err)

	_, err = b.Open(token)
	require.Error(t, err)
}

func TestSealer_TruncatedToken(t *testing.T) {
	s, err := NewSealer(bytes.Repeat([]byte{1}, 16))
	require.NoError(t, err)

	_, err = s.Open(sealedPrefix + base64.StdEncoding.EncodeToString([]byte("abc")))
	require.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = s.Open(sealedPrefix + "%%%")
	require.Error(t, err)
}

func TestNewSealer_BadKeyLength(t *testing.T) {
	_, err := NewSealer([]byte("short"))
	require.Error(t, err)
}

func TestRandomBytes(t *testing.T) {
	a, err := randomBytes(12)
	require.NoError(t, err)
	b, err := randomBytes(12)
	require.NoError(t, err)
	assert.Len(t, a, 12)
	assert.False(t, bytes.Equal(a, b))

	empty, err := randomBytes(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
