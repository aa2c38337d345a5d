package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestArgonRoundTrip(t *testing.T) {
	a := NewFast()

	hash, err := a.Hash("correct horse")
	require.NoError(t, err)

	ok, err := a.Verify("correct horse", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = a.Verify("battery staple", hash)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = a.Verify("x", "not-a-hash")
	require.ErrorIs(t, err, ErrInvalidHash)
}

func TestActivationPair(t *testing.T) {
	h1, t1, err := NewActivationPair()
	require.NoError(t, err)
	h2, _, err := NewActivationPair()
	require.NoError(t, err)

	require.Len(t, h1, 32)
	require.Len(t, t1, 32)
	require.NotEqual(t, h1, t1)
	require.NotEqual(t, h1, h2)
}

func TestResetTokens(t *testing.T) {
	r := NewResetTokens("secret", time.Hour)

	token, err := r.Make(7, "hash-a")
	require.NoError(t, err)

	require.NoError(t, r.Check(token, 7, "hash-a"))
	require.ErrorIs(t, r.Check(token, 8, "hash-a"), ErrResetTokenInvalid)
	require.ErrorIs(t, r.Check(token, 7, "hash-b"), ErrResetTokenInvalid, "changing the password burns the token")
	require.ErrorIs(t, r.Check(token+"x", 7, "hash-a"), ErrResetTokenInvalid)

	r.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	require.ErrorIs(t, r.Check(token, 7, "hash-a"), ErrResetTokenExpired)
}

func TestUIDEncoding(t *testing.T) {
	id, err := DecodeUID(EncodeUID(42))
	require.NoError(t, err)
	require.Equal(t, uint(42), id)

	_, err = DecodeUID("!!")
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}
