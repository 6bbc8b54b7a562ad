package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testIssuer = "cyanix-test"

func newTestPair(t *testing.T, secret string) (*HS256Signer, *HS256Verifier) {
	t.Helper()
	signer, err := NewSignerHS256([]byte(secret))
	require.NoError(t, err)
	return signer, NewVerifierHS256([]byte(secret), testIssuer)
}

func TestHS256_RoundTrip(t *testing.T) {
	signer, verifier := newTestPair(t, "test-secret")

	now := time.Now().UTC()
	claims := NewSessionClaims(
		"01J0USER00000000000000000",
		"alice", "alice@x.com",
		testIssuer, DefaultSessionTokenTTL, now,
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, got.Subject)
	require.Equal(t, claims.Username, got.Username)
	require.Equal(t, claims.Email, got.Email)
	require.Equal(t, claims.ID, got.ID)
	require.WithinDuration(t, now.Add(DefaultSessionTokenTTL), got.ExpiresAt.Time, time.Second)
}

func TestHS256_Expired(t *testing.T) {
	signer, verifier := newTestPair(t, "test-secret")

	// Issued two days ago with a 24h TTL: already past expiry.
	issued := time.Now().UTC().Add(-48 * time.Hour)
	claims := NewSessionClaims("sub", "alice", "alice@x.com", testIssuer, DefaultSessionTokenTTL, issued)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestHS256_WrongSecret(t *testing.T) {
	signer, _ := newTestPair(t, "secret-a")
	_, verifier := newTestPair(t, "secret-b")

	claims := NewSessionClaims("sub", "alice", "alice@x.com", testIssuer, DefaultSessionTokenTTL, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestHS256_Tampered(t *testing.T) {
	signer, verifier := newTestPair(t, "test-secret")

	claims := NewSessionClaims("sub", "alice", "alice@x.com", testIssuer, DefaultSessionTokenTTL, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = verifier.Verify(tampered)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrExpired)
}

func TestHS256_Garbage(t *testing.T) {
	_, verifier := newTestPair(t, "test-secret")

	for _, input := range []string{"", "not-a-jwt", "a.b", "a.b.c.d"} {
		_, err := verifier.Verify(input)
		require.ErrorIs(t, err, ErrMalformed, "input %q", input)
	}
}

func TestHS256_IssuerMismatch(t *testing.T) {
	signer, _ := newTestPair(t, "test-secret")
	verifier := NewVerifierHS256([]byte("test-secret"), "someone-else")

	claims := NewSessionClaims("sub", "alice", "alice@x.com", testIssuer, DefaultSessionTokenTTL, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestNewSignerHS256_EmptySecret(t *testing.T) {
	_, err := NewSignerHS256(nil)
	require.Error(t, err)
}
