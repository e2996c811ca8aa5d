package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsIssueVerify(t *testing.T) {
	s := NewSessions("unit-test-secret")

	tok, err := s.Issue(RoleScanner, ScannerSessionTTL)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	assert.NoError(t, s.Verify(tok, RoleScanner))

	// Role is part of the claim: a scanner token opens no host doors.
	assert.ErrorIs(t, s.Verify(tok, RoleHost), ErrInvalidSession)
}

func TestSessionsRejectForged(t *testing.T) {
	s := NewSessions("unit-test-secret")

	assert.ErrorIs(t, s.Verify("true", RoleScanner), ErrInvalidSession)
	assert.ErrorIs(t, s.Verify("", RoleScanner), ErrInvalidSession)

	// A token signed with a different secret fails verification.
	other := NewSessions("another-secret")
	tok, err := other.Issue(RoleHost, HostSessionTTL)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Verify(tok, RoleHost), ErrInvalidSession)
}

func TestSessionsRejectExpired(t *testing.T) {
	s := NewSessions("unit-test-secret")

	tok, err := s.Issue(RoleHost, -time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Verify(tok, RoleHost), ErrInvalidSession)
}

func TestCookieName(t *testing.T) {
	assert.Equal(t, "scanner_session", CookieName(RoleScanner))
	assert.Equal(t, "host_session", CookieName(RoleHost))
}

func TestLoginCodeHashing(t *testing.T) {
	hash, err := HashLoginCode("open-sesame")
	require.NoError(t, err)
	assert.NotEqual(t, "open-sesame", hash)

	assert.True(t, VerifyLoginCode(hash, "open-sesame"))
	assert.False(t, VerifyLoginCode(hash, "open-sesam"))
	assert.False(t, VerifyLoginCode("", "open-sesame"))
}

func TestNewAccessCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewAccessCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, ch := range code {
			assert.True(t, ch >= '0' && ch <= '9')
		}
	}
}

func TestNewScannerPin(t *testing.T) {
	for i := 0; i < 50; i++ {
		pin, err := NewScannerPin()
		require.NoError(t, err)
		require.Len(t, pin, 4)
		for _, ch := range pin {
			assert.True(t, ch >= '0' && ch <= '9')
		}
	}
}

func TestNewQRTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := NewQRToken()
		require.NotEmpty(t, tok)
		require.False(t, seen[tok], "token repeated")
		seen[tok] = true
	}
}
