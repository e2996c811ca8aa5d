package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleScanner = "scanner"
	RoleHost    = "host"

	ScannerCookie = "scanner_session"
	HostCookie    = "host_session"

	ScannerSessionTTL = 12 * time.Hour
	HostSessionTTL    = 24 * time.Hour
)

var ErrInvalidSession = errors.New("invalid session token")

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Sessions signs and verifies the role-scoped cookie tokens for the
// scanner and host surfaces.
type Sessions struct {
	secret []byte
}

func NewSessions(secret string) *Sessions {
	return &Sessions{secret: []byte(secret)}
}

func (s *Sessions) Issue(role string, ttl time.Duration) (string, error) {
	claims := &sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify checks the signature, expiry and role of a session token.
func (s *Sessions) Verify(tokenStr, role string) error {
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return ErrInvalidSession
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Role != role {
		return ErrInvalidSession
	}
	return nil
}

// CookieName returns the cookie each role's session travels in.
func CookieName(role string) string {
	if role == RoleHost {
		return HostCookie
	}
	return ScannerCookie
}

// HashLoginCode prepares an admin login code for storage.
func HashLoginCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash login code: %w", err)
	}
	return string(hash), nil
}

// VerifyLoginCode compares a submitted login code against the stored hash.
func VerifyLoginCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// NewAccessCode returns the 6-digit backup code printed next to the QR code.
// Codes are uniform random and may collide across registrations.
func NewAccessCode() (string, error) {
	return randomDigits(100000, 900000)
}

// NewScannerPin returns a random 4-digit volunteer PIN.
func NewScannerPin() (string, error) {
	return randomDigits(1000, 9000)
}

// NewQRToken returns the globally unique redemption token embedded in
// the ticket's QR code.
func NewQRToken() string {
	return uuid.NewString()
}

func randomDigits(floor, span int64) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%d", floor+n.Int64()), nil
}
