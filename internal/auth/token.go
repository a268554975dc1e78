package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strings"
	"sync"
	"time"
)

// Token represents an opaque session token response.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// IssueToken returns a random opaque bearer token valid for ttl. Tokens are
// not yet persisted or verified server-side; they exist so clients integrate
// against the final response shape.
func IssueToken(ttl time.Duration) Token {
	var b [32]byte
	_, _ = rand.Read(b[:])
	return Token{
		AccessToken: base64.RawURLEncoding.EncodeToString(b[:]),
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(ttl),
	}
}

// Guard checks requests against a shared admin token. The token can be
// swapped at runtime by a config reload.
type Guard struct {
	mu    sync.RWMutex
	token string
}

// NewGuard constructs a guard for the given admin token. An empty token
// disables the guard, which is only acceptable in development.
func NewGuard(token string) *Guard {
	return &Guard{token: token}
}

// SetToken replaces the admin token.
func (g *Guard) SetToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
}

// Authorize reports whether the Authorization header carries the admin token.
func (g *Guard) Authorize(header string) bool {
	g.mu.RLock()
	token := g.token
	g.mu.RUnlock()

	if token == "" {
		return true
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	presented := strings.TrimPrefix(header, prefix)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
}
