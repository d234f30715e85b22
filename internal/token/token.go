package token

import (
	"crypto/rand"
	"encoding/hex"
)

// size is the number of random bytes per token; hex-encoded this yields
// a 40 character string.
const size = 20

// Generator produces cryptographically random opaque tokens for the
// email verification and password reset flows.
type Generator struct{}

// NewGenerator creates a new Generator instance.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a new random URL-safe token.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
