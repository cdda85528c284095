package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// sessionKeyParams are the Argon2id parameters for session key derivation.
// They stay fixed; changing them invalidates every issued session cookie.
const (
	sessionKeyMemory      = 64 * 1024 // 64 MB
	sessionKeyIterations  = 3
	sessionKeyParallelism = 2
	sessionKeyLength      = 32
)

// sessionKeySalt is a fixed application salt: the derivation has to be
// deterministic across restarts so existing cookies stay valid.
var sessionKeySalt = []byte("eventure-gateway/session-v1")

// DeriveSessionKey stretches the configured session secret into a 32-byte
// cookie authentication key using Argon2id.
func DeriveSessionKey(secret string) []byte {
	return argon2.IDKey([]byte(secret), sessionKeySalt,
		sessionKeyIterations, sessionKeyMemory, sessionKeyParallelism, sessionKeyLength)
}

// GenerateToken generates a URL-safe random token of the given byte length.
func GenerateToken(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
