package id

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidKey = errors.New("key must be a UUID or 32-char hex")

	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// IsID32 reports whether s is 32-char lowercase hex.
func IsID32(s string) bool { return reHex32.MatchString(s) }

// Normalize maps a client supplied key (UUID in any accepted form, or 32 hex)
// onto the 32-char lowercase hex form used for attempt tokens.
func Normalize(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if reHex32.MatchString(key) {
		return key, nil
	}
	u, err := uuid.Parse(key)
	if err != nil {
		return "", ErrInvalidKey
	}
	return hex.EncodeToString(u[:]), nil
}
