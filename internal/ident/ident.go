// Package ident produces externally visible identifiers (booking IDs,
// baggage tracking numbers) without a central sequence counter.
package ident

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TokenFunc returns one random token candidate.
type TokenFunc func() string

// ExistsFunc reports whether a candidate identifier is already taken.
type ExistsFunc func(candidate string) (bool, error)

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// HexToken returns a TokenFunc producing 2n uppercase hex characters.
func HexToken(n int) TokenFunc {
	return func() string {
		buf := make([]byte, n)
		_, _ = rand.Read(buf)
		return strings.ToUpper(fmt.Sprintf("%x", buf))
	}
}

// Base36Token returns a TokenFunc producing n uppercase base36 characters.
func Base36Token(n int) TokenFunc {
	return func() string {
		buf := make([]byte, n)
		_, _ = rand.Read(buf)
		for i := range buf {
			buf[i] = base36Alphabet[int(buf[i])%len(base36Alphabet)]
		}
		return string(buf)
	}
}

// Generate builds "prefix-token" candidates until one passes the exists
// check, retrying up to maxAttempts times. When every attempt collides it
// falls back to a timestamp-derived candidate which is returned without a
// further check; the storage layer's uniqueness constraint is the last line
// of defense for that path.
func Generate(prefix string, token TokenFunc, exists ExistsFunc, maxAttempts int) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := prefix + "-" + token()
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return prefix + "-" + timestampToken(), nil
}

func timestampToken() string {
	return strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
}
