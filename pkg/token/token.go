package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

const (
	// VerificationTTL bounds email verification links.
	VerificationTTL = 24 * time.Hour
	// LoginTTL bounds passwordless login links.
	LoginTTL = 15 * time.Minute

	byteLength = 32
)

// Generator produces opaque hex tokens with an expiry.
type Generator struct {
	reader io.Reader
	now    func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{reader: rand.Reader, now: time.Now}
}

// Generate returns a 64 character hex token valid for ttl.
func (g *Generator) Generate(ttl time.Duration) (string, time.Time, error) {
	buf := make([]byte, byteLength)
	if _, err := io.ReadFull(g.reader, buf); err != nil {
		return "", time.Time{}, fmt.Errorf("token: read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), g.now().Add(ttl).UTC(), nil
}
