// internal/session/csrf.go
//
// Stateless CSRF tokens for widget events.
//
// Context
//   Every render response carries a token the surface must echo on
//   selection events.  The token is bound to the session id:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, sessionID+nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – issue time, 8 bytes, big-endian.
//   •  HMAC – over the session id as well, so a token minted for one session
//      is useless in another.
//
//   Verification checks the signature and the MaxAge window.  No server-side
//   token store is needed.
//
//------------------------------------------------------------------------------

package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"time"

	"go.uber.org/zap"
)

const (
	tokenBytes = 16 + 8 + sha256.Size // nonce + ts + sig
	maxAge     = 2 * time.Hour
)

// CSRF mints and verifies tokens with one secret.
type CSRF struct{ secret []byte }

// NewCSRF decodes a base64url key of at least 32 bytes.  An empty or short
// key falls back to a random per-process secret, logged as a warning.
func NewCSRF(key string) *CSRF {
	if key != "" {
		if b, err := base64.RawURLEncoding.DecodeString(key); err == nil && len(b) >= 32 {
			return &CSRF{secret: b}
		}
		zap.S().Warnw("session.csrf_key unusable, expected 32+ bytes base64url; using random key")
	} else {
		zap.S().Warnw("session.csrf_key not set, using random key")
	}
	sec := make([]byte, 32)
	_, _ = rand.Read(sec)
	return &CSRF{secret: sec}
}

// Generate returns a fresh token for sessionID.
func (c *CSRF) Generate(sessionID string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(time.Now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, c.sign(sessionID, nonce, ts)...)
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify returns true if tok was minted for sessionID and is still fresh.
func (c *CSRF) Verify(sessionID, tok string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}
	nonce, tsBytes, sig := raw[:16], raw[16:24], raw[24:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	if time.Since(issued) > maxAge || time.Until(issued) > time.Minute {
		return false
	}
	return hmac.Equal(sig, c.sign(sessionID, nonce, tsBytes))
}

func (c *CSRF) sign(sessionID string, nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(sessionID))
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}
