// Package token decodes bearer token payloads without verifying signatures.
// The client never holds the signing secret; the server remains the authority
// on token validity. Decoding here exists only to read claims for UI gating
// and to detect expiry proactively.
package token

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var (
	// ErrSegmentCount means the token is not three dot-separated segments.
	ErrSegmentCount = errors.New("token must have exactly three segments")
	// ErrBadEncoding means the payload segment is not valid base64url.
	ErrBadEncoding = errors.New("token payload is not valid base64url")
	// ErrBadPayload means the decoded payload is not a JSON object.
	ErrBadPayload = errors.New("token payload is not valid JSON")
	// ErrMissingExpiry means the payload carries no exp claim.
	ErrMissingExpiry = errors.New("token payload has no exp claim")
)

// Claims is the subset of the token payload this core consumes.
type Claims struct {
	UserID    string
	Role      string
	IssuedAt  int64 // seconds since epoch, 0 when absent
	ExpiresAt int64 // seconds since epoch
}

// ExpiredAt reports whether the claims are expired at the given instant.
// The boundary is inclusive: exp equal to now is already expired.
func (c *Claims) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt <= now.Unix()
}

// Expired reports whether the claims are expired at wall-clock time.
func (c *Claims) Expired() bool {
	return c.ExpiredAt(time.Now())
}

// Decode parses the payload segment of a JWT-shaped bearer token. It never
// panics; every malformed input maps to one of the sentinel errors above.
func Decode(tokenString string) (*Claims, error) {
	parts := strings.Split(strings.TrimSpace(tokenString), ".")
	if len(parts) != 3 {
		return nil, ErrSegmentCount
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return nil, ErrBadEncoding
	}

	if !gjson.ValidBytes(payload) || !gjson.ParseBytes(payload).IsObject() {
		return nil, ErrBadPayload
	}

	doc := gjson.ParseBytes(payload)

	exp := doc.Get("exp")
	if !exp.Exists() {
		return nil, ErrMissingExpiry
	}

	claims := &Claims{
		Role:      doc.Get("role").String(),
		IssuedAt:  doc.Get("iat").Int(),
		ExpiresAt: exp.Int(),
	}

	// userId is the app-level claim; sub is the registered fallback.
	if id := doc.Get("userId"); id.Exists() {
		claims.UserID = id.String()
	} else {
		claims.UserID = doc.Get("sub").String()
	}

	return claims, nil
}

// decodeSegment handles both padded and unpadded base64url segments.
func decodeSegment(seg string) ([]byte, error) {
	seg = strings.TrimRight(seg, "=")
	return base64.RawURLEncoding.DecodeString(seg)
}
