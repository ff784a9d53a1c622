package token

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeToken builds a JWT-shaped string around the given JSON payload.
func makeToken(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".signature"
}

// TestDecode tests decoding a well-formed token payload
func TestDecode(t *testing.T) {
	payload := `{"userId":"u-1","role":"teacher","iat":1700000000,"exp":1700086400}`

	claims, err := Decode(makeToken(payload))

	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "teacher", claims.Role)
	assert.Equal(t, int64(1700000000), claims.IssuedAt)
	assert.Equal(t, int64(1700086400), claims.ExpiresAt)
}

// TestDecodeSubFallback tests that sub is used when userId is absent
func TestDecodeSubFallback(t *testing.T) {
	claims, err := Decode(makeToken(`{"sub":"u-9","role":"staff","exp":1700086400}`))

	require.NoError(t, err)
	assert.Equal(t, "u-9", claims.UserID)
}

// TestDecodePaddedSegment tests tolerance of padded base64url payloads
func TestDecodePaddedSegment(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	body := base64.URLEncoding.EncodeToString([]byte(`{"role":"staff","exp":1700086400}`))

	claims, err := Decode(header + "." + body + ".sig")

	require.NoError(t, err)
	assert.Equal(t, "staff", claims.Role)
}

// TestDecodeMalformed tests every malformed-token classification
func TestDecodeMalformed(t *testing.T) {
	testCases := []struct {
		name        string
		token       string
		expectedErr error
	}{
		{
			name:        "Empty string",
			token:       "",
			expectedErr: ErrSegmentCount,
		},
		{
			name:        "Two segments",
			token:       "abc.def",
			expectedErr: ErrSegmentCount,
		},
		{
			name:        "Four segments",
			token:       "a.b.c.d",
			expectedErr: ErrSegmentCount,
		},
		{
			name:        "Invalid base64url payload",
			token:       "head.!!!not-base64!!!.sig",
			expectedErr: ErrBadEncoding,
		},
		{
			name:        "Payload is not JSON",
			token:       "head." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig",
			expectedErr: ErrBadPayload,
		},
		{
			name:        "Payload is a JSON array",
			token:       "head." + base64.RawURLEncoding.EncodeToString([]byte(`[1,2,3]`)) + ".sig",
			expectedErr: ErrBadPayload,
		},
		{
			name:        "Missing exp claim",
			token:       makeToken(`{"userId":"u-1","role":"teacher"}`),
			expectedErr: ErrMissingExpiry,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := Decode(tc.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

// TestExpiryBoundary tests the inclusive expiry boundary
func TestExpiryBoundary(t *testing.T) {
	now := time.Unix(1700000000, 0)

	testCases := []struct {
		exp     int64
		expired bool
	}{
		{exp: now.Unix() - 1, expired: true},
		{exp: now.Unix(), expired: true}, // boundary is inclusive of expiry
		{exp: now.Unix() + 1, expired: false},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("exp=%d", tc.exp), func(t *testing.T) {
			claims := &Claims{ExpiresAt: tc.exp}
			assert.Equal(t, tc.expired, claims.ExpiredAt(now))
		})
	}
}
