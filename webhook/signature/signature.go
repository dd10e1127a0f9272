package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// SecretPrefix tags webhook signing secrets so humans and log scrubbers
	// can tell them apart from other credential types at a glance
	SecretPrefix = "whsec_"

	// SecretBytes is the size of the random secret material (256 bits)
	SecretBytes = 32

	// DefaultTolerance is the default replay window for verification
	DefaultTolerance = 5 * time.Minute

	maskFiller = "*"
)

/* Signature header format: t={unix-seconds},v1={hex-digest}
 * The timestamp is part of the signed material, so a verifier can reject
 * stale signatures without any clock-sync mechanism beyond coarse tolerance
 */

// GenerateSecret creates a new cryptographically secure signing secret.
// Full entropy from crypto/rand; no two calls may plausibly collide.
func GenerateSecret() (string, error) {
	bytes := make([]byte, SecretBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}

	return SecretPrefix + base64.StdEncoding.EncodeToString(bytes), nil
}

// Mask hides a secret for display: the prefix stays visible, the rest is
// replaced by a fixed filler so the live credential is never re-exposed
func Mask(secret string) string {
	body := strings.TrimPrefix(secret, SecretPrefix)
	return SecretPrefix + strings.Repeat(maskFiller, len(body))
}

// Sign computes HMAC-SHA256(secret, "{timestamp}.{payload}") and returns
// the structured signature header
func Sign(payload []byte, secret string, t time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}

	ts := strconv.FormatInt(t.Unix(), 10)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)

	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))), nil
}

// Verify checks a signature header against the payload and secret.
// It is a pure boolean predicate: any malformed header, stale timestamp or
// digest mismatch yields false, never an error.
func Verify(payload []byte, header, secret string, tolerance time.Duration) bool {
	return verifyAt(payload, header, secret, tolerance, time.Now())
}

// verifyAt is the clock-injected core of Verify, used by tests
func verifyAt(payload []byte, header, secret string, tolerance time.Duration, now time.Time) bool {
	if secret == "" {
		return false
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	ts, digest, ok := parseHeader(header)
	if !ok {
		return false
	}

	age := now.Sub(time.Unix(ts, 0))
	if age < 0 {
		age = -age
	}
	if age > tolerance {
		return false
	}

	expected, err := Sign(payload, secret, time.Unix(ts, 0))
	if err != nil {
		return false
	}
	_, expectedDigest, ok := parseHeader(expected)
	if !ok {
		return false
	}

	// Constant-time comparison to prevent timing side channels
	return subtle.ConstantTimeCompare([]byte(digest), []byte(expectedDigest)) == 1
}

// parseHeader extracts the timestamp and digest from a "t=...,v1=..." header.
// Fails closed: any missing field or unparsable value is invalid.
func parseHeader(header string) (int64, string, bool) {
	var tsStr, digest string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return 0, "", false
		}
		switch kv[0] {
		case "t":
			tsStr = kv[1]
		case "v1":
			digest = kv[1]
		}
	}

	if tsStr == "" || digest == "" {
		return 0, "", false
	}

	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return 0, "", false
	}

	if _, err := hex.DecodeString(digest); err != nil {
		return 0, "", false
	}

	return ts, digest, true
}
