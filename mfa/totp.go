package mfa

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// TOTPVerifier checks RFC 6238 time-based one-time codes against a
// base32-encoded shared secret. The zero value is not usable; construct
// with [NewTOTPVerifier].
type TOTPVerifier struct {
	digits int
	period int
	skew   int
	now    func() time.Time
}

// NewTOTPVerifier returns a verifier with the common authenticator-app
// parameters: 6 digits, 30-second period, one step of clock skew either
// way, HMAC-SHA1.
func NewTOTPVerifier() *TOTPVerifier {
	return &TOTPVerifier{
		digits: 6,
		period: 30,
		skew:   1,
		now:    time.Now,
	}
}

// Verify reports whether code is a currently valid TOTP code for the
// base32 secret. Malformed codes and undecodable secrets verify false,
// never error: a second factor either matches or it does not.
func (v *TOTPVerifier) Verify(secretBase32, code string) bool {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != v.digits || !isNumeric(trimmed) {
		return false
	}

	secret, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(
		strings.ToUpper(strings.TrimRight(secretBase32, "=")))
	if err != nil || len(secret) == 0 {
		return false
	}

	baseCounter := v.now().Unix() / int64(v.period)
	for step := -v.skew; step <= v.skew; step++ {
		counter := baseCounter + int64(step)
		if counter < 0 {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(hotpCode(secret, counter, v.digits)), []byte(trimmed)) == 1 {
			return true
		}
	}

	return false
}

func hotpCode(secret []byte, counter int64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, bin%mod)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
