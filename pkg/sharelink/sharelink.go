package sharelink

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken reports a malformed or tampered token.
	ErrInvalidToken = errors.New("invalid share token")
	// ErrExpired reports a token past its expiry.
	ErrExpired = errors.New("share token expired")
)

// Claims are the values carried by a share token.
type Claims struct {
	Owner     string
	Format    string
	ExpiresAt time.Time
}

// Signer creates and validates HMAC-signed share tokens for read-only timetable exports.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner constructs a signer with the provided secret and TTL.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a signed token granting access to an export in format.
func (s *Signer) Generate(owner, format string) (string, time.Time, error) {
	if owner == "" || format == "" {
		return "", time.Time{}, fmt.Errorf("owner and format required")
	}
	if strings.Contains(owner, ".") || strings.Contains(format, ".") {
		return "", time.Time{}, fmt.Errorf("owner and format must not contain dots")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).UTC().Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	token := strings.Join([]string{owner, format, ts, s.sign(owner, format, ts)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded claims.
func (s *Signer) Parse(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return Claims{}, ErrInvalidToken
	}
	owner, format, ts, signature := parts[0], parts[1], parts[2], parts[3]

	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(s.sign(owner, format, ts)), []byte(signature)) {
		return Claims{}, ErrInvalidToken
	}
	claims := Claims{Owner: owner, Format: format, ExpiresAt: time.Unix(expUnix, 0).UTC()}
	if s.now().After(claims.ExpiresAt) {
		return Claims{}, ErrExpired
	}
	return claims, nil
}

func (s *Signer) sign(owner, format, ts string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(owner + "|" + format + "|" + ts))
	return hex.EncodeToString(mac.Sum(nil))
}
