package download

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken is returned for malformed or tampered tokens.
	ErrInvalidToken = errors.New("invalid download token")
	// ErrExpiredToken is returned once a token's expiry has passed.
	ErrExpiredToken = errors.New("download token expired")
)

// DefaultTTL is used when the configured lifetime is not positive.
const DefaultTTL = 15 * time.Minute

// Grant is what a verified token authorises.
type Grant struct {
	EventID   string
	Format    string
	ExpiresAt time.Time
}

// Signer issues and checks short-lived export download tokens. A token is
// self-contained: event ID, expiry and format are covered by an HMAC-SHA256
// signature, so nothing is stored server-side.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner constructs a signer. An empty secret is rejected.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("download signing secret missing")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL reports how long issued tokens stay valid.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign returns a token for downloading the event's export in the given format.
func (s *Signer) Sign(eventID, format string) (string, time.Time, error) {
	if eventID == "" || format == "" {
		return "", time.Time{}, fmt.Errorf("event id and format required")
	}
	if strings.Contains(eventID, ".") || strings.Contains(format, ".") {
		return "", time.Time{}, fmt.Errorf("event id and format must not contain '.'")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	token := strings.Join([]string{eventID, exp, format, s.mac(eventID, exp, format)}, ".")
	return token, expiresAt, nil
}

// Verify checks the signature and expiry of a token.
func (s *Signer) Verify(token string) (Grant, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return Grant{}, ErrInvalidToken
	}
	eventID, exp, format, signature := parts[0], parts[1], parts[2], parts[3]
	if !hmac.Equal([]byte(s.mac(eventID, exp, format)), []byte(signature)) {
		return Grant{}, ErrInvalidToken
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return Grant{}, ErrInvalidToken
	}
	expiresAt := time.Unix(unix, 0)
	if !s.now().Before(expiresAt) {
		return Grant{}, ErrExpiredToken
	}
	return Grant{EventID: eventID, Format: format, ExpiresAt: expiresAt}, nil
}

func (s *Signer) mac(eventID, exp, format string) string {
	h := hmac.New(sha256.New, s.secret)
	_, _ = h.Write([]byte(eventID + "|" + exp + "|" + format))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
