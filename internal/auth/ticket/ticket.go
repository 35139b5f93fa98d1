// Package ticket issues and verifies the signed authentication ticket held
// by the browser.
//
// Ticket validity is determined solely by signature and expiry; tickets are
// never looked up against server state, so there is no way to revoke one
// before its natural expiry. Logout only instructs the client to discard it.
package ticket

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/evereld/staffdesk/internal/auth/user"
	"github.com/evereld/staffdesk/internal/platform/config"
)

const issuerName = "staffdesk"

// ErrInvalidTicket indicates a ticket that failed signature or expiry checks.
var ErrInvalidTicket = errors.New("invalid authentication ticket")

// ticketEnv holds raw env values before post-parse validation.
type ticketEnv struct {
	HMACKey string `env:"STAFFDESK_TICKET_HMAC_KEY"`
}

// Config defines how tickets are signed and verified.
type Config struct {
	Key []byte
	Now func() time.Time
}

// LoadConfigFromEnv reads the ticket signing key from the environment. The
// key is hex-encoded, as produced by cmd/hmac-key.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw ticketEnv
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, err
	}
	key := strings.TrimSpace(raw.HMACKey)
	if key == "" {
		return Config{}, fmt.Errorf("STAFFDESK_TICKET_HMAC_KEY is required")
	}
	keyBytes, err := hex.DecodeString(key)
	if err != nil {
		return Config{}, fmt.Errorf("decode ticket hmac key: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return Config{Key: keyBytes, Now: now}, nil
}

// Claims captures the identity carried by a verified ticket.
type Claims struct {
	UserID      string
	Email       string
	DisplayName string
	ExpiresAt   time.Time
}

// ticketClaims is the internal claims type used for JWT signing and parsing.
type ticketClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Signer signs and verifies authentication tickets.
type Signer struct {
	key []byte
	now func() time.Time
}

// NewSigner creates a ticket signer from config.
func NewSigner(cfg Config) (*Signer, error) {
	if len(cfg.Key) == 0 {
		return nil, errors.New("ticket signing key is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Signer{key: cfg.Key, now: now}, nil
}

// Issue signs a ticket for the identity, expiring at the given time.
func (s *Signer) Issue(identity user.Identity, expiresAt time.Time) (string, error) {
	if identity.ID == "" {
		return "", errors.New("identity id is required")
	}
	now := s.now().UTC()
	claims := ticketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt.UTC()),
		},
		Email: identity.Email,
		Name:  identity.DisplayName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign ticket: %w", err)
	}
	return signed, nil
}

// Parse verifies a ticket's signature and expiry and returns its claims.
func (s *Signer) Parse(value string) (Claims, error) {
	var claims ticketClaims
	token, err := jwt.ParseWithClaims(value, &claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return s.key, nil
		},
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidTicket
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidTicket
	}
	return Claims{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
