package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/carbonwallet/leads-service/internal/core/domain"
)

const (
	DefaultTokenTTL      = 8 * time.Hour
	ephemeralSecretBytes = 32
)

// tokenClaims is the JWT payload: sub, iat, exp and the caller's role.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// TokenService issues and verifies HS256 bearer tokens. It implements both
// ports.TokenIssuer and ports.TokenVerifier.
type TokenService struct {
	secret    []byte
	ttl       time.Duration
	ephemeral bool
	now       func() time.Time
}

// NewTokenService signs with secret. When secret is empty a random secret is
// generated for the life of the process, so tokens stop verifying after a
// restart.
func NewTokenService(secret string, ttl time.Duration, log zerolog.Logger) (*TokenService, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}

	if secret == "" {
		key := make([]byte, ephemeralSecretBytes)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing secret: %w", err)
		}
		s.secret = key
		s.ephemeral = true
		log.Warn().Msg("JWT_SECRET is not set, using an ephemeral signing secret; tokens will not survive a restart")
	}
	return s, nil
}

// Ephemeral reports whether the signing secret was generated at startup.
func (s *TokenService) Ephemeral() bool { return s.ephemeral }

// TTL is the lifetime of tokens issued by Issue.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for subject that expires after the configured TTL.
func (s *TokenService) Issue(subject string, role domain.Role) (domain.AccessToken, error) {
	return s.IssueWithTTL(subject, role, s.ttl)
}

// IssueWithTTL signs a token for subject that expires after ttl.
func (s *TokenService) IssueWithTTL(subject string, role domain.Role, ttl time.Duration) (domain.AccessToken, error) {
	if subject == "" {
		return domain.AccessToken{}, errors.New("issue token: empty subject")
	}

	now := s.now()
	iat := jwt.NewNumericDate(now)
	exp := jwt.NewNumericDate(now.Add(ttl))
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  iat,
			ExpiresAt: exp,
		},
		Role: string(role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("sign token: %w", err)
	}
	return domain.AccessToken{Value: signed, ExpiresAt: exp.Time.UTC()}, nil
}

// Verify checks the signature, algorithm and expiry of raw and returns the
// principal it carries. Every failure wraps domain.ErrUnauthorized.
func (s *TokenService) Verify(raw string) (domain.Principal, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Principal{}, err
	}

	return domain.Principal{
		Subject:   claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
