package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/carbonwallet/leads-service/internal/core/domain"
	"github.com/carbonwallet/leads-service/internal/core/ports"
	"github.com/carbonwallet/leads-service/internal/pkg/metrics"
)

// AdminCredentials is the single configured administrator. Password may be
// plaintext or a bcrypt hash.
type AdminCredentials struct {
	Username string
	Password string
}

// AuthService implements admin login.
type AuthService struct {
	username     []byte
	passwordHash []byte
	configured   bool
	tokens       ports.TokenIssuer
	log          zerolog.Logger
}

// NewAuthService prepares the credential check. Missing credentials are not
// an error: the service starts and every login answers ErrAdminNotConfigured.
func NewAuthService(creds AdminCredentials, tokens ports.TokenIssuer, log zerolog.Logger) (*AuthService, error) {
	s := &AuthService{tokens: tokens, log: log}
	if creds.Username == "" || creds.Password == "" {
		log.Warn().Msg("ADMIN_USERNAME or ADMIN_PASSWORD is not set, admin login is disabled")
		return s, nil
	}

	hash := []byte(creds.Password)
	if _, err := bcrypt.Cost(hash); err != nil {
		hash, err = bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}

	s.username = []byte(creds.Username)
	s.passwordHash = hash
	s.configured = true
	return s, nil
}

// Login exchanges the admin credential for a token carrying RoleAdmin.
func (s *AuthService) Login(_ context.Context, username, password string) (domain.AccessToken, error) {
	if !s.configured {
		metrics.LoginAttemptsTotal.WithLabelValues("unavailable").Inc()
		return domain.AccessToken{}, domain.ErrAdminNotConfigured
	}

	// Both checks run on every attempt.
	userOK := subtle.ConstantTimeCompare([]byte(username), s.username) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		s.log.Info().Str("username", username).Msg("admin login rejected")
		return domain.AccessToken{}, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(string(s.username), domain.RoleAdmin)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("login: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", username).Msg("admin logged in")
	return token, nil
}
