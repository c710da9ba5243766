package ports

import (
	"context"
	"time"

	"github.com/carbonwallet/leads-service/internal/core/domain"
)

// TokenIssuer issues signed bearer tokens.
type TokenIssuer interface {
	Issue(subject string, role domain.Role) (domain.AccessToken, error)
	IssueWithTTL(subject string, role domain.Role, ttl time.Duration) (domain.AccessToken, error)
}

// TokenVerifier validates bearer tokens. It fails with domain.ErrUnauthorized.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// AuthService exchanges the admin credential for an access token.
type AuthService interface {
	Login(ctx context.Context, username, password string) (domain.AccessToken, error)
}
