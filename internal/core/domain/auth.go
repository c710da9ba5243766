package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of roles a token may carry. The system has exactly one.
type Role string

const RoleAdmin Role = "admin"

// ParseRole maps a raw claim value to a Role. An empty value defaults to
// RoleAdmin; anything else unknown is rejected.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrUnauthorized, s)
	}
}

// Principal is the verified identity carried by a bearer token.
type Principal struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
}

// IsZero reports whether p was never populated by a token verification.
func (p Principal) IsZero() bool {
	return p.Subject == "" && p.Role == ""
}

// AccessToken is the result of a successful login.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}
