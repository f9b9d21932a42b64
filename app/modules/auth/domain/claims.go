package authdomain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingPlayer = errors.New("claims carry no player id")
	ErrUnknownRole   = errors.New("unknown role")
)

// Role is the authorization level of a caller.
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// ParseRole maps a token's role claim onto a Role. Matching ignores case and
// surrounding space; anything else is ErrUnknownRole.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RolePlayer, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

// Claims is what a verified bearer token says about its holder.
// PlayerID is the only identity the scoring core ever sees.
type Claims struct {
	PlayerID  string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Validate checks that the claims name a player and a known role.
func (c *Claims) Validate() error {
	if c == nil || strings.TrimSpace(c.PlayerID) == "" {
		return ErrMissingPlayer
	}
	if _, err := ParseRole(string(c.Role)); err != nil {
		return err
	}
	return nil
}

// ExpiredAt reports whether the claims are no longer valid at now. Claims
// without an expiry never expire.
func (c *Claims) ExpiredAt(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Allows reports whether the holder may act in one of the required roles.
// Admin passes every check.
func (c *Claims) Allows(required ...Role) bool {
	if c.Role == RoleAdmin {
		return true
	}
	for _, r := range required {
		if c.Role == r {
			return true
		}
	}
	return false
}
