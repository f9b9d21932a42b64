package authjwt

import (
	"time"

	authdomain "github.com/Gr33nOps/VTcade/app/modules/auth/domain"
)

// Issuer signs tokens for claims that pass authdomain validation.
type Issuer interface {
	GenerateToken(claims *authdomain.Claims, ttl time.Duration) (string, error)
}

// Verifier turns a bearer token back into validated claims.
type Verifier interface {
	ValidateToken(token string) (*authdomain.Claims, error)
}

// Provider issues and verifies tokens for one secret and issuer.
type Provider interface {
	Issuer
	Verifier
}
