package authjwt

import (
	"fmt"
	"time"

	authdomain "github.com/Gr33nOps/VTcade/app/modules/auth/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenClaims is the wire form: sub carries the player id.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type provider struct {
	secret []byte
	issuer string
	parser *jwt.Parser
	now    func() time.Time
}

// NewProvider creates an HS256 provider. An empty issuer disables the issuer check.
func NewProvider(secret, issuer string) Provider {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &provider{
		secret: []byte(secret),
		issuer: issuer,
		parser: jwt.NewParser(opts...),
		now:    time.Now,
	}
}

// GenerateToken signs claims for ttl. The role and player id are validated first.
func (p *provider) GenerateToken(claims *authdomain.Claims, ttl time.Duration) (string, error) {
	if err := claims.Validate(); err != nil {
		return "", fmt.Errorf("cannot issue token: %w", err)
	}

	now := p.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   claims.PlayerID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: string(claims.Role),
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, expiry and issuer, then the claims themselves.
func (p *provider) ValidateToken(raw string) (*authdomain.Claims, error) {
	parsed := &tokenClaims{}
	_, err := p.parser.ParseWithClaims(raw, parsed, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	role, err := authdomain.ParseRole(parsed.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims := &authdomain.Claims{
		PlayerID: parsed.Subject,
		Role:     role,
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if err := claims.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}
