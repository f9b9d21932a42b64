package auth

import (
	"context"
	"net/http"

	authdomain "github.com/Gr33nOps/VTcade/app/modules/auth/domain"
	authhandlers "github.com/Gr33nOps/VTcade/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Gr33nOps/VTcade/app/modules/auth/infrastructure/jwt"
	"github.com/Gr33nOps/VTcade/config"
	"github.com/Gr33nOps/VTcade/internal/observability"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// Module represents the auth module. It validates identity tokens and guards
// routes; it issues no tokens over HTTP.
type Module struct {
	Provider authjwt.Provider
	limiter  *authhandlers.IPRateLimiter
	origins  []string
}

// NewModule creates a new auth module.
func NewModule(ctx context.Context, cfg *config.Config, obs observability.Observability) *Module {
	obs.Logger.InfoContext(ctx, "Initializing auth module")

	return &Module{
		Provider: authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer),
		limiter:  authhandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst),
		origins:  cfg.HTTP.AllowedOrigins,
	}
}

// Use installs the CORS and rate limiting middleware on r.
func (m *Module) Use(r chi.Router) {
	r.Use(authhandlers.CORSMiddleware(m.origins))
	r.Use(authhandlers.RateLimitMiddleware(m.limiter))
}

// RequirePlayer admits any authenticated player.
func (m *Module) RequirePlayer() func(http.Handler) http.Handler {
	return authhandlers.RequireRole(m.Provider, authdomain.RolePlayer)
}

// RequireAdmin admits administrators only.
func (m *Module) RequireAdmin() func(http.Handler) http.Handler {
	return authhandlers.RequireRole(m.Provider, authdomain.RoleAdmin)
}
