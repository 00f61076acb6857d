package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cobrax/tenauth/internal/auth/audit"
	"github.com/cobrax/tenauth/internal/auth/domain"
	"github.com/cobrax/tenauth/internal/auth/metrics"
	"github.com/cobrax/tenauth/internal/auth/service"
	"github.com/cobrax/tenauth/internal/auth/store"
	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/cobrax/tenauth/pkg/jwtx"
	"github.com/cobrax/tenauth/pkg/slogx"

	_ "github.com/cobrax/tenauth/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RateLimits carries the per-endpoint fixed-window configs.
type RateLimits struct {
	Exchange httpx.WindowConfig
	Validate httpx.WindowConfig
	Refresh  httpx.WindowConfig
}

// DefaultRateLimits are the production defaults: exchange is the most
// abusable endpoint and gets the tightest window.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Exchange: httpx.WindowConfig{Max: 10, Window: time.Minute},
		Validate: httpx.WindowConfig{Max: 100, Window: time.Minute},
		Refresh:  httpx.WindowConfig{Max: 20, Window: time.Minute},
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	TokenService      *service.TokenService
	MembershipService *service.MembershipService
	Metrics           *metrics.Metrics
	Audit             *audit.Recorder

	// AdminKeyHash is the argon2id hash admin requests must match. Empty
	// disables the admin surface entirely.
	AdminKeyHash string

	// SecureCookies controls the Secure flag on refresh cookies. Off only
	// for local plain-http development.
	SecureCookies bool

	RateLimits RateLimits
	CORS       httpx.CORSConfig

	exchangeLimiter *httpx.FixedWindowLimiter
	validateLimiter *httpx.FixedWindowLimiter
	refreshLimiter  *httpx.FixedWindowLimiter
}

func NewRouter(
	keys *jwtx.KeySet,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		RateLimits:   DefaultRateLimits(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// Limiters returns the per-endpoint limiters so housekeeping can sweep
// their expired windows. Valid after ApplyRoutes.
func (r *Router) Limiters() []*httpx.FixedWindowLimiter {
	return []*httpx.FixedWindowLimiter{r.exchangeLimiter, r.validateLimiter, r.refreshLimiter}
}

func (r *Router) ApplyRoutes() {
	r.exchangeLimiter = httpx.NewFixedWindowLimiter(r.RateLimits.Exchange)
	r.validateLimiter = httpx.NewFixedWindowLimiter(r.RateLimits.Validate)
	r.refreshLimiter = httpx.NewFixedWindowLimiter(r.RateLimits.Refresh)

	if r.CORS.AllowLocalhost || len(r.CORS.AllowedOrigins) > 0 {
		r.middlewares = append(r.middlewares, httpx.CORSMiddleware(r.CORS))
	}

	r.registerTokens()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tenant Auth Service API
//	@version		0.1.0
//	@description	Tenant-scoped authentication for the platform: one-time access
//	@description	code exchange, token validation with live membership checks, and
//	@description	refresh token rotation.
//	@description
//	@description				All tokens are signed using EdDSA (Ed25519) and can be verified using the JWKS endpoint.
//
//	@contact.name				Cobrax Platform Team
//	@contact.url				https://github.com/cobrax/tenauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerTokens() {
	exchange := &ExchangeHandler{
		TokenService:  r.TokenService,
		SecureCookies: r.SecureCookies,
	}
	r.Mux.Handle("POST /v1/exchange-tenant-code/{slug}",
		httpx.Chain(exchange,
			httpx.RateLimitMiddleware(r.exchangeLimiter,
				httpx.OperationKeyExtractor("exchange", httpx.IPKeyExtractor),
				r.onRateLimited("exchange")),
		),
	)

	validate := &ValidateHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/validate-tenant-token",
		httpx.Chain(validate,
			httpx.RateLimitMiddleware(r.validateLimiter,
				httpx.OperationKeyExtractor("validate", httpx.IPKeyExtractor),
				r.onRateLimited("validate")),
		),
	)

	refresh := &RefreshHandler{
		TokenService:  r.TokenService,
		SecureCookies: r.SecureCookies,
	}
	r.Mux.Handle("POST /v1/refresh-tenant-token/{slug}",
		httpx.Chain(refresh,
			httpx.RateLimitMiddleware(r.refreshLimiter,
				httpx.OperationKeyExtractor("refresh", httpx.IPKeyExtractor),
				r.onRateLimited("refresh")),
		),
	)
}

func (r *Router) registerAdmin() {
	if r.AdminKeyHash == "" {
		return
	}

	guard := AdminKeyMiddleware(r.AdminKeyHash)

	revoke := &AdminRevokeHandler{MembershipService: r.MembershipService}
	r.Mux.Handle("POST /v1/admin/revoke", httpx.Chain(revoke, guard))

	active := &AdminMembershipActiveHandler{MembershipService: r.MembershipService}
	r.Mux.Handle("POST /v1/admin/memberships/active", httpx.Chain(active, guard))

	r.Mux.Handle("GET /v1/internal/stats", httpx.Chain(StatsHandler(r.Metrics, r.store.SecurityEvents()), guard))
	r.Mux.Handle("GET /metrics", httpx.Chain(promhttp.Handler(), guard))
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys))
	r.Mux.HandleFunc("GET /.well-known/jwks.json", JWKSHandler(r.keys))
}

// onRateLimited records the security event and metric for a throttled
// request.
func (r *Router) onRateLimited(endpoint string) func(req *http.Request, key string, d httpx.Decision) {
	return func(req *http.Request, key string, d httpx.Decision) {
		if r.Metrics != nil {
			r.Metrics.ObserveRateLimited(endpoint)
		}
		if r.Audit != nil {
			r.Audit.Record(req.Context(), domain.SecurityEvent{
				Kind:     domain.EventRateLimitExceeded,
				RemoteIP: httpx.IPKeyExtractor(req),
				Detail:   "endpoint=" + endpoint,
			})
		}
	}
}
