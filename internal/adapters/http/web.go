package web

import (
	"context"
	"net/http"
	"time"

	"mydaylog/internal/adapters/http/middleware"
	"mydaylog/internal/adapters/http/perf"
	accountStore "mydaylog/internal/adapters/storage/account"
	mealStore "mydaylog/internal/adapters/storage/meal"
	settingsStore "mydaylog/internal/adapters/storage/usersettings"
	"mydaylog/internal/domain/account"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore  accountStore.Store
	MealStore     mealStore.Store
	SettingsStore settingsStore.Store
}

// Options configures the API beyond its stores.
type Options struct {
	JWTSecret          []byte
	CSRFKey            []byte // 32 bytes
	SecureCookies      bool
	RateLimitPerSecond int
	SlowRequest        time.Duration
	FutureSlackDays    int
	EnablePerf         bool                            // serve /debug/perf
	Health             func(ctx context.Context) error // nil means always healthy
	Now                func() time.Time                // nil means time.Now
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global options (set by NewMux)
var opts Options

// Global access-token signer (set by NewMux)
var tokens *middleware.Tokens

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// NewMux wires HTTP handlers for the API.
// PRE: s has every store set; o.JWTSecret is non-empty; o.CSRFKey is 32 bytes
// POST: returns the handler with the full middleware chain applied
func NewMux(s *Stores, collector *perf.Collector, o Options) http.Handler {
	stores = s
	opts = o
	perfCollector = collector
	tokens = middleware.NewTokens(o.JWTSecret, account.AccessTokenTTL)
	if o.Now != nil {
		tokens = tokens.WithClock(o.Now)
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	rate := o.RateLimitPerSecond
	if rate <= 0 {
		rate = 20
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Applied inside out: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(o.CSRFKey, o.SecureCookies),
		middleware.Auth(tokens),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, o.SlowRequest),
	)
}

func now() time.Time {
	if opts.Now != nil {
		return opts.Now()
	}
	return time.Now()
}
