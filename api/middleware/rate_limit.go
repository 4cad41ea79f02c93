package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/responses"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
	pkgredis "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/redis"
)

// RateLimitPolicy caps requests per account inside a fixed window.
type RateLimitPolicy struct {
	Name   string
	Window time.Duration
	Limit  int
}

func (p RateLimitPolicy) enabled() bool {
	return p.Window > 0 && p.Limit > 0
}

func (p RateLimitPolicy) name() string {
	if n := strings.ToLower(strings.TrimSpace(p.Name)); n != "" {
		return n
	}
	return "ledger"
}

// RateLimit counts requests per authenticated account. Requests without an
// account pass through; Auth rejects them first.
func RateLimit(policy RateLimitPolicy, store pkgredis.CounterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			accountID := AccountIDFromContext(ctx)
			if accountID == uuid.Nil {
				next.ServeHTTP(w, r)
				return
			}

			key := store.CounterKey("rl:" + policy.name() + ":" + accountID.String())
			count, err := store.IncrWithTTL(ctx, key, policy.Window)
			if err != nil {
				// Counter outages must not block ledger writes.
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "rate_limit.counter_unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(policy.Limit) {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":         policy.name(),
						"attempts":       count,
						"limit":          policy.Limit,
						"window_seconds": int(policy.Window.Seconds()),
					}), "rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
