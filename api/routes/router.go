package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/controllers"
	creditcontrollers "github.com/euroisufi/schweizer-handwerksplattform-sub000/api/controllers/credits"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/middleware"
	creditsvc "github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/credits"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/config"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/metrics"
	pkgredis "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on. Redis is
// optional; without it idempotency replay and rate limiting are disabled.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Credits     creditsvc.Service
	Idempotency pkgredis.IdempotencyStore
	Counters    pkgredis.CounterStore
	Readiness   map[string]controllers.Pinger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Readiness))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	writes := middleware.RateLimit(middleware.RateLimitPolicy{
		Name:   "ledger_writes",
		Window: cfg.RateLimit.Window,
		Limit:  cfg.RateLimit.WritesPerAcc,
	}, p.Counters, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/subscriptions/plans", creditcontrollers.Plans(p.Credits, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(p.Idempotency, logg))

			// Flat registration keeps the full route pattern visible to the
			// idempotency middleware.
			r.Get("/projects/{projectId}/price", creditcontrollers.ProjectPrice(p.Credits, logg))
			r.With(writes).Post("/projects/{projectId}/unlock", creditcontrollers.UnlockContact(p.Credits, logg))
			r.Get("/contacts", creditcontrollers.UnlockedContacts(p.Credits, logg))

			r.Get("/credits/balance", creditcontrollers.Balance(p.Credits, logg))
			r.Get("/credits/packages", creditcontrollers.Packages(p.Credits, logg))
			r.Get("/credits/entries", creditcontrollers.Entries(p.Credits, logg))
			r.With(writes).Post("/credits/purchases", creditcontrollers.Purchase(p.Credits, logg))

			r.Get("/subscriptions", creditcontrollers.CurrentSubscription(p.Credits, logg))
			r.With(writes).Post("/subscriptions", creditcontrollers.Subscribe(p.Credits, logg))
			r.With(writes).Post("/subscriptions/cancel", creditcontrollers.CancelSubscription(p.Credits, logg))
		})
	})

	return r
}
