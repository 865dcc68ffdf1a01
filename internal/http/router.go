package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/budgetflow/internal/auth"
	"github.com/MrJamesThe3rd/budgetflow/internal/http/bank"
	"github.com/MrJamesThe3rd/budgetflow/internal/http/goal"
	"github.com/MrJamesThe3rd/budgetflow/internal/http/health"
	"github.com/MrJamesThe3rd/budgetflow/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetflow/internal/http/transaction"
)

type Options struct {
	// Timeout bounds each API request; zero disables it.
	Timeout time.Duration
	// MaxInFlight caps concurrent API requests; zero disables it.
	MaxInFlight int
	CORSOrigins []string
}

func New(
	opts Options,
	tokens *auth.Tokens,
	healthH *health.Handler,
	transactionsV1 *transaction.Handler,
	goalsV1 *goal.Handler,
	bankV1 *bank.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(respond.RequestIDHeader)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.NotFound(respond.NotFound)
	router.MethodNotAllowed(respond.MethodNotAllowed)

	router.Route("/health", healthH.Routes)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))

		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		if opts.MaxInFlight > 0 {
			r.Use(middleware.Throttle(opts.MaxInFlight))
		}

		r.Use(auth.Middleware(tokens))

		r.Route("/transactions", transactionsV1.Routes)
		r.Route("/goals", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			goalsV1.Routes(r)
		})
		r.Route("/bank", bankV1.Routes)
	})

	return router
}
