package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/physiokit/physiokit/modules/auth"
	"github.com/physiokit/physiokit/modules/billing"
	"github.com/physiokit/physiokit/modules/patient"
	"github.com/physiokit/physiokit/modules/subscription"
	"github.com/physiokit/physiokit/pkg/httpserver"
	"github.com/physiokit/physiokit/pkg/session"
)

// Deps carries everything the router needs. All services are required;
// HealthChecks and Logger are optional.
type Deps struct {
	Auth          *auth.Service
	Subscriptions *subscription.Service
	Billing       *billing.Service
	Patients      *patient.Service
	Sessions      *session.Manager

	Logger       *slog.Logger
	HealthChecks []func(ctx context.Context) error
}

// NewRouter assembles the API surface:
//
//	POST /api/public/register
//	POST /api/public/login
//	POST /api/webhooks/paddle
//	GET  /healthz
//	GET  /api/cabinet/subscription-status
//	POST /api/cabinet/upgrade-subscription
//	POST /api/cabinet/cancel-subscription
//	POST /api/cabinet/checkout
//	GET  /api/cabinet/billing-portal
//	GET/POST /api/cabinet/patients, GET/PUT /api/cabinet/patients/{id},
//	POST /api/cabinet/patients/{id}/archive
//	POST /api/cabinet/logout
func NewRouter(deps Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	h := &handlers{
		auth:     deps.Auth,
		subs:     deps.Subscriptions,
		billing:  deps.Billing,
		patients: deps.Patients,
		log:      log,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(log, deps.HealthChecks...))

	r.Route("/api", func(r chi.Router) {
		r.Route("/public", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
		})

		r.Post("/webhooks/paddle", h.paddleWebhook)

		r.Route("/cabinet", func(r chi.Router) {
			r.Use(requireSession(deps.Sessions, log))

			r.Get("/subscription-status", h.subscriptionStatus)
			r.Post("/upgrade-subscription", h.upgradeSubscription)
			r.Post("/cancel-subscription", h.cancelSubscription)

			r.Post("/checkout", h.checkout)
			r.Get("/billing-portal", h.billingPortal)

			r.Route("/patients", func(r chi.Router) {
				r.Get("/", h.listPatients)
				r.Post("/", h.createPatient)
				r.Get("/{id}", h.getPatient)
				r.Put("/{id}", h.updatePatient)
				r.Post("/{id}/archive", h.archivePatient)
			})

			r.Post("/logout", h.logout)
		})
	})

	return r
}
