/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the review front end

ROUTE GROUPS:
  /api/companies/{companyID}/*  Per-company settings, ingestion, payroll
  /api/tax/*                    Company-independent tax estimate
  /api/scenarios/*              Demo data loaders
  /healthz                      Liveness probe

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultCORSOrigins is used when no origins are configured.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins ...string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultCORSOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Export-Warning", "X-Export-Log-ID"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/companies", h.ListCompanies)

		r.Route("/companies/{companyID}", func(r chi.Router) {
			r.Get("/settings", h.GetSettings)
			r.Put("/settings", h.PutSettings)

			r.Post("/entries", h.AddEntries)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Put("/{userID}", h.SaveEmployee)
			})

			r.Get("/salary-codes", h.ListSalaryCodes)
			r.Route("/mappings", func(r chi.Router) {
				r.Get("/", h.ListMappings)
				r.Put("/{code}", h.SaveMapping)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/period", h.GetPayPeriod)
				r.Get("/readiness", h.GetReadiness)
				r.Get("/summary", h.GetSummary)
				r.Get("/summary.xlsx", h.GetSummaryWorkbook)
				r.Post("/validate", h.ValidateExport)
				r.Post("/export", h.Export)
				r.Get("/exports", h.ListExportLogs)
			})

			r.Route("/classify", func(r chi.Router) {
				r.Post("/payroll", h.ClassifyPayroll)
				r.Post("/billing", h.ClassifyBilling)
			})
		})

		r.Post("/tax/estimate", h.EstimateTax)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
