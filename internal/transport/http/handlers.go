// @title OpsDash API
// @version 1.0.0
// @description Operations dashboard backend for the lead automation platform

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package http

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/opsdash/opsdash/internal/audit"
	"github.com/opsdash/opsdash/internal/client"
	"github.com/opsdash/opsdash/internal/dashboard"
	"github.com/opsdash/opsdash/internal/investigate"
	"github.com/opsdash/opsdash/internal/period"
	"github.com/opsdash/opsdash/internal/upstream"
	"github.com/opsdash/opsdash/internal/user"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	userService        *user.Service
	clientService      *client.Service
	dashboardService   *dashboard.Service
	investigateService *investigate.Service
	refresher          *dashboard.Refresher
	leads              *upstream.LeadsClient
	sdr                *upstream.SDRClient
	calc               *upstream.CalcClient
	reports            *upstream.ReportClient
	auditLogger        audit.Logger
	authConfig         AuthConfig
	whatsappInterval   time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(
	userService *user.Service,
	clientService *client.Service,
	dashboardService *dashboard.Service,
	investigateService *investigate.Service,
	refresher *dashboard.Refresher,
	leads *upstream.LeadsClient,
	sdr *upstream.SDRClient,
	calc *upstream.CalcClient,
	reports *upstream.ReportClient,
	auditLogger audit.Logger,
	authConfig AuthConfig,
	whatsappInterval time.Duration,
) *Handler {
	return &Handler{
		userService:        userService,
		clientService:      clientService,
		dashboardService:   dashboardService,
		investigateService: investigateService,
		refresher:          refresher,
		leads:              leads,
		sdr:                sdr,
		calc:               calc,
		reports:            reports,
		auditLogger:        auditLogger,
		authConfig:         authConfig,
		whatsappInterval:   whatsappInterval,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter, staticDir string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Post("/auth/login", h.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/auth/me", h.GetCurrentUser)

			// Dashboard overview and investigation
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", h.DashboardStats)
				r.Get("/activity", h.DashboardActivity)
				r.Get("/clients-preview", h.ClientsPreview)
				r.Post("/refresh", h.ForceRefresh)
				r.Get("/investigate", h.Investigate)
				r.Get("/investigate/filter", h.InvestigateFilter)
				r.Get("/clients/{clientSlug}/logs", h.ClientLogs)
			})

			// SDR chatbot platform
			r.Route("/sdr", func(r chi.Router) {
				r.Get("/conversations", h.SDRConversations)
				r.Get("/leads", h.SDRLeads)
				r.Get("/metrics", h.SDRMetrics)
				r.Get("/whatsapp/status", h.WhatsAppStatus)
				r.Get("/whatsapp/wait", h.WhatsAppWait)
			})

			// Billing calculator
			r.Route("/calc", func(r chi.Router) {
				r.Get("/plans", h.CalcPlans)
				r.Post("/estimate", h.CalcEstimate)
				r.Get("/summary", h.CalcSummary)
			})

			// Reporting service
			r.Route("/reports", func(r chi.Router) {
				r.Get("/", h.ReportExecutions)
				r.Get("/counts", h.ReportCounts)
				r.Post("/trigger", h.TriggerReport)
			})

			// Platform alerts
			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", h.ListAlerts)
				r.Post("/{alertID}/ack", h.AckAlert)
			})

			// Operator accounts (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/{userID}", h.GetUser)
				r.Put("/{userID}", h.UpdateUser)
			})
		})
	})

	// Client registry administration
	r.Route("/admin/clients", func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Use(RequireAdmin)

		r.Get("/", h.ListClients)
		r.Post("/", h.CreateClient)
		r.Get("/{clientID}", h.GetClient)
		r.Put("/{clientID}", h.UpdateClient)
		r.Delete("/{clientID}", h.DeleteClient)
	})

	// Dashboard SPA
	if staticDir != "" {
		r.NotFound(SPAHandler{StaticFS: os.DirFS(staticDir)}.ServeHTTP)
	}

	return r
}

// HealthCheck returns the health status
// @Summary Health Check
// @Description Checks if the service is up and running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "opsdash",
	})
}

// Helper functions

// requestRange resolves the period query parameters of a request.
func requestRange(r *http.Request) period.Range {
	q := r.URL.Query()
	return period.Resolve(q.Get("period"), q.Get("date_from"), q.Get("date_to"), time.Now())
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
