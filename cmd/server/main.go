// Copyright 2026 The OpsDash Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsdash/opsdash/internal/audit"
	"github.com/opsdash/opsdash/internal/client"
	"github.com/opsdash/opsdash/internal/config"
	"github.com/opsdash/opsdash/internal/dashboard"
	"github.com/opsdash/opsdash/internal/investigate"
	"github.com/opsdash/opsdash/internal/observability/logger"
	"github.com/opsdash/opsdash/internal/observability/metrics"
	"github.com/opsdash/opsdash/internal/observability/tracing"
	"github.com/opsdash/opsdash/internal/store/postgres"
	transportHTTP "github.com/opsdash/opsdash/internal/transport/http"
	"github.com/opsdash/opsdash/internal/upstream"
	"github.com/opsdash/opsdash/internal/user"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting opsdash dashboard backend")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Initialize context
	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	_, err = metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Initialize database
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	clientRepo := postgres.NewClientRepository(db)

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := user.NewPasswordHasher()

	// Initialize services
	userService := user.NewService(userRepo, passwordHasher, auditLogger)
	clientService := client.NewService(clientRepo, auditLogger)

	// Initialize upstream clients
	timeout := cfg.Upstreams.Timeout
	leads := upstream.NewLeadsClient(upstream.Config{BaseURL: cfg.Upstreams.LeadsBaseURL, APIKey: cfg.Upstreams.LeadsAPIKey, Timeout: timeout})
	sdr := upstream.NewSDRClient(upstream.Config{BaseURL: cfg.Upstreams.SDRBaseURL, APIKey: cfg.Upstreams.SDRAPIKey, Timeout: timeout})
	calc := upstream.NewCalcClient(upstream.Config{BaseURL: cfg.Upstreams.CalcBaseURL, APIKey: cfg.Upstreams.CalcAPIKey, Timeout: timeout})
	reports := upstream.NewReportClient(upstream.Config{BaseURL: cfg.Upstreams.ReportBaseURL, APIKey: cfg.Upstreams.ReportAPIKey, Timeout: timeout})

	dashboardService := dashboard.NewService(leads, sdr, calc, reports, clientService)
	investigateService := investigate.NewService(leads)

	// Bootstrap admin account (ENV driven)
	bootstrapAdmin(ctx, userService)

	// Background dashboard refresh
	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	refresher := dashboard.NewRefresher(dashboardService, cfg.Refresh.DashboardInterval)
	go refresher.Run(refreshCtx)

	// Rate Limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		userService,
		clientService,
		dashboardService,
		investigateService,
		refresher,
		leads,
		sdr,
		calc,
		reports,
		auditLogger,
		transportHTTP.AuthConfig{
			JWTSecret: cfg.Auth.JWTSecret,
			TokenTTL:  cfg.Auth.TokenTTL,
		},
		cfg.Refresh.WhatsAppInterval,
	)

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter, cfg.Server.StaticDir)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	stopRefresh()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

// bootstrapAdmin creates the initial admin account when BOOTSTRAP_ADMIN_EMAIL
// and BOOTSTRAP_ADMIN_PASSWORD are set and the account doesn't exist yet.
func bootstrapAdmin(ctx context.Context, userService *user.Service) {
	email := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	u, err := userService.Create(ctx, email, "Administrator", user.RoleAdmin, password)
	if err != nil {
		// Usually means the account already exists; nothing to do.
		slog.Warn("admin bootstrap skipped", logger.Error(err), logger.Email(email))
		return
	}
	slog.Info("bootstrapped admin account", logger.UserID(u.ID), logger.Email(u.Email))
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying initial schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}
