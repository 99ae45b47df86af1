package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "agrirent-backend/internal/api/grpc"
	httpapi "agrirent-backend/internal/api/http"
	"agrirent-backend/internal/cache"
	"agrirent-backend/internal/config"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/metrics"
	"agrirent-backend/internal/notification"
	"agrirent-backend/internal/report"
	"agrirent-backend/internal/repository/postgres"
	"agrirent-backend/internal/security"
	"agrirent-backend/internal/service"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AgriRent backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetHTTPAddress(), "grpc", cfg.GetGRPCAddress(), "timezone", cfg.Booking.Timezone)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.Migrate {
		if err := postgres.Migrate(context.Background(), db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		logger.Info("Database schema applied")
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Availability cache (optional)
	var availabilityCache cache.AvailabilityCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable, availability cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			availabilityCache = cache.NewAvailabilityCache(rdb, cfg.AvailabilityTTL())
			logger.Info("Availability cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.AvailabilityTTL())
		}
	}

	metrics.Register()

	// Notification channels
	dispatcher := notification.NewDispatcher(
		time.Duration(cfg.Notification.TimeoutSeconds)*time.Second,
		notification.BuildNotifiers(context.Background(), cfg)...,
	)

	// Initialize Security
	clock := func() time.Time { return time.Now().In(cfg.Location()) }
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())
	issuer := security.NewCredentialIssuer(cfg.Credentials.Secret)

	// Initialize Services
	availabilitySvc := service.NewAvailabilityService(store.AvailabilityRepository, store.EquipmentRepository, availabilityCache, clock, cfg.Booking.MaxWindowDays)
	equipmentSvc := service.NewEquipmentService(store.EquipmentRepository, store.OverrideRepository, availabilityCache)
	rentalSvc := service.NewRentalService(store.RentalRepository, store.EquipmentRepository, issuer, availabilityCache, dispatcher, clock)

	// HTTP API
	handler := httpapi.NewHandler(availabilitySvc, equipmentSvc, rentalSvc, report.NewRentalExporter())
	router := httpapi.NewRouter(
		handler,
		httpapi.NewAuthMiddleware(tokenManager),
		httpapi.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		cfg.Server.AllowedOrigins,
	)
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	var metricsServer *http.Server
	if cfg.Server.MetricsPort != 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort), Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			logger.Info("Metrics server listening", "address", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", "error", err)
			}
		}()
	}

	// gRPC API
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := api.NewServer(tokenManager, api.NewRentalHandler(availabilitySvc, rentalSvc))
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(ctx)
	}
	grpcServer.GracefulStop()
	dispatcher.Wait()
	logger.Info("Server stopped. Goodbye!")
}
