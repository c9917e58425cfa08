package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qms/backend/internal/application"
	"github.com/qms/backend/internal/infrastructure/circuit"
	"github.com/qms/backend/internal/infrastructure/config"
	"github.com/qms/backend/internal/infrastructure/event"
	"github.com/qms/backend/internal/infrastructure/logger"
	"github.com/qms/backend/internal/infrastructure/persistence"
	"github.com/qms/backend/internal/infrastructure/registry"
	"github.com/qms/backend/internal/infrastructure/telemetry"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"github.com/qms/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting QMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter("github.com/qms/backend")
	coreMetrics, err := telemetry.NewCoreMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create core metrics", zap.Error(err))
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, persistence.DatabaseOptions{
		Logger:   log,
		LogLevel: logger.GormLevel(cfg.Log.SQLLevel),
		Tracing:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	// Tenancy
	var store tenancy.TenantStore = tenancy.NewMemoryTenantStore()
	if cfg.Tenant.Store == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			_ = client.Close()
		}()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		store = tenancy.NewRedisTenantStore(client, "")
	}
	tenants := tenancy.NewManager(store, log, tenancy.WithMetrics(coreMetrics))

	// Core runtime and bounded contexts
	bus := event.NewDomainEventBus(log.Named("event"),
		event.WithHandlerTimeout(cfg.Event.HandlerTimeout),
		event.WithMetrics(coreMetrics),
	)
	services := registry.NewServiceRegistry(log.Named("registry"))
	if _, err := application.Wire(application.Runtime{
		DB:       db.DB,
		Tenants:  tenants,
		Bus:      bus,
		Services: services,
		Logger:   log,
	}); err != nil {
		log.Fatal("Failed to wire bounded contexts", zap.Error(err))
	}
	circuits := circuit.NewRegistry(log.Named("circuit"),
		circuit.WithMetrics(coreMetrics),
		circuit.WithDefaultOptions(circuit.Options{
			Threshold:    cfg.Circuit.Threshold,
			ResetTimeout: cfg.Circuit.ResetTimeout,
		}),
	)

	engine, err := router.New(router.Dependencies{
		Config:   cfg,
		Logger:   log,
		Meter:    meter,
		Tenants:  tenants,
		Services: services,
		Circuits: circuits,
		Database: db,
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFlush()
	if err := meterProvider.Shutdown(flushCtx); err != nil {
		log.Warn("Metrics flush failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(flushCtx); err != nil {
		log.Warn("Trace flush failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
