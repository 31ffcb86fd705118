package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	syncapp "github.com/opsdash/backend/internal/application/sync"
	"github.com/opsdash/backend/internal/infrastructure/bms"
	"github.com/opsdash/backend/internal/infrastructure/config"
	"github.com/opsdash/backend/internal/infrastructure/logger"
	"github.com/opsdash/backend/internal/infrastructure/persistence"
	"github.com/opsdash/backend/internal/infrastructure/scheduler"
	"github.com/opsdash/backend/internal/infrastructure/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting sync daemon",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("bms_url", cfg.BMS.BaseURL),
	)

	// Telemetry providers; no-ops unless enabled in configuration
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	// Database connection with a zap-backed GORM logger and query tracing
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:          cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing,
		LogFullSQL:       cfg.Telemetry.LogFullSQL,
		SlowQueryThresh:  cfg.Telemetry.SlowQueryThreshold,
		DBSystem:         "postgresql",
		WithoutVariables: !cfg.Telemetry.LogFullSQL,
	}, log)
	db, err := persistence.NewDatabaseWithTelemetry(&cfg.Database, gormLog, dbTracing)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if !cfg.Sync.Enabled {
		log.Warn("Sync is disabled in configuration, nothing to do")
		return
	}

	// Platform gateway and reconcilers
	gateway := bms.NewClient(cfg.BMS, log)
	orderSync := syncapp.NewOrderSyncService(db, gateway, log)
	receptionSync := syncapp.NewReceptionSyncService(db, gateway, log)
	supplierSync := syncapp.NewSupplierSyncService(db, gateway, log)

	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:  meterProvider.Meter("opsdash-sync"),
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		orderSync.SetBusinessMetrics(businessMetrics)
		receptionSync.SetBusinessMetrics(businessMetrics)
		supplierSync.SetBusinessMetrics(businessMetrics)
	}

	trigger := scheduler.NewSyncTrigger(
		scheduler.SyncTriggerConfig{
			Interval:         cfg.Sync.Interval,
			SupplierInterval: cfg.Sync.SupplierInterval,
		},
		orderSync,
		receptionSync,
		supplierSync,
		log,
	)

	if err := trigger.Start(context.Background()); err != nil {
		log.Fatal("Failed to start sync trigger", zap.Error(err))
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down sync daemon...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := trigger.Stop(ctx); err != nil {
		log.Error("Sync trigger did not stop cleanly", zap.Error(err))
	}

	if err := meterProvider.Shutdown(ctx); err != nil {
		log.Error("Meter provider did not shut down cleanly", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Error("Tracer provider did not shut down cleanly", zap.Error(err))
	}

	log.Info("Sync daemon exited gracefully")
}
