package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ovenctrl/internal/core/domain"
	"ovenctrl/internal/core/services"
	httphandlers "ovenctrl/internal/handlers/http"
	"ovenctrl/internal/infrastructure/middleware"
	"ovenctrl/internal/infrastructure/monitoring"
	"ovenctrl/pkg/config"
	"ovenctrl/pkg/logger"
	"ovenctrl/pkg/tracing"
	"ovenctrl/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

func main() {
	startTime := time.Now()

	flagSet := pflag.NewFlagSet("ovenctrl", pflag.ContinueOnError)
	configPath := flagSet.StringP("config", "c", "", "path to the configuration file (yaml, toml, json or jsonc)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// The config path may also be given positionally: ovenctrl config.yaml
	path := *configPath
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ovenctrl: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "ovenctrl",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Both tables are fixed for the lifetime of the process.
	table := domain.NewAuthorizationTableFromMaps(cfg.Streamers, cfg.AllowedStreams)
	rooms := domain.NewRoomDirectory(cfg.Rooms)

	admissionService := services.NewAdmissionService(table)
	joinService := services.NewJoinService(rooms, cfg.ExternalHost, cfg.ExternalTLS)

	collector := monitoring.NewPrometheusCollector(prometheus.DefaultRegisterer)
	collector.SetTableSize(table.StreamerCount(), rooms.Len())

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("configuration", func(ctx context.Context) (bool, error) {
		if table.StreamerCount() == 0 && rooms.Len() == 0 {
			return false, errors.New("no streamers or rooms configured")
		}
		return true, nil
	}, time.Second)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(log),
		middleware.RequestIDMiddleware(),
		middleware.TracingMiddleware(),
		middleware.AccessLogMiddleware(logger.NewContextLogger(zapLogger), "/health", "/ready", "/metrics"),
		middleware.ErrorHandlerMiddleware(log),
	)

	if err := httphandlers.LoadTemplates(router); err != nil {
		log.Fatalw("failed to load templates", "error", err)
	}

	admissionHandler := httphandlers.NewAdmissionHandler(admissionService, collector, logger.NewContextLogger(zapLogger.Named("admission")))
	admissionHandler.SetupRoutes(router)

	joinHandler := httphandlers.NewJoinHandler(joinService, collector, log.Named("join"))
	joinHandler.SetupRoutes(router)

	router.NoRoute(middleware.NotFoundHandler())

	if cfg.Web.AssetsDir != "" {
		router.Static("/dist", cfg.Web.AssetsDir)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    utils.FormatDuration(time.Since(startTime)),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("Starting oven-ctrl",
			"address", cfg.Server.Address,
			"streamers", table.StreamerCount(),
			"rooms", rooms.Len(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error flushing traces", "error", err)
	}

	log.Info("oven-ctrl stopped")
}
