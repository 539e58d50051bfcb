package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sensor-spy/backend/internal/api"
	"github.com/sensor-spy/backend/internal/archive"
	"github.com/sensor-spy/backend/internal/capture"
	"github.com/sensor-spy/backend/internal/codec"
	"github.com/sensor-spy/backend/internal/config"
	"github.com/sensor-spy/backend/internal/logging"
	"github.com/sensor-spy/backend/internal/notify"
	"github.com/sensor-spy/backend/internal/records"
	"github.com/sensor-spy/backend/internal/sensors"
	"github.com/sensor-spy/backend/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "SensorSpy.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(nil, cfg.Advanced.LogLevel)
	api.ShowErrorDetails = strings.EqualFold(cfg.Advanced.LogLevel, "debug")

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal().Err(err).Msg("failed to create directories")
	}

	state, err := storage.ParseMediumState(cfg.Storage.MediumState)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid storage medium state")
	}
	medium := storage.NewStaticMedium(state)

	fileStore, err := storage.NewLocalStore(cfg.Storage.CacheDirectory, cfg.Storage.FilesDirectory, medium)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	notifier := notify.Multi{notify.NewLogNotifier(logging.Component(logger, "notify"))}
	gateway := records.NewGateway(fileStore, notifier, logging.Component(logger, "records"))

	// Sensor catalog; a missing catalog leaves the device without sensors
	catalog := &sensors.Catalog{DeviceModel: cfg.Capture.DeviceModel}
	if parsed, err := sensors.ParseCatalog(cfg.Capture.SensorCatalog); err != nil {
		logger.Warn().Err(err).Str("path", cfg.Capture.SensorCatalog).Msg("sensor catalog not loaded")
	} else {
		catalog = parsed
		if catalog.DeviceModel == "" {
			catalog.DeviceModel = cfg.Capture.DeviceModel
		}
	}
	spy := sensors.NewSpy(catalog)

	if cfg.Capture.WriteSensorInfoOnStart {
		if _, err := gateway.Save(sensors.InfoFileName(catalog.DeviceModel), storage.KindCSV, spy.InfoListing()); err != nil {
			logger.Warn().Err(err).Msg("sensor listing not written")
		}
	}

	clk := clock.New()
	captures := capture.NewManager(codec.New(clk), gateway, clk, logging.Component(logger, "capture"))

	deps := &api.Dependencies{
		Gateway:     gateway,
		Spy:         spy,
		Captures:    captures,
		Medium:      medium,
		DeviceModel: catalog.DeviceModel,
		Version:     Version,
	}

	if cfg.Capture.EnableArchive {
		arch, err := archive.Open(cfg.Storage.ArchiveDirectory, archive.Options{
			Threads:     cfg.Advanced.DuckDBThreads,
			MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
		}, logging.Component(logger, "archive"))
		if err != nil {
			logger.Error().Err(err).Msg("sample archive disabled")
		} else {
			defer arch.Close()
			captures.SetArchiver(arch)
			deps.Archive = arch
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start background session cleanup
	cleanupInterval := time.Duration(cfg.Capture.CleanupIntervalMinutes) * time.Minute
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				captures.CleanupOldSessions(time.Duration(cfg.Capture.SessionTimeoutMinutes) * time.Minute)
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareOptions{
		Logger:         logging.Component(logger, "http"),
		RequestLogging: cfg.Advanced.EnableRequestLogging,
	})

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout:      time.Duration(cfg.Server.ReadTimeout) * time.Second,
		ErrorMessage: "Request timeout - query took too long",
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, api.NewHandlers(deps))

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Sensor Spy Server                               ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Device:     %-45s║\n", catalog.DeviceModel)
	fmt.Printf("║  Sensors:    %-45d║\n", len(spy.Sensors()))
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Storage:   %-46s║\n", string(state))
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.Storage.DataDirectory)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
