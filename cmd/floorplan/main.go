package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vbonduro/floorplan/internal/canvas"
	"github.com/vbonduro/floorplan/internal/config"
	"github.com/vbonduro/floorplan/internal/db"
	"github.com/vbonduro/floorplan/internal/floorplan"
	"github.com/vbonduro/floorplan/internal/layoutfile"
	"github.com/vbonduro/floorplan/internal/logging"
	"github.com/vbonduro/floorplan/internal/render"
	"github.com/vbonduro/floorplan/internal/service"
	"github.com/vbonduro/floorplan/internal/store"
	"github.com/vbonduro/floorplan/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	gateway, err := newGateway(cfg, store.NewLayoutStore(database), logger)
	if err != nil {
		logger.Error("failed to initialize layout store", "error", err)
		return
	}

	palette := render.DefaultPalette()
	if cfg.PaletteFile != "" {
		if palette, err = render.LoadPaletteFile(cfg.PaletteFile); err != nil {
			logger.Error("failed to load palette", "path", cfg.PaletteFile, "error", err)
			return
		}
		logger.Info("loaded palette", "path", cfg.PaletteFile)
	}

	areaService := service.NewAreaService(store.NewAreaStore(database), gateway, service.Options{
		Palette: palette,
		Placement: floorplan.Placement{
			ClampToCanvas: cfg.PlacementClamp,
			RejectOverlap: cfg.PlacementRejectOverlap,
		},
		DefaultCanvas: canvas.NewModel(cfg.CanvasWidth, cfg.CanvasHeight),
	}, logger)

	server := web.NewServer(areaService, logger)
	srv := server.Handler(cfg.ListenAddr)

	go func() {
		logger.Info("starting server", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := areaService.SaveAll(ctx); err != nil {
		logger.Error("failed to save open floor plans", "error", err)
	}
}

func newGateway(cfg *config.Config, sqlStore *store.LayoutStore, logger *slog.Logger) (floorplan.Gateway, error) {
	switch cfg.LayoutBackend {
	case "file":
		logger.Info("using file layout backend", "path", cfg.LayoutPath)
		files, err := layoutfile.NewFileStore(cfg.LayoutPath)
		if err != nil {
			return nil, err
		}
		return files, nil
	default:
		logger.Info("using sqlite layout backend")
		return sqlStore, nil
	}
}
