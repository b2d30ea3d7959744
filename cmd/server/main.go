package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ganot/roomstage/internal/config"
	"github.com/ganot/roomstage/internal/domain/activity"
	"github.com/ganot/roomstage/internal/domain/asset"
	"github.com/ganot/roomstage/internal/domain/project"
	"github.com/ganot/roomstage/internal/filestore"
	"github.com/ganot/roomstage/internal/mcp"
	"github.com/ganot/roomstage/internal/sqlite"
	"github.com/ganot/roomstage/internal/thumbnail"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	catalog := asset.NewCatalog(asset.CatalogConfig{
		RoomsDir:   cfg.Storage.RoomsDir(),
		ObjectsDir: cfg.Storage.ObjectsDir(),
		BundleDir:  cfg.Storage.BundleDir,
		Extension:  cfg.Storage.Extension,
	}, logger)
	if err := catalog.EnsureDirectories(); err != nil {
		logger.Error("failed to create capture directories", "error", err)
		os.Exit(1)
	}

	store := filestore.New(cfg.Storage.ProjectsDir(), catalog.Extension(), logger)
	if err := store.EnsureRoot(); err != nil {
		logger.Error("failed to create projects directory", "error", err)
		os.Exit(1)
	}

	activityRepo := sqlite.NewActivityRepository(db)
	activitySvc := activity.NewService(activityRepo, logger)
	projectSvc := project.NewService(store, catalog, logger,
		project.WithActivity(activitySvc),
		project.WithThumbnails(thumbnail.NewGenerator()),
	)

	// A broken projects root is logged, not fatal: the server still serves
	// captures and can create new projects.
	if _, err := projectSvc.LoadAll(context.Background()); err != nil {
		logger.Error("failed to load projects", "error", err)
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: projectSvc,
			Captures: catalog,
			Activity: activitySvc,
		},
		Version: version,
		Logger:  logger,
	})

	// Branch based on transport mode
	if cfg.Transport.Mode == "stdio" {
		runStdioMode(logger, mcpServer)
	} else {
		runHTTPMode(logger, mcpServer, cfg.Server.Host, cfg.Server.Port)
	}
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	// Create stdio transport
	transport := &sdkmcp.StdioTransport{}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, transport); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mcp.NewHTTPHandler(mcpServer, mcp.DefaultSessionTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
