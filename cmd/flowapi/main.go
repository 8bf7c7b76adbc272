// Command flowapi serves the diagram persistence API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ha1tch/flowchart-toolkit/pkg/api"
	"github.com/ha1tch/flowchart-toolkit/pkg/config"
	"github.com/ha1tch/flowchart-toolkit/pkg/logging"
	"github.com/ha1tch/flowchart-toolkit/pkg/store"
)

var (
	envfile   = flag.String("env", ".env", "Optional env file with FLOWAPI_* settings")
	addr      = flag.String("addr", "", "Listen address (overrides FLOWAPI_ADDR)")
	dataDir   = flag.String("data", "", "Diagram directory for the file store (overrides FLOWAPI_DATA_DIR)")
	storeKind = flag.String("store", "", "Store kind: file or memory (overrides FLOWAPI_STORE)")
	renderSVG = flag.Bool("render-svg", false, "Render export-svg from jsonData when no SVG is stored")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*envfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	s, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}

	diagrams := api.NewDiagramApi(s)
	diagrams.RenderSVG = cfg.RenderSVG
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.AccessLog(api.CORS(cfg.AllowedOrigin, diagrams.Handler())),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Serving diagram API", "addr", cfg.Addr, "store", cfg.Store, "origin", cfg.AllowedOrigin)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
	slog.Info("Stopped")
}

func applyFlags(cfg *config.Config) {
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *storeKind != "" {
		cfg.Store = *storeKind
	}
	if *renderSVG {
		cfg.RenderSVG = true
	}
}

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.Store == config.StoreMemory {
		return store.NewMemoryStore(), nil
	}
	return store.NewFileStore(cfg.DataDir)
}
