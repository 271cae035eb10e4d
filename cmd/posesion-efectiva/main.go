package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/posesion-efectiva/internal/config"
	"github.com/a3tai/posesion-efectiva/internal/drafts"
	"github.com/a3tai/posesion-efectiva/internal/httpapi"
	"github.com/a3tai/posesion-efectiva/internal/mcp"
	"github.com/a3tai/posesion-efectiva/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// runner is a surface that serves until its context is cancelled
type runner interface {
	Run(ctx context.Context) error
}

// setupLogging configures logging based on the server mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// stdout carries the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	} else {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// newService builds the document service and the draft store from cfg
func newService(cfg *config.Config) (*pdf.Service, *drafts.Store, error) {
	schema, err := cfg.Schema()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load form schema: %w", err)
	}
	service, err := pdf.NewService(pdf.Options{
		TemplatePath: cfg.TemplatePath,
		Schema:       schema,
		Strategy:     cfg.Strategy(),
		MaxFileSize:  cfg.MaxFileSize,
		DebugMode:    cfg.IsDebug(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create document service: %w", err)
	}
	store, err := drafts.NewStore(cfg.DraftsDirectory, cfg.IsDebug())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open draft store: %w", err)
	}
	return service, store, nil
}

// newRunner selects the surface for the configured mode
func newRunner(cfg *config.Config, service *pdf.Service, store *drafts.Store) (runner, error) {
	if cfg.IsServerMode() {
		return httpapi.NewServer(cfg, service, store)
	}
	return mcp.NewServer(cfg, service, store)
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server runner) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, server runner) {
	// the parent process controls our lifecycle; we exit when stdin closes
	if err := server.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to prepare directories: %v", err)
	}
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	service, store, err := newService(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	server, err := newRunner(cfg, service, store)
	if err != nil {
		log.Fatalf("Failed to create %s server: %v", cfg.Mode, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Posesión Efectiva\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
