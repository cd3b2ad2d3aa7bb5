package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/perryfier/internal/assets"
	"github.com/ironsheep/perryfier/internal/config"
	"github.com/ironsheep/perryfier/internal/detection"
	"github.com/ironsheep/perryfier/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("perryfier %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Detector:   %s\n", detection.Backend)
			return
		case "--help", "-h", "help":
			fmt.Println("perryfier - puts a hat on whatever is in the latest photo")
			fmt.Println()
			fmt.Println("Usage: perryfier [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  PERRYFIER_LOG_LEVEL=debug          Enable debug logging")
			fmt.Println("  PERRYFIER_ASSET_SOURCE=embedded    embedded, dir, or archive")
			fmt.Println("  PERRYFIER_ASSET_PATH=<path>        Directory or zip for dir/archive sources")
			fmt.Println("  PERRYFIER_SPRITE=<name>            Sprite asset (default res/img/perryhat.png)")
			fmt.Println("  PERRYFIER_OUTPUT_DIR=<dir>         Write composed images here")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// Logging goes to stderr; stdout carries the protocol.
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	var debug *log.Logger
	if cfg.Debug() {
		debug = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
		debug.Printf("Perryfier v%s (built %s, commit %s, detector %s)", Version, BuildTime, GitCommit, detection.Backend)
	}

	loader, closeAssets, err := assets.Open(cfg.AssetSource, cfg.AssetPath)
	if err != nil {
		log.Fatalf("Asset error: %v", err)
	}
	defer closeAssets()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, loader, debug)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("Server error: %v", err)
		stop()
		closeAssets()
		os.Exit(1)
	}
}
