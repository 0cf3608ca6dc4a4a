// Command huurrag-mcp serves the retrieval tools over the Model Context
// Protocol on stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"huurrag/internal/config"
	"huurrag/internal/index"
	"huurrag/internal/mcp"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "huurrag.yaml", "path to YAML config file")
	showVer := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVer {
		fmt.Printf("%s %s\n", mcp.ServerName, version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", index.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", index.DriverName)
		return
	}

	// Log startup info to stderr (stdout reserved for MCP protocol)
	log.SetOutput(os.Stderr)
	log.Printf("%s v%s starting...", mcp.ServerName, version)
	log.Printf("Build Mode: %s, Driver: %s", index.BuildMode, index.DriverName)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}

	log.Println("Server stopped")
}
