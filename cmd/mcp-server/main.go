package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/config"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/mcp"
)

func main() {
	cfg := config.LoadEnvConfig()

	server, err := mcp.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, gracefully shutting down MCP server...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("MCP server failed: %v", err)
	}

	log.Println("Nexonco MCP server stopped")
}
