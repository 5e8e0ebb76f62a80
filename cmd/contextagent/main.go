package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tuannvm/context-a2a/internal/agents"
	"github.com/tuannvm/context-a2a/internal/config"
	"github.com/tuannvm/context-a2a/internal/logging"
)

func main() {
	// Run the client example instead of the server when asked.
	if len(os.Args) > 1 && os.Args[1] == "client" {
		clientExample()
		return
	}

	cfg := config.NewConfig()
	cfg.AgentName = config.ContextAgentName
	cfg.AgentURL = fmt.Sprintf("http://%s:%d", cfg.ServerHost, cfg.ServerPort)

	log.Printf("ContextPipelineAgent configured with port: %d", cfg.ServerPort)

	agent := agents.NewContextAgent(cfg)

	fmt.Println("Starting ContextPipelineAgent server...")
	fmt.Printf("Server will listen on %s:%d\n", cfg.ServerHost, cfg.ServerPort)
	fmt.Println("To send a sample message, run: contextagent client")

	// Cancel on SIGINT or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := agent.StartServer(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	logging.Sync()
	log.Println("Server shutdown complete")
}
