package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/tuannvm/context-a2a/internal/common"
	"github.com/tuannvm/context-a2a/internal/config"
	"github.com/tuannvm/context-a2a/internal/models"
)

// clientExample sends one message-available task to a running ContextAgent
// and prints the processed result.
func clientExample() {
	cfg := config.NewConfig()
	targetURL := fmt.Sprintf("http://%s:%d", cfg.ServerHost, cfg.ServerPort)

	a2aClient, err := common.SetupA2AClient(cfg, targetURL)
	if err != nil {
		log.Fatalf("Failed to create A2A client: %v", err)
	}

	task := models.MessageAvailableTask{
		MessageID: "example-1",
		Text:      "Fix issue #123 in acme/widgets, context in PROJ-456",
		Intent:    "diagnose the bug",
	}
	payload, err := json.Marshal(task)
	if err != nil {
		log.Fatalf("Failed to marshal task payload: %v", err)
	}

	fmt.Println("Sending message-available task to the ContextPipelineAgent...")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	response, err := common.SendTask(ctx, a2aClient, protocol.SendTaskParams{
		ID: "example-task-1",
		Message: protocol.Message{
			Role:  protocol.MessageRoleUser,
			Parts: []protocol.Part{protocol.NewTextPart(string(payload))},
		},
	})
	if err != nil {
		log.Fatalf("Failed to send task: %v", err)
	}

	for _, part := range response.Parts {
		var text string
		switch v := part.(type) {
		case protocol.TextPart:
			text = v.Text
		case *protocol.TextPart:
			text = v.Text
		default:
			continue
		}

		var processed models.ContextProcessedTask
		if err := json.Unmarshal([]byte(text), &processed); err == nil {
			fmt.Printf("Summary: %s\n", processed.Summary)
			fmt.Printf("References: %d, planned tasks: %d\n",
				len(processed.Parsed.References), len(processed.Tasks))
			continue
		}
		fmt.Printf("Response: %s\n", text)
	}
}
