//go:build ignore

// Manual round trip against a live chat service:
//
//	go run test_final.go [base-url]
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/diogo/chatllm/internal/api"
	"github.com/diogo/chatllm/internal/config"
	"github.com/diogo/chatllm/internal/conversation"
)

func main() {
	fmt.Println("=== Live Round Trip ===")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config failed: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		cfg.BaseURL = os.Args[1]
	}

	client, err := api.NewClient(cfg.BaseURL,
		api.WithChatPath(cfg.ChatPath),
		api.WithModel(cfg.Model),
		api.WithResponsePath(cfg.ResponsePath),
		api.WithTimeout(2*time.Minute),
	)
	if err != nil {
		fmt.Printf("Client failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Endpoint: %s  Model: %s\n", client.ChatURL(), client.Model())

	conv := conversation.New(client)
	ctx := context.Background()

	for _, prompt := range []string{"My name is Ana. Reply with OK.", "What is my name?"} {
		start := time.Now()
		fmt.Printf("[%s] > %s\n", start.Format("15:04:05"), prompt)

		reply, err := conv.Send(ctx, prompt)
		if err != nil {
			fmt.Printf("Send rejected: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("[%s] < %s (%s)\n", time.Now().Format("15:04:05"), reply.Content, time.Since(start).Round(time.Millisecond))

		if reply.Failed {
			os.Exit(1)
		}
	}

	fmt.Printf("\nTranscript:\n%s", conversation.ExportMarkdown(conv.Snapshot()))
}
