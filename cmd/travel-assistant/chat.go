package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	travelassistant "github.com/LamiKaan/travel-assistant"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long:  `Runs the assistant as an interactive terminal conversation. The session is persisted after every turn, so a session ID can be reused to resume where you left off.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cfg)

		reasoner, err := newReasoner(cfg, logger)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		assistant, err := travelassistant.New(reasoner, buildOptions(cfg, logger)...)
		if err != nil {
			fmt.Printf("Error initializing assistant: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		sessionID, _ := cmd.Flags().GetString("session")
		sess, err := assistant.Start(ctx, sessionID, cfg.Traveler.ToDomain())
		if err != nil {
			fmt.Printf("Error starting session: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("--- Travel Assistant %s (session %s) ---\n", travelassistant.Version, sess.ID)
		fmt.Println("Type 'exit' to leave. Your session is saved between runs.")

		reader := bufio.NewReader(os.Stdin)
		for {
			fmt.Print("> ")
			line, err := reader.ReadString('\n')
			if err != nil {
				fmt.Println("\nBye!")
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if text == "exit" || text == "quit" {
				fmt.Println("Bye!")
				return
			}

			replies, err := assistant.Send(ctx, sess.ID, text)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			for _, msg := range replies {
				fmt.Println(msg.Content)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume (empty starts a new session)")
}
