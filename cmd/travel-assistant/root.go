package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	travelassistant "github.com/LamiKaan/travel-assistant"
	"github.com/LamiKaan/travel-assistant/internal/config"
	"github.com/LamiKaan/travel-assistant/internal/logging"
	"github.com/LamiKaan/travel-assistant/internal/reason"
	"github.com/LamiKaan/travel-assistant/pkg/adapters/redis"
	"github.com/LamiKaan/travel-assistant/pkg/ports"
)

var rootCmd = &cobra.Command{
	Use:   "travel-assistant",
	Short: "Travel assistant orchestration core",
	Long:  `An assistant that routes travel requests to specialized booking workflows with durable, resumable sessions.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML configuration file")
}

// loadConfig resolves the config file from the persistent flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level)
}

// buildOptions assembles the assistant options shared by chat and serve.
func buildOptions(cfg config.Config, logger *slog.Logger) []travelassistant.Option {
	opts := []travelassistant.Option{travelassistant.WithLogger(logger)}
	if cfg.Redis.Addr != "" {
		var storeOpts []redis.Option
		if cfg.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(cfg.Redis.TTL))
		}
		opts = append(opts, travelassistant.WithStore(
			redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...),
		))
	}
	return opts
}

func newReasoner(cfg config.Config, logger *slog.Logger) (ports.Reasoner, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("an OpenAI API key is required (set openai.api_key or OPENAI_API_KEY)")
	}
	reasonOpts := []reason.Option{reason.WithLogger(logger)}
	if cfg.OpenAI.Model != "" {
		reasonOpts = append(reasonOpts, reason.WithModel(cfg.OpenAI.Model))
	}
	return reason.New(cfg.OpenAI.APIKey, reasonOpts...), nil
}
