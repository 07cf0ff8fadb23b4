package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/zfogg/aihub/backend/internal/config"
	"github.com/zfogg/aihub/backend/internal/kernel"
	"github.com/zfogg/aihub/backend/internal/logger"
)

var (
	apiURL string = "http://localhost:8787"
	output string = "text" // "text" or "json"
)

var rootCmd = &cobra.Command{
	Use:   "aihub",
	Short: "AI Hub CLI - operate the AI Hub catalog",
	Long: `AI Hub CLI runs operator tasks against the catalog database
(migrations, seeding, statistics, admin accounts, search index) and queries
a running API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(recomputeStatsCmd)
	rootCmd.AddCommand(promoteAdminCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(searchCmd)
}

// withKernel loads configuration, boots the services and runs fn against them
func withKernel(ctx context.Context, fn func(*kernel.Kernel) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		return err
	}
	defer logger.Close()

	k, err := kernel.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = k.Cleanup(context.Background())
	}()
	return fn(k)
}

// printResult writes v as JSON with --output json, or text otherwise
func printResult(v interface{}, text string) error {
	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Println(text)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
