package commands

import (
	"context"
	"net/http"
	"os"
	"time"

	"openkanban/internal/gateway"
	"openkanban/internal/printer"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	apiURL    string
	redisAddr string
	out       = printer.Default()
)

var rootCmd = &cobra.Command{
	Use:   "openkanban",
	Short: "OpenKanban - collaborative kanban boards addressed by name",
	Long: `OpenKanban opens a kanban board by its slug. Anyone who opens the same
slug sees the same board, and changes made by one viewer show up for
everyone else within a moment.

A board is only saved once its first task is added.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("API_URL", "http://localhost:8080"), "OpenKanban API base URL")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", envOr("REDIS_ADDR", "localhost:6379"), "Redis address used for live updates")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newGateway() gateway.Gateway {
	return gateway.NewHTTP(apiURL, &http.Client{Timeout: 15 * time.Second})
}

// newRedis returns a client for the live update channels. An unreachable
// server only costs live updates, so the error is reported as a warning.
func newRedis(ctx context.Context) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		out.Warning("Live updates unavailable: %v", err)
	}
	return rdb
}
