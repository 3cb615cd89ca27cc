package boardcli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Run fetches the leaderboard and renders it to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	entries, err := NewClient(cfg).Leaderboard(ctx)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	Render(out, title(cfg), entries)
	return nil
}

func title(cfg *Config) string {
	parts := []string{"Leaderboard"}
	if cfg.Department != "" && !strings.EqualFold(cfg.Department, "all") {
		parts = append(parts, cfg.Department)
	}
	if cfg.Period != "" {
		parts = append(parts, cfg.Period)
	}
	if cfg.Scope != "" {
		parts = append(parts, cfg.Scope)
	}
	return strings.Join(parts, " · ")
}

// ShowHelp prints usage information for the leaderboard tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`InternXP Leaderboard
====================

Prints the ranked intern leaderboard as a table.

Usage:
  go run ./cmd/leaderboard [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -token string
        Bearer token (default $INTERNXP_TOKEN)
  -secret string
        Sign a short-lived token with this HS256 secret instead of -token
  -subject string
        Caller id used with -secret or as the dev principal (default "leaderboard-cli")
  -dev
        Send the X-Local-Dev-Principal header instead of a token
  -department string
        Department filter (default "all")
  -period string
        all-time, weekly or monthly (default "all-time")
  -scope string
        hired or active (default "hired")
  -limit int
        Maximum number of rows (default 20)
  -timeout duration
        HTTP request timeout (default 10s)
  -help
        Show this help message

Examples:
  go run ./cmd/leaderboard -secret "$INTERNXP_JWT_SECRET" -period weekly
  go run ./cmd/leaderboard -dev -scope active -department Engineering
`)
}
