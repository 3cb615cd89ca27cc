package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/okian/internxp/internal/adapters/http/api"
	"github.com/okian/internxp/internal/boardcli"
)

// Default configuration constants.
const (
	defaultLimit    = 20
	defaultTimeout  = 10 * time.Second
	issuedTokenTTL  = 5 * time.Minute
	defaultSubject  = "leaderboard-cli"
	tokenEnvVarName = "INTERNXP_TOKEN"
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		token      = flag.String("token", os.Getenv(tokenEnvVarName), "Bearer token")
		secret     = flag.String("secret", "", "Sign a short-lived token with this HS256 secret")
		subject    = flag.String("subject", defaultSubject, "Caller id for -secret or -dev")
		dev        = flag.Bool("dev", false, "Send the dev principal header instead of a token")
		department = flag.String("department", "all", "Department filter")
		period     = flag.String("period", "all-time", "all-time, weekly or monthly")
		scope      = flag.String("scope", "hired", "hired or active")
		limit      = flag.Int("limit", defaultLimit, "Maximum number of rows")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		boardcli.ShowHelp()
		return
	}

	cfg := &boardcli.Config{
		BaseURL:    *baseURL,
		Token:      *token,
		Department: *department,
		Period:     *period,
		Scope:      *scope,
		Limit:      *limit,
		Timeout:    *timeout,
	}
	switch {
	case *secret != "":
		t, err := api.NewAuthenticator(*secret).Issue(*subject, issuedTokenTTL)
		if err != nil {
			color.Red("Failed to sign token: %v", err)
			os.Exit(1)
		}
		cfg.Token = t
	case *dev:
		cfg.Token = ""
		cfg.Principal = *subject
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := boardcli.Run(ctx, cfg, os.Stdout); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
