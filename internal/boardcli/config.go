package boardcli

import (
	"errors"
	"time"
)

// Config holds the leaderboard tool settings.
type Config struct {
	BaseURL    string        // Base URL of the service
	Token      string        // Bearer token sent with every request
	Principal  string        // X-Local-Dev-Principal value when no token is set
	Department string        // Department filter, "all" for every department
	Period     string        // all-time, weekly or monthly
	Scope      string        // hired or active
	Limit      int           // Maximum number of rows
	Timeout    time.Duration // HTTP request timeout
}

// Errors returned by the tool.
var (
	ErrNoCredentials = errors.New("a token or a dev principal is required")
	ErrBadStatus     = errors.New("unexpected response status")
)

// Validate checks that the tool can authenticate.
func (c *Config) Validate() error {
	if c.Token == "" && c.Principal == "" {
		return ErrNoCredentials
	}
	return nil
}
