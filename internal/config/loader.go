package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables understood by Load.
const (
	EnvPrefix     = "INTERNXP_"
	EnvConfigFile = "INTERNXP_CONFIG"
	EnvDotenvFile = "INTERNXP_DOTENV"
	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file (INTERNXP_DOTENV, or ./.env when present), exported into the process env
//  3. YAML file if INTERNXP_CONFIG is set
//  4. env (prefix INTERNXP_)
func Load(_ context.Context) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, loadFailed(path, err)
		}
	}

	// INTERNXP_EVENT_QUEUE_SIZE -> event_queue_size; underscores are kept to match koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, loadFailed("env", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, loadFailed("unmarshal", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotenv never overrides variables already present in the environment.
func loadDotenv() error {
	path := os.Getenv(EnvDotenvFile)
	explicit := path != ""
	if !explicit {
		path = defaultDotenv
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return loadFailed(path, err)
	}
	return nil
}
