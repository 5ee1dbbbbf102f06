// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

// Package config loads application configuration from environment variables
// and an optional .env file.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// DBPath is the SQLite database file holding the local store.
	DBPath string `mapstructure:"db_path"`
	// RemoteEndpoint is the optional postgres:// URL of the remote replica.
	RemoteEndpoint string `mapstructure:"remote_endpoint"`
	// RemoteCredential overrides the endpoint URL's password when set.
	RemoteCredential string `mapstructure:"remote_credential"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the environment, prefixed GRACEPACK_
// (e.g. GRACEPACK_DB_PATH), after overloading .env if present.
func Load() (*Config, error) {
	// Ignore error if the file doesn't exist (e.g. production).
	_ = godotenv.Overload(".env")

	v := viper.New()
	v.SetEnvPrefix("gracepack")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_path", "gracepacking.db")
	v.SetDefault("remote_endpoint", "")
	v.SetDefault("remote_credential", "")
	v.SetDefault("log_level", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}
