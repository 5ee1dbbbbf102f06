// Copyright 2025 Albin Suresh
// SPDX-License-Identifier: Apache-2.0

// Package cmd wires the packing-bill engine into a cobra command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Albinsuresh2510/gracepackingai/billstore"
	"github.com/Albinsuresh2510/gracepackingai/billsync"
	"github.com/Albinsuresh2510/gracepackingai/internal/config"
	"github.com/Albinsuresh2510/gracepackingai/remotepg"
)

// RootCmd is the top-level gracepacking command.
var RootCmd = &cobra.Command{
	Use:   "gracepacking",
	Short: "Offline-first packing bill tracker",
	Long: `Tracks packing bills through a pending/packed lifecycle in a local
SQLite store, optionally mirrored to a remote Postgres replica for
multi-device access. All commands work offline; a configured remote is
reconciled with last-writer-wins on demand or at startup.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	store   *billstore.Store
	service *billsync.Service
	logger  *slog.Logger
}

// newApp loads configuration, opens the local store and reconnects the
// remote from persisted configuration. The caller must Close it.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel)

	store, err := billstore.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	remote := remotepg.NewClient(logger)
	service := billsync.NewService(store, remote, logger)
	if err := service.Start(cmd.Context()); err != nil {
		logger.Warn("startup reconciliation skipped", "error", err)
	}

	if !service.RemoteConnected() {
		fmt.Fprintln(cmd.ErrOrStderr(), "offline: changes stay local until a remote is connected")
	}

	return &app{cfg: cfg, store: store, service: service, logger: logger}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store failed", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func printRecords(cmd *cobra.Command, records []billsync.Record) {
	for _, r := range records {
		status := " "
		if r.Status == billsync.StatusPacked {
			status = "x"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s  %-24s inv=%-12s boxes=%d  %s\n",
			status, r.EntryDate, r.CustomerName, r.InvoiceNo, r.BoxCount, r.ID)
	}
}
