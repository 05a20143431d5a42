// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Command seed fills the configured object store with a synthetic
// monitoring dataset and, optionally, a history of generated reports.
//
//	go run ./cmd/seed --rows 20000 --start 2024-01-01 --sample-reports 10
//
// Storage settings come from the same configuration as the server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/tomtom215/chatstat/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		logging.Error().Err(err).Msg("Seed failed")
		os.Exit(1)
	}
}
