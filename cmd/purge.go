// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canonical/tenant-auth/internal/logging"
	"github.com/canonical/tenant-auth/internal/monitoring"
	"github.com/canonical/tenant-auth/internal/storage"
	"github.com/canonical/tenant-auth/internal/tracing"
	"github.com/canonical/tenant-auth/pkg/session"
)

var purgeCmd = &cobra.Command{
	Use:   "purge-tokens",
	Short: "Delete expired refresh token records",
	Long:  `Run a single sweep of the refresh token table, removing every record past its expiry`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := loadSpecs()
		if err != nil {
			return err
		}

		logger := logging.NewLogger(specs.LogLevel)
		defer logger.Sync()

		tracer := tracing.NewNoopTracer()
		monitor := monitoring.NewNoopMonitor("tenant-auth", logger)

		dbClient, err := newDBClient(specs, tracer, monitor, logger)
		if err != nil {
			return fmt.Errorf("failed to create database client: %v", err)
		}
		defer dbClient.Close()

		sweeper := session.NewSweeper(storage.NewStorage(dbClient, tracer, monitor, logger), 0, tracer, monitor, logger)

		purged, err := sweeper.Sweep(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired refresh tokens\n", purged)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}
