// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-auth/migrations"
)

// migrateCmd applies the embedded schema: users, roles, permissions and refresh tokens
var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down [version]|status|check]",
	Short: "Run database migrations",
	Long:  `Run the embedded database migrations, the DSN flag falls back to the DSN environment variable`,
	Args:  customValidArgs(),
	RunE:  runMigrate,
}

func customValidArgs() cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.RangeArgs(0, 2)(cmd, args); err != nil {
			return err
		}

		if len(args) == 0 {
			return nil
		}

		switch args[0] {
		case "up", "down", "status", "check":
		default:
			return fmt.Errorf("invalid first argument: %q", args[0])
		}

		if len(args) == 2 {
			if args[0] != "down" {
				return fmt.Errorf("invalid argument combination: %q", args)
			}

			if v, err := strconv.Atoi(args[1]); err != nil || v < 0 {
				return fmt.Errorf("invalid version number: %q", args[1])
			}
		}

		return nil
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	target := int64(-1)
	if len(args) > 1 {
		v, _ := strconv.Atoi(args[1])
		target = int64(v)
	}

	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		dsn = os.Getenv("DSN")
	}
	if dsn == "" {
		return fmt.Errorf("no DSN provided, use --dsn or the DSN environment variable")
	}

	format, _ := cmd.Flags().GetString("format")

	db, err := openMigrationDB(cmd.Context(), dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []goose.ProviderOption
	if format == "json" {
		opts = append(opts, goose.WithLogger(goose.NopLogger()))
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.EmbedMigrations, opts...)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	m := &migrator{provider: provider, out: cmd.OutOrStdout(), json: format == "json"}
	ctx := cmd.Context()

	switch command {
	case "down":
		return m.down(ctx, target)
	case "status":
		return m.status(ctx)
	case "check":
		return m.check(ctx)
	default:
		return m.up(ctx)
	}
}

func openMigrationDB(ctx context.Context, dsn string) (*sql.DB, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("DSN validation failed: %w", err)
	}

	db := stdlib.OpenDB(*config)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB connection failed: %w", err)
	}

	return db, nil
}

type migrator struct {
	provider *goose.Provider
	out      io.Writer
	json     bool
}

func (m *migrator) report(text string, v interface{}) error {
	if m.json {
		return json.NewEncoder(m.out).Encode(v)
	}

	_, err := fmt.Fprintln(m.out, text)
	return err
}

func (m *migrator) up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return err
	}

	if results == nil {
		results = []*goose.MigrationResult{}
	}

	return m.report(fmt.Sprintf("applied %d migrations", len(results)), map[string]interface{}{"applied": results})
}

// down rolls back one migration, or every migration above target when it is set
func (m *migrator) down(ctx context.Context, target int64) error {
	var results []*goose.MigrationResult

	if target < 0 {
		result, err := m.provider.Down(ctx)
		if err != nil {
			return err
		}
		results = append(results, result)
	} else {
		var err error
		if results, err = m.provider.DownTo(ctx, target); err != nil {
			return err
		}
	}

	if results == nil {
		results = []*goose.MigrationResult{}
	}

	return m.report(fmt.Sprintf("rolled back %d migrations", len(results)), map[string]interface{}{"applied": results})
}

func (m *migrator) status(ctx context.Context) error {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return err
	}

	if m.json {
		return json.NewEncoder(m.out).Encode(statuses)
	}

	fmt.Fprintf(m.out, "%-26s %s\n", "APPLIED AT", "MIGRATION")
	for _, s := range statuses {
		appliedAt := "pending"
		if s.State == goose.StateApplied {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(m.out, "%-26s %s\n", appliedAt, s.Source.Path)
	}

	return nil
}

// check fails when migrations are pending, so it can gate a deployment
func (m *migrator) check(ctx context.Context) error {
	pending, err := m.provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}

	current, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if pending {
		if m.json {
			_ = json.NewEncoder(m.out).Encode(map[string]interface{}{"status": "pending", "version": current})
		}
		return fmt.Errorf("migrations are pending: current version %d", current)
	}

	return m.report(fmt.Sprintf("database is up to date (version %d)", current), map[string]interface{}{"status": "ok", "version": current})
}

func init() {
	migrateCmd.Flags().String("dsn", "", "PostgreSQL DSN connection string")
	migrateCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")

	rootCmd.AddCommand(migrateCmd)
}
