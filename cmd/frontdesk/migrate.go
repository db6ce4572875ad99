package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/database"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	// withMigrator opens a database/sql connection, which golang-migrate
	// requires, and runs fn against it
	withMigrator := func(cmd *cobra.Command, fn func(*database.Migrator) error) error {
		cfg, logger, err := load()
		if err != nil {
			return err
		}

		db, err := database.OpenSQL(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		migrator, err := database.NewMigrator(db, cfg.DatabaseName, logger)
		if err != nil {
			return fmt.Errorf("failed to create migrator: %w", err)
		}
		defer func() { _ = migrator.Close() }()

		return fn(migrator)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m *database.Migrator) error {
					if err := m.Up(); err != nil {
						return fmt.Errorf("migration up failed: %w", err)
					}
					cmd.Println("Migrations completed successfully")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Roll back the last N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("invalid step count %q: %w", args[0], err)
					}
					if err := requirePositive(n, "step count"); err != nil {
						return err
					}
					steps = n
				}

				return withMigrator(cmd, func(m *database.Migrator) error {
					if err := m.Down(steps); err != nil {
						return fmt.Errorf("migration down failed: %w", err)
					}
					cmd.Printf("Rolled back %d migration(s)\n", steps)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m *database.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return fmt.Errorf("failed to get version: %w", err)
					}
					if dirty {
						cmd.Printf("Current version: %d (DIRTY - migration incomplete)\n", version)
					} else {
						cmd.Printf("Current version: %d\n", version)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force N",
			Short: "Mark the schema as version N without running migrations",
			Long: `Mark the schema as version N and clear the dirty flag. Use after fixing
a migration that failed halfway.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}

				return withMigrator(cmd, func(m *database.Migrator) error {
					if err := m.Force(version); err != nil {
						return fmt.Errorf("force migration failed: %w", err)
					}
					cmd.Printf("Forced version %d\n", version)
					return nil
				})
			},
		},
	)

	return cmd
}
