package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/desertthunder/wereb/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if _, err := os.Stat(path); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlain("Set [catalog] base_url or WEREB_URL to the listing to browse.\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// --status lists migrations without applying them; --rollback reverts the latest one.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.Config()

	db := r.db
	if db == nil {
		r.logger.Info("initializing database", "path", config.Database.Path)

		var err error
		db, err = shared.NewDatabase(config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		defer db.Close()

		shared.ConfigureDatabase(db, config.Database)
	}

	switch {
	case cmd.Bool("status"):
		return r.printMigrations(db)
	case cmd.Bool("rollback"):
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return r.printMigrations(db)
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.printMigrations(db)
}

func (r *Runner) printMigrations(db *sql.DB) error {
	statuses, err := shared.Migrations(db)
	if err != nil {
		return err
	}

	for _, s := range statuses {
		mark := "✗"
		if s.Applied {
			mark = "✓"
		}
		if err := r.writePlain("%s %04d %s\n", mark, s.Version, s.Name); err != nil {
			return err
		}
	}
	return nil
}
