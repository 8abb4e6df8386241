package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/discography/internal/repositories/mongodb"
	"github.com/desertthunder/discography/internal/shared"
)

// SetupDatabase writes a config file when none exists, then prepares the configured backend:
// migrations for SQLite, indexes for MongoDB.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
		config = shared.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return err
	}

	switch config.Database.Driver {
	case shared.DriverMongo:
		r.logger.Info("connecting to mongo", "database", config.Database.Name)
		db, err := shared.NewMongoDatabase(ctx, config.Database.URI, config.Database.Name)
		if err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		defer db.Client().Disconnect(ctx)

		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
		r.logger.Infof("setup complete for mongo database: %v", config.Database.Name)
		return nil

	default:
		r.logger.Info("initializing database", "path", config.Database.Path)
		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		defer db.Close()

		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

		r.logger.Info("running database migrations")
		if err := shared.RunMigrationsContext(ctx, db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.logger.Infof("setup complete for database: %v", config.Database.Path)
		return nil
	}
}

// SetupStatus prints each migration with the time it was applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.sqliteDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	statuses, err := shared.MigrationsStatus(db)
	if err != nil {
		return err
	}

	for _, s := range statuses {
		applied := "pending"
		if s.AppliedAt != nil {
			applied = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		r.writePlain("%04d  %-40s %s\n", s.Version, s.Name, applied)
	}
	return nil
}

// SetupRollback reverts the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.sqliteDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	r.logger.Info("rolled back latest migration", "path", r.config.Database.Path)
	return nil
}

func (r *Runner) sqliteDatabase() (*sql.DB, error) {
	if r.config.Database.Driver != shared.DriverSQLite {
		return nil, fmt.Errorf("%w: migrations apply to the sqlite driver only, configured %q",
			shared.ErrUnsupportedDriver, r.config.Database.Driver)
	}
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
