package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/discography/internal/formatter"
	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/repositories"
	"github.com/desertthunder/discography/internal/repositories/mongodb"
	"github.com/desertthunder/discography/internal/services"
	"github.com/desertthunder/discography/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	catalog    *models.Catalog
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	// Catalog skips opening the configured database.
	Catalog *models.Catalog
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		catalog:    opts.Catalog,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, configCommand, serveCommand, reconcileCommand, importCommand,
		statsCommand, listCommand, usersCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Catalog returns the catalog for the configured backend, opening it on first use.
func (r *Runner) Catalog(ctx context.Context) (*models.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	db := r.config.Database
	switch db.Driver {
	case shared.DriverSQLite:
		conn, err := shared.NewDatabase(db.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		shared.ConfigureDatabase(conn, db.MaxOpenConns, db.MaxIdleConns)
		if err := shared.RunMigrationsContext(ctx, conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		r.catalog = repositories.NewCatalog(conn)
	case shared.DriverMongo:
		conn, err := shared.NewMongoDatabase(ctx, db.URI, db.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := mongodb.EnsureIndexes(ctx, conn); err != nil {
			conn.Client().Disconnect(ctx)
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		r.catalog = mongodb.NewCatalog(conn)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedDriver, db.Driver)
	}

	r.logger.Debug("catalog opened", "driver", db.Driver)
	return r.catalog, nil
}

// Services builds the CRUD, statistics and auth services over the opened catalog.
func (r *Runner) Services(ctx context.Context) (*services.Services, error) {
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	sessions := services.NewSessions(r.config.Auth)
	provider := services.NewOAuthProvider(r.config.Identity, nil)
	auth := services.NewAuthService(catalog.Users, provider, sessions, r.logger)
	return services.New(catalog, r.config.Stats.LeastAlbumsLimit, auth, r.logger), nil
}

// Close releases the catalog backend if one was opened.
func (r *Runner) Close(ctx context.Context) {
	if r.catalog == nil || r.catalog.Backend == nil {
		return
	}
	if err := r.catalog.Backend.Close(ctx); err != nil {
		r.logger.Warn("failed to close catalog", "error", err)
	}
	r.catalog = nil
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	output = append(output, '\n')
	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeOutput sends rendered data to path, or to the runner's output when path is empty.
func (r *Runner) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := formatter.WriteFile(path, data); err != nil {
		return err
	}
	r.logger.Info("output written", "path", path)
	return nil
}
