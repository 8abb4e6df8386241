package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/services"
	"github.com/desertthunder/discography/internal/shared"
	tu "github.com/desertthunder/discography/internal/testing"
)

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  shared.DefaultConfig(),
		Logger:  log.New(io.Discard),
		Output:  output,
		Catalog: tu.NewCatalog(t),
	})
	return runner, output
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "disco", Commands: r.register(), Writer: io.Discard}
	return app.Run(context.Background(), append([]string{"disco"}, args...))
}

func seed(t *testing.T, r *Runner) {
	t.Helper()
	ctx := context.Background()
	svc, err := r.Services(ctx)
	if err != nil {
		t.Fatalf("failed to build services: %v", err)
	}

	if _, err := svc.Genres.Create(ctx, services.GenreInput{Name: "Jazz"}); err != nil {
		t.Fatalf("failed to create genre: %v", err)
	}
	for _, name := range []string{"Miles Davis", "Bill Evans"} {
		if _, err := svc.Artists.Create(ctx, services.ArtistInput{Name: name, Country: "United States"}); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
	}
	album, err := svc.Albums.Create(ctx, services.AlbumInput{Title: "Kind of Blue", Year: 1959, Genre: "Jazz", Artist: "Miles Davis"})
	if err != nil {
		t.Fatalf("failed to create album: %v", err)
	}
	if _, err := svc.Songs.Create(ctx, services.SongInput{Title: "So What", Artist: "Miles Davis", Album: album.ID(), Duration: 562}); err != nil {
		t.Fatalf("failed to create song: %v", err)
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			catalog := tu.NewCatalog(t)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				Catalog:    catalog,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}

			got, err := runner.Catalog(context.Background())
			if err != nil || got != catalog {
				t.Errorf("expected injected catalog, got %v (err %v)", got, err)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.configPath != "config.toml" {
				t.Errorf("expected config.toml, got %s", runner.configPath)
			}
		})
	})

	t.Run("Catalog", func(t *testing.T) {
		t.Run("opens sqlite from config", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = filepath.Join(t.TempDir(), "disco.db")
			runner := NewRunner(RunnerOpts{Config: config, Logger: log.New(io.Discard)})
			defer runner.Close(context.Background())

			catalog, err := runner.Catalog(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := catalog.Backend.Ping(context.Background()); err != nil {
				t.Errorf("expected backend to answer ping, got %v", err)
			}
			again, _ := runner.Catalog(context.Background())
			if again != catalog {
				t.Error("expected catalog to be opened once")
			}
		})

		t.Run("rejects unknown driver", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Driver = "postgres"
			runner := NewRunner(RunnerOpts{Config: config, Logger: log.New(io.Discard)})

			if _, err := runner.Catalog(context.Background()); !errors.Is(err, shared.ErrUnsupportedDriver) {
				t.Errorf("expected ErrUnsupportedDriver, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON", func(t *testing.T) {
			runner, output := newTestRunner(t)

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "{\n  \"key\": \"value\"\n}\n" {
				t.Errorf("unexpected output: %q", output.String())
			}
		})

		t.Run("writes compact JSON", func(t *testing.T) {
			runner, output := newTestRunner(t)

			if err := runner.writeJSON([]int{1, 2}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "[1,2]\n" {
				t.Errorf("expected [1,2], got %q", output.String())
			}
		})

		t.Run("handles marshal error", func(t *testing.T) {
			runner, _ := newTestRunner(t)

			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Error("expected error for unmarshalable data")
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}, Logger: log.New(io.Discard)})

			if err := runner.writeJSON("x", false); err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := runner.writePlain("%d albums\n", 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "3 albums\n" {
			t.Errorf("expected '3 albums', got %q", output.String())
		}
	})

	t.Run("register", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		commands := runner.register()

		names := make([]string, len(commands))
		for i, c := range commands {
			names[i] = c.Name
		}
		expected := []string{"setup", "config", "serve", "reconcile", "import", "stats", "list", "users", "tui"}
		if strings.Join(names, ",") != strings.Join(expected, ",") {
			t.Errorf("expected %v, got %v", expected, names)
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("stats", func(t *testing.T) {
		t.Run("renders json", func(t *testing.T) {
			runner, output := newTestRunner(t)
			seed(t, runner)

			if err := run(t, runner, "stats", "--format", "json"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), `"name": "Miles Davis"`) {
				t.Errorf("expected most albums artist in output, got %s", output.String())
			}
		})

		t.Run("rejects unknown format", func(t *testing.T) {
			runner, _ := newTestRunner(t)

			if err := run(t, runner, "stats", "--format", "yaml"); !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("expected ErrInvalidFlag, got %v", err)
			}
		})

		t.Run("writes to file", func(t *testing.T) {
			runner, output := newTestRunner(t)
			seed(t, runner)
			path := filepath.Join(t.TempDir(), "stats.csv")

			if err := run(t, runner, "stats", "--format", "csv", "--output", path); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.Len() != 0 {
				t.Errorf("expected nothing on stdout, got %q", output.String())
			}
			tu.AssertFileExists(t, path)
			if content := tu.MustReadFile(t, path); !strings.HasPrefix(content, "View,ID,Name,Count") {
				t.Errorf("expected csv header, got %q", content)
			}
		})
	})

	t.Run("list", func(t *testing.T) {
		runner, output := newTestRunner(t)
		seed(t, runner)

		tests := []struct {
			name     string
			args     []string
			expected []string
			absent   []string
		}{
			{"artists", []string{"list", "artists"}, []string{"Miles Davis", "Bill Evans"}, nil},
			{"albums by artist", []string{"list", "albums", "--artist", "Miles Davis", "--format", "csv"}, []string{"Kind of Blue"}, nil},
			{"songs as markdown", []string{"ls", "songs", "-f", "md"}, []string{"| So What |", "9:22"}, nil},
			{"albums by other artist", []string{"list", "albums", "--artist", "Bill Evans"}, nil, []string{"Kind of Blue"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				output.Reset()
				if err := run(t, runner, tt.args...); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				for _, s := range tt.expected {
					if !strings.Contains(output.String(), s) {
						t.Errorf("expected %q in output, got %s", s, output.String())
					}
				}
				for _, s := range tt.absent {
					if strings.Contains(output.String(), s) {
						t.Errorf("expected %q absent from output, got %s", s, output.String())
					}
				}
			})
		}
	})

	t.Run("reconcile dry run", func(t *testing.T) {
		runner, output := newTestRunner(t)
		seed(t, runner)

		if err := run(t, runner, "reconcile", "--dry-run"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "dry run") || !strings.Contains(output.String(), "0 drifted") {
			t.Errorf("expected clean dry run report, got %s", output.String())
		}
	})

	t.Run("import requires a directory", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		if err := run(t, runner, "import"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("import empty directory", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := run(t, runner, "import", "--format", "json", t.TempDir()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"files": 0`) {
			t.Errorf("expected zero files, got %s", output.String())
		}
	})

	t.Run("users", func(t *testing.T) {
		runner, output := newTestRunner(t)
		catalog, _ := runner.Catalog(context.Background())
		user := models.NewUser("sub-1", "ada@example.com", "Ada", "Lovelace")
		if err := catalog.Users.Create(context.Background(), user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		tests := []struct {
			command string
			admin   bool
			active  bool
		}{
			{"promote", true, true},
			{"disable", true, false},
			{"enable", true, true},
			{"demote", false, true},
		}

		for _, tt := range tests {
			t.Run(tt.command, func(t *testing.T) {
				output.Reset()
				if err := run(t, runner, "users", tt.command, "ADA@example.com"); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				got, err := catalog.Users.FindBySubject(context.Background(), "sub-1")
				if err != nil {
					t.Fatalf("failed to find user: %v", err)
				}
				if got.Admin() != tt.admin || got.Active() != tt.active {
					t.Errorf("expected admin=%t active=%t, got admin=%t active=%t", tt.admin, tt.active, got.Admin(), got.Active())
				}
			})
		}

		t.Run("unknown email", func(t *testing.T) {
			if err := run(t, runner, "users", "promote", "nobody@example.com"); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("config", func(t *testing.T) {
		t.Run("show redacts secrets", func(t *testing.T) {
			runner, output := newTestRunner(t)

			if err := run(t, runner, "config", "show"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if strings.Contains(output.String(), "change-me") {
				t.Errorf("expected jwt secret to be redacted, got %s", output.String())
			}
			if !strings.Contains(output.String(), redacted) {
				t.Errorf("expected redaction marker, got %s", output.String())
			}
		})

		t.Run("init writes file once", func(t *testing.T) {
			runner, _ := newTestRunner(t)
			path := filepath.Join(t.TempDir(), "config.toml")

			if err := run(t, runner, "config", "init", "--path", path); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, err := shared.LoadConfig(path); err != nil {
				t.Errorf("expected written config to load, got %v", err)
			}
			if err := run(t, runner, "config", "init", "--path", path); err == nil {
				t.Error("expected error when config already exists")
			}
		})
	})

	t.Run("setup", func(t *testing.T) {
		t.Run("database creates config and migrates", func(t *testing.T) {
			dir := t.TempDir()
			wd, _ := os.Getwd()
			if err := os.Chdir(dir); err != nil {
				t.Fatalf("failed to chdir: %v", err)
			}
			t.Cleanup(func() { os.Chdir(wd) })

			runner, _ := newTestRunner(t)
			if err := run(t, runner, "setup", "database", "--config", "config.toml"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
			tu.AssertFileExists(t, filepath.Join(dir, "discography.db"))
		})

		t.Run("status rejects mongo", func(t *testing.T) {
			runner, _ := newTestRunner(t)
			runner.config.Database.Driver = shared.DriverMongo

			if err := run(t, runner, "setup", "status"); !errors.Is(err, shared.ErrUnsupportedDriver) {
				t.Errorf("expected ErrUnsupportedDriver, got %v", err)
			}
		})

		t.Run("status lists migrations", func(t *testing.T) {
			runner, output := newTestRunner(t)
			runner.config.Database.Path = filepath.Join(t.TempDir(), "disco.db")

			if err := run(t, runner, "setup", "status"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "0001") || !strings.Contains(output.String(), "pending") {
				t.Errorf("expected pending first migration, got %s", output.String())
			}
		})
	})
}
