package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/discography/internal/formatter"
	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/services"
	"github.com/desertthunder/discography/internal/shared"
	"github.com/desertthunder/discography/internal/tasks"
)

// progress logs updates from a task until the returned channel is closed by the caller.
// The returned wait func blocks until every update has been logged.
func (r *Runner) progress() (chan tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Repair, tasks.ResolveJournal, tasks.Complete:
				r.logger.Info(update.Message, "phase", update.Phase)
			default:
				r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
			}
		}
	}()
	return progressCh, func() {
		close(progressCh)
		<-done
	}
}

// Reconcile repairs back-reference drift, or reports it with --dry-run.
func (r *Runner) Reconcile(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	dryRun := cmd.Bool("dry-run")
	r.logger.Info("starting reconciliation", "dry_run", dryRun)

	progressCh, wait := r.progress()
	report, err := tasks.NewReconciler(catalog, r.logger).Run(ctx, progressCh, dryRun)
	wait()
	if err != nil {
		return err
	}

	data, err := formatter.Reconcile(report, format)
	if err != nil {
		return err
	}
	return r.writeOutput(cmd.String("output"), data)
}

// Import loads a directory of tagged audio files into the catalog.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if dir == "" {
		return fmt.Errorf("%w: directory", shared.ErrMissingArgument)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	svc, err := r.Services(ctx)
	if err != nil {
		return err
	}

	opts := tasks.ImportOpts{
		NumWorkers: r.config.Import.Workers,
		RateLimit:  r.config.Import.Rate,
		Country:    cmd.String("country"),
		Genre:      cmd.String("genre"),
	}
	if n := cmd.Int("workers"); n > 0 {
		opts.NumWorkers = n
	}
	if rate := cmd.Float("rate"); rate > 0 {
		opts.RateLimit = rate
	}

	r.logger.Info("starting import", "dir", dir, "workers", opts.NumWorkers)

	progressCh, wait := r.progress()
	result, err := tasks.NewImporter(svc, opts, r.logger).Run(ctx, progressCh, dir)
	wait()
	if err != nil {
		return err
	}

	data, err := formatter.Import(result, format)
	if err != nil {
		return err
	}
	return r.writeOutput("", data)
}

// Stats renders the four statistics views.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	svc, err := r.Services(ctx)
	if err != nil {
		return err
	}

	stats, err := svc.Stats.All(ctx)
	if err != nil {
		return err
	}
	data, err := formatter.Statistics(stats, format)
	if err != nil {
		return err
	}
	return r.writeOutput(cmd.String("output"), data)
}

// ListArtists prints artists, optionally filtered by genre.
func (r *Runner) ListArtists(ctx context.Context, cmd *cli.Command) error {
	return r.list(ctx, cmd, func(svc *services.Services, format string) ([]byte, error) {
		artists, err := svc.Artists.List(ctx, cmd.String("genre"))
		if err != nil {
			return nil, err
		}
		return formatter.Artists(artists, format)
	})
}

// ListAlbums prints albums, optionally filtered by artist and genre.
func (r *Runner) ListAlbums(ctx context.Context, cmd *cli.Command) error {
	return r.list(ctx, cmd, func(svc *services.Services, format string) ([]byte, error) {
		albums, err := svc.Albums.List(ctx, services.AlbumFilter{Artist: cmd.String("artist"), Genre: cmd.String("genre")})
		if err != nil {
			return nil, err
		}
		return formatter.Albums(albums, format)
	})
}

// ListSongs prints songs, optionally filtered by artist and album.
func (r *Runner) ListSongs(ctx context.Context, cmd *cli.Command) error {
	return r.list(ctx, cmd, func(svc *services.Services, format string) ([]byte, error) {
		songs, err := svc.Songs.List(ctx, services.SongFilter{Artist: cmd.String("artist"), Album: cmd.String("album")})
		if err != nil {
			return nil, err
		}
		return formatter.Songs(songs, format)
	})
}

func (r *Runner) list(ctx context.Context, cmd *cli.Command, render func(*services.Services, string) ([]byte, error)) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	svc, err := r.Services(ctx)
	if err != nil {
		return err
	}
	data, err := render(svc, format)
	if err != nil {
		return err
	}
	return r.writeOutput(cmd.String("output"), data)
}

func promoteUser(u *models.User) { u.SetAdmin(true) }
func demoteUser(u *models.User)  { u.SetAdmin(false) }
func disableUser(u *models.User) { u.SetActive(false) }
func enableUser(u *models.User)  { u.SetActive(true) }

// UserAction returns an action that applies change to the user named by the email argument.
//
// Capabilities are derived when a session is issued, so promotions take effect at the next login.
func (r *Runner) UserAction(change func(*models.User)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		email := strings.TrimSpace(cmd.StringArg("email"))
		if email == "" {
			return fmt.Errorf("%w: email", shared.ErrMissingArgument)
		}
		catalog, err := r.Catalog(ctx)
		if err != nil {
			return err
		}

		user, err := catalog.Users.FindByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to find user %s: %w", email, err)
		}
		change(user)
		user.Touch()
		if err := catalog.Users.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		r.logger.Info("user updated", "email", user.Email(), "admin", user.Admin(), "active", user.Active())
		return r.writePlain("%s admin=%t active=%t\n", user.Email(), user.Admin(), user.Active())
	}
}
