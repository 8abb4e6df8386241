package integrity

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// Back-reference sets a paired write can target.
const (
	TargetArtistAlbums  = "artist.albums"
	TargetAlbumSongs    = "album.songs"
	TargetSongAlbum     = "song.album"
	TargetUserPlaylists = "user.playlists"
)

// Engine performs catalog mutations whose effects span collections.
//
// Every operation runs in two phases. The first resolves and checks every reference and
// uniqueness rule without writing anything, so a rejected request leaves no trace. The
// second performs the primary write, which decides the outcome, and then the paired
// writes that bring back-reference sets in line with it. Paired writes never fail the
// operation: a failure is logged and recorded in the catalog journal for reconciliation.
type Engine struct {
	catalog   *models.Catalog
	validator *Validator
	logger    *log.Logger
}

func NewEngine(catalog *models.Catalog, logger *log.Logger) *Engine {
	return &Engine{catalog: catalog, validator: NewValidator(catalog), logger: logger}
}

func (e *Engine) Validator() *Validator { return e.validator }

// paired runs one back-reference write after its primary write has succeeded.
//
// The write is detached from ctx cancellation: once the primary write has landed the
// sequence runs to completion.
func (e *Engine) paired(ctx context.Context, op, target, targetID, refID string, write func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	e.logger.Debug("paired write", "op", op, "target", target, "target_id", targetID, "ref_id", refID)

	err := write(ctx)
	if err == nil {
		return
	}

	e.logger.Warn("paired write failed", "op", op, "target", target, "target_id", targetID, "ref_id", refID, "error", err)
	if e.catalog.Journal == nil {
		return
	}

	entry := models.PairedWrite{Operation: op, Target: target, TargetID: targetID, RefID: refID, Error: err.Error()}
	if jerr := e.catalog.Journal.Record(ctx, entry); jerr != nil {
		e.logger.Error("failed to journal paired write", "op", op, "target", target, "error", jerr)
	}
}

// duplicate reports ErrDuplicateEntity when a uniqueness lookup found a live document other than self.
func duplicate[T models.Model](found T, err error, entity, self string) error {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check %s uniqueness: %w", entity, err)
	case found.ID() == self:
		return nil
	}
	return fmt.Errorf("%s already exists as %s: %w", entity, found.ID(), shared.ErrDuplicateEntity)
}

// matchArtist requires every song to carry artistID. Artist references are compared as canonical ids.
func matchArtist(songs []*models.Song, artistID string) error {
	for _, s := range songs {
		if s.Artist() != artistID {
			return fmt.Errorf("song %s belongs to artist %s, not %s: %w", s.ID(), s.Artist(), artistID, shared.ErrArtistMismatch)
		}
	}
	return nil
}

func validate(m models.Model) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
