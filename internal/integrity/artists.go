package integrity

import (
	"context"
	"fmt"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// CreateArtist resolves the artist's genres to ids and inserts it. Names are unique.
func (e *Engine) CreateArtist(ctx context.Context, artist *models.Artist) error {
	if err := validate(artist); err != nil {
		return err
	}

	genres, err := e.validator.Genres(ctx, artist.Genres())
	if err != nil {
		return err
	}
	artist.SetGenres(genres)

	found, err := e.catalog.Artists.FindByName(ctx, artist.Name())
	if err := duplicate(found, err, "artist", ""); err != nil {
		return err
	}

	if err := e.catalog.Artists.Create(ctx, artist); err != nil {
		return fmt.Errorf("failed to create artist: %w", err)
	}
	return nil
}

// UpdateArtist applies patch to the artist. Its albums set is never written here.
func (e *Engine) UpdateArtist(ctx context.Context, id string, patch models.ArtistPatch) (*models.Artist, error) {
	if patch.IsEmpty() {
		return nil, shared.ErrNothingToUpdate
	}

	current, err := e.catalog.Artists.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	patch.Apply(&next)
	if err := validate(&next); err != nil {
		return nil, err
	}

	if patch.Genres != nil {
		genres, err := e.validator.Genres(ctx, next.Genres())
		if err != nil {
			return nil, err
		}
		next.SetGenres(genres)
	}

	if next.Name() != current.Name() {
		found, err := e.catalog.Artists.FindByName(ctx, next.Name())
		if err := duplicate(found, err, "artist", id); err != nil {
			return nil, err
		}
	}

	next.Touch()
	if err := e.catalog.Artists.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to update artist: %w", err)
	}
	return &next, nil
}

// DeleteArtist refuses while the artist has albums, by back-reference or by any live
// album still pointing at it.
func (e *Engine) DeleteArtist(ctx context.Context, id string) error {
	artist, err := e.catalog.Artists.Get(ctx, id)
	if err != nil {
		return err
	}
	if n := len(artist.Albums()); n > 0 {
		return fmt.Errorf("artist %s has %d albums: %w", id, n, shared.ErrReferentialConflict)
	}

	albums, err := e.catalog.Albums.List(ctx, map[string]any{"artist": id})
	if err != nil {
		return fmt.Errorf("failed to list artist albums: %w", err)
	}
	if len(albums) > 0 {
		return fmt.Errorf("artist %s is referenced by %d albums: %w", id, len(albums), shared.ErrReferentialConflict)
	}

	return e.catalog.Artists.Delete(ctx, id)
}

// DeleteGenre refuses while any live artist or album references the genre.
func (e *Engine) DeleteGenre(ctx context.Context, id string) error {
	if _, err := e.catalog.Genres.Get(ctx, id); err != nil {
		return err
	}

	artists, err := e.catalog.Artists.CountByGenre(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count genre artists: %w", err)
	}
	if artists > 0 {
		return fmt.Errorf("genre %s is referenced by %d artists: %w", id, artists, shared.ErrReferentialConflict)
	}

	albums, err := e.catalog.Albums.List(ctx, map[string]any{"genre": id})
	if err != nil {
		return fmt.Errorf("failed to list genre albums: %w", err)
	}
	if len(albums) > 0 {
		return fmt.Errorf("genre %s is referenced by %d albums: %w", id, len(albums), shared.ErrReferentialConflict)
	}

	return e.catalog.Genres.Delete(ctx, id)
}
