package integrity

import (
	"context"
	"fmt"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// CreateSong inserts song and adds it to its album's set. The album, when given, must
// belong to the song's artist.
func (e *Engine) CreateSong(ctx context.Context, song *models.Song) error {
	if err := validate(song); err != nil {
		return err
	}

	artist, err := Require(e.validator.Artist(ctx, song.Artist()))
	if err != nil {
		return err
	}
	song.SetArtist(artist.ID())

	if song.HasAlbum() {
		if err := e.checkAlbum(ctx, song); err != nil {
			return err
		}
	}

	found, err := e.catalog.Songs.FindByTitle(ctx, song.Title(), artist.ID())
	if err := duplicate(found, err, "song", ""); err != nil {
		return err
	}

	if err := e.catalog.Songs.Create(ctx, song); err != nil {
		return fmt.Errorf("failed to create song: %w", err)
	}

	if song.HasAlbum() {
		e.paired(ctx, "song.create", TargetAlbumSongs, song.Album(), song.ID(), func(ctx context.Context) error {
			return e.catalog.Albums.AddSong(ctx, song.Album(), song.ID())
		})
	}
	return nil
}

// UpdateSong applies patch. When the artist or album changes the album match is checked
// with the new-or-existing value of each; a new album moves the song between album sets.
func (e *Engine) UpdateSong(ctx context.Context, id string, patch models.SongPatch) (*models.Song, error) {
	if patch.IsEmpty() {
		return nil, shared.ErrNothingToUpdate
	}

	current, err := e.catalog.Songs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	patch.Apply(&next)
	if err := validate(&next); err != nil {
		return nil, err
	}

	if patch.Artist != nil {
		artist, err := Require(e.validator.Artist(ctx, *patch.Artist))
		if err != nil {
			return nil, err
		}
		next.SetArtist(artist.ID())
	}

	artistChanged := next.Artist() != current.Artist()
	albumChanged := next.Album() != current.Album()
	if next.HasAlbum() && (artistChanged || albumChanged) {
		if err := e.checkAlbum(ctx, &next); err != nil {
			return nil, err
		}
	}

	if artistChanged || next.Title() != current.Title() {
		found, err := e.catalog.Songs.FindByTitle(ctx, next.Title(), next.Artist())
		if err := duplicate(found, err, "song", id); err != nil {
			return nil, err
		}
	}

	next.Touch()
	if err := e.catalog.Songs.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to update song: %w", err)
	}

	if albumChanged {
		const op = "song.update"
		if old := current.Album(); old != "" {
			e.paired(ctx, op, TargetAlbumSongs, old, id, func(ctx context.Context) error {
				return e.catalog.Albums.RemoveSong(ctx, old, id)
			})
		}
		if next.HasAlbum() {
			e.paired(ctx, op, TargetAlbumSongs, next.Album(), id, func(ctx context.Context) error {
				return e.catalog.Albums.AddSong(ctx, next.Album(), id)
			})
		}
	}
	return &next, nil
}

// DeleteSong soft-deletes the song and removes it from its album's set.
func (e *Engine) DeleteSong(ctx context.Context, id string) error {
	song, err := e.catalog.Songs.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := e.catalog.Songs.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	if song.HasAlbum() {
		e.paired(ctx, "song.delete", TargetAlbumSongs, song.Album(), id, func(ctx context.Context) error {
			return e.catalog.Albums.RemoveSong(ctx, song.Album(), id)
		})
	}
	return nil
}

// checkAlbum resolves song's album and requires it to share the song's artist.
func (e *Engine) checkAlbum(ctx context.Context, song *models.Song) error {
	album, err := Require(e.validator.Album(ctx, song.Album()))
	if err != nil {
		return err
	}
	if album.Artist() != song.Artist() {
		return fmt.Errorf("album %s belongs to artist %s, not %s: %w", album.ID(), album.Artist(), song.Artist(), shared.ErrArtistMismatch)
	}
	return nil
}
