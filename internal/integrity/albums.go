package integrity

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// CreateAlbum inserts album, then adds it to its artist's albums and points each of its
// songs at it. A song taken over from another album is removed from that album's set.
func (e *Engine) CreateAlbum(ctx context.Context, album *models.Album) error {
	if err := validate(album); err != nil {
		return err
	}

	artist, err := Require(e.validator.Artist(ctx, album.Artist()))
	if err != nil {
		return err
	}
	album.SetArtist(artist.ID())

	if album.Genre() != "" {
		genre, err := Require(e.validator.Genre(ctx, album.Genre()))
		if err != nil {
			return err
		}
		album.SetGenre(genre.ID())
	}

	songs, err := e.validator.Songs(ctx, album.Songs())
	if err != nil {
		return err
	}
	if err := matchArtist(songs, artist.ID()); err != nil {
		return err
	}

	found, err := e.catalog.Albums.FindByTitle(ctx, album.Title(), artist.ID())
	if err := duplicate(found, err, "album", ""); err != nil {
		return err
	}

	if err := e.catalog.Albums.Create(ctx, album); err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}

	const op = "album.create"
	e.paired(ctx, op, TargetArtistAlbums, artist.ID(), album.ID(), func(ctx context.Context) error {
		return e.catalog.Artists.AddAlbum(ctx, artist.ID(), album.ID())
	})
	for _, s := range songs {
		e.attachSong(ctx, op, s, album.ID())
	}
	return nil
}

// UpdateAlbum applies patch. A new artist moves the album between artists' sets; a new
// songs set detaches dropped songs and attaches added ones. An empty genre clears it.
//
// When the artist changes every song the album keeps must carry the new artist.
func (e *Engine) UpdateAlbum(ctx context.Context, id string, patch models.AlbumPatch) (*models.Album, error) {
	if patch.IsEmpty() {
		return nil, shared.ErrNothingToUpdate
	}

	current, err := e.catalog.Albums.Get(ctx, id)
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
	if patch.Genre != nil && strings.TrimSpace(*patch.Genre) == "" {
		next.SetGenre("")
	} else if patch.Genre != nil {
		genre, err := Require(e.validator.Genre(ctx, *patch.Genre))
		if err != nil {
			return nil, err
		}
		next.SetGenre(genre.ID())
	}

	artistChanged := next.Artist() != current.Artist()
	songsChanged := patch.Songs != nil && !models.SameIDs(current.Songs(), next.Songs())

	var songs []*models.Song
	switch {
	case songsChanged:
		songs, err = e.validator.Songs(ctx, next.Songs())
	case artistChanged:
		songs, err = e.catalog.Songs.GetMany(ctx, next.Songs())
	}
	if err != nil {
		return nil, err
	}
	if err := matchArtist(songs, next.Artist()); err != nil {
		return nil, err
	}

	if artistChanged || next.Title() != current.Title() {
		found, err := e.catalog.Albums.FindByTitle(ctx, next.Title(), next.Artist())
		if err := duplicate(found, err, "album", id); err != nil {
			return nil, err
		}
	}

	next.Touch()
	if err := e.catalog.Albums.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to update album: %w", err)
	}
	if songsChanged {
		if err := e.catalog.Albums.SetSongs(ctx, id, next.Songs()); err != nil {
			return nil, fmt.Errorf("failed to update album songs: %w", err)
		}
	}

	const op = "album.update"
	if artistChanged {
		e.paired(ctx, op, TargetArtistAlbums, current.Artist(), id, func(ctx context.Context) error {
			return e.catalog.Artists.RemoveAlbum(ctx, current.Artist(), id)
		})
		e.paired(ctx, op, TargetArtistAlbums, next.Artist(), id, func(ctx context.Context) error {
			return e.catalog.Artists.AddAlbum(ctx, next.Artist(), id)
		})
	}
	if songsChanged {
		removed, added := models.DiffIDs(current.Songs(), next.Songs())
		for _, sid := range removed {
			e.paired(ctx, op, TargetSongAlbum, sid, id, func(ctx context.Context) error {
				return e.catalog.Songs.ClearAlbum(ctx, sid, id)
			})
		}
		for _, s := range songs {
			if slices.Contains(added, s.ID()) {
				e.attachSong(ctx, op, s, id)
			}
		}
	}
	return &next, nil
}

// DeleteAlbum soft-deletes the album, detaches its songs and removes it from its artist.
//
// Songs are found both through the album's set and through their own album reference so
// that a drifted set still releases every song.
func (e *Engine) DeleteAlbum(ctx context.Context, id string) error {
	album, err := e.catalog.Albums.Get(ctx, id)
	if err != nil {
		return err
	}

	linked, err := e.catalog.Songs.List(ctx, map[string]any{"album": id})
	if err != nil {
		return fmt.Errorf("failed to list album songs: %w", err)
	}
	songIDs := album.Songs()
	for _, s := range linked {
		songIDs = models.AddID(songIDs, s.ID())
	}

	if err := e.catalog.Albums.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}

	const op = "album.delete"
	for _, sid := range songIDs {
		e.paired(ctx, op, TargetSongAlbum, sid, id, func(ctx context.Context) error {
			return e.catalog.Songs.ClearAlbum(ctx, sid, id)
		})
	}
	e.paired(ctx, op, TargetArtistAlbums, album.Artist(), id, func(ctx context.Context) error {
		return e.catalog.Artists.RemoveAlbum(ctx, album.Artist(), id)
	})
	return nil
}

// attachSong points s at albumID, first releasing it from the album it was on.
func (e *Engine) attachSong(ctx context.Context, op string, s *models.Song, albumID string) {
	if prev := s.Album(); prev != "" && prev != albumID {
		e.paired(ctx, op, TargetAlbumSongs, prev, s.ID(), func(ctx context.Context) error {
			return e.catalog.Albums.RemoveSong(ctx, prev, s.ID())
		})
	}
	e.paired(ctx, op, TargetSongAlbum, s.ID(), albumID, func(ctx context.Context) error {
		return e.catalog.Songs.SetAlbum(ctx, s.ID(), albumID)
	})
}
