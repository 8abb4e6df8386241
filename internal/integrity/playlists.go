package integrity

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// CreatePlaylist inserts playlist for its owner and adds it to the owner's playlists.
// Every song must be live.
func (e *Engine) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	if err := validate(playlist); err != nil {
		return err
	}

	owner, err := Require(e.validator.User(ctx, playlist.Owner()))
	if err != nil {
		return err
	}
	if _, err := e.validator.Songs(ctx, playlist.Songs()); err != nil {
		return err
	}

	if err := e.catalog.Playlists.Create(ctx, playlist); err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	e.paired(ctx, "playlist.create", TargetUserPlaylists, owner.ID(), playlist.ID(), func(ctx context.Context) error {
		return e.catalog.Users.AddPlaylist(ctx, owner.ID(), playlist.ID())
	})
	return nil
}

// UpdatePlaylist renames the playlist or replaces its songs. Only the owner may.
func (e *Engine) UpdatePlaylist(ctx context.Context, id, userID string, patch models.PlaylistPatch) (*models.Playlist, error) {
	if patch.IsEmpty() {
		return nil, shared.ErrNothingToUpdate
	}

	current, err := e.ownedPlaylist(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	next := *current
	patch.Apply(&next)
	if err := validate(&next); err != nil {
		return nil, err
	}
	if patch.Songs != nil && !slices.Equal(current.Songs(), next.Songs()) {
		if _, err := e.validator.Songs(ctx, next.Songs()); err != nil {
			return nil, err
		}
	}

	next.Touch()
	if err := e.catalog.Playlists.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to update playlist: %w", err)
	}
	return &next, nil
}

// AddPlaylistSongs appends live songs not already on the playlist.
func (e *Engine) AddPlaylistSongs(ctx context.Context, id, userID string, songIDs []string) (*models.Playlist, error) {
	if _, err := e.ownedPlaylist(ctx, id, userID); err != nil {
		return nil, err
	}
	if len(songIDs) == 0 {
		return nil, shared.ErrNothingToUpdate
	}
	if _, err := e.validator.Songs(ctx, songIDs); err != nil {
		return nil, err
	}

	if err := e.catalog.Playlists.AddSongs(ctx, id, songIDs); err != nil {
		return nil, fmt.Errorf("failed to add playlist songs: %w", err)
	}
	return e.catalog.Playlists.Get(ctx, id)
}

// RemovePlaylistSongs drops songs from the playlist. Ids that are absent are ignored.
func (e *Engine) RemovePlaylistSongs(ctx context.Context, id, userID string, songIDs []string) (*models.Playlist, error) {
	if _, err := e.ownedPlaylist(ctx, id, userID); err != nil {
		return nil, err
	}
	if len(songIDs) == 0 {
		return nil, shared.ErrNothingToUpdate
	}
	for _, ref := range songIDs {
		if !e.catalog.IDs.Valid(ref) {
			return nil, Result[*models.Song]{Status: Malformed, Entity: "song", Ref: ref}.Err()
		}
	}

	if err := e.catalog.Playlists.RemoveSongs(ctx, id, songIDs); err != nil {
		return nil, fmt.Errorf("failed to remove playlist songs: %w", err)
	}
	return e.catalog.Playlists.Get(ctx, id)
}

// DeletePlaylist soft-deletes the playlist and removes it from its owner's playlists.
func (e *Engine) DeletePlaylist(ctx context.Context, id, userID string) error {
	playlist, err := e.ownedPlaylist(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := e.catalog.Playlists.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	e.paired(ctx, "playlist.delete", TargetUserPlaylists, playlist.Owner(), id, func(ctx context.Context) error {
		return e.catalog.Users.RemovePlaylist(ctx, playlist.Owner(), id)
	})
	return nil
}

func (e *Engine) ownedPlaylist(ctx context.Context, id, userID string) (*models.Playlist, error) {
	playlist, err := e.catalog.Playlists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !playlist.OwnedBy(userID) {
		return nil, fmt.Errorf("playlist %s is not owned by %s: %w", id, userID, shared.ErrUnauthorized)
	}
	return playlist, nil
}
