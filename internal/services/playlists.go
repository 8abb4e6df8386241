package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/discography/internal/integrity"
	"github.com/desertthunder/discography/internal/models"
)

type PlaylistInput struct {
	Name  string   `json:"name"`
	Songs []string `json:"songs"`
}

// PlaylistService manages playlists on behalf of the session user. Songs deleted after
// they were added stay in the stored set but are left out of every playlist it returns.
type PlaylistService struct {
	catalog *models.Catalog
	engine  *integrity.Engine
}

func (s *PlaylistService) Create(ctx context.Context, owner string, in PlaylistInput) (*models.Playlist, error) {
	playlist := models.NewPlaylist(in.Name, owner, in.Songs)
	if err := s.engine.CreatePlaylist(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *PlaylistService) Get(ctx context.Context, id string) (*models.Playlist, error) {
	playlist, err := s.catalog.Playlists.Get(ctx, id)
	return s.one(ctx, playlist, err)
}

// List returns the playlists owned by owner.
func (s *PlaylistService) List(ctx context.Context, owner string) ([]*models.Playlist, error) {
	playlists, err := s.catalog.Playlists.List(ctx, map[string]any{"owner": owner})
	if err != nil {
		return nil, err
	}
	if err := s.liveSongs(ctx, playlists...); err != nil {
		return nil, err
	}
	return playlists, nil
}

func (s *PlaylistService) Update(ctx context.Context, id, owner string, patch models.PlaylistPatch) (*models.Playlist, error) {
	playlist, err := s.engine.UpdatePlaylist(ctx, id, owner, patch)
	return s.one(ctx, playlist, err)
}

func (s *PlaylistService) AddSongs(ctx context.Context, id, owner string, songs []string) (*models.Playlist, error) {
	playlist, err := s.engine.AddPlaylistSongs(ctx, id, owner, songs)
	return s.one(ctx, playlist, err)
}

func (s *PlaylistService) RemoveSongs(ctx context.Context, id, owner string, songs []string) (*models.Playlist, error) {
	playlist, err := s.engine.RemovePlaylistSongs(ctx, id, owner, songs)
	return s.one(ctx, playlist, err)
}

func (s *PlaylistService) Delete(ctx context.Context, id, owner string) error {
	return s.engine.DeletePlaylist(ctx, id, owner)
}

func (s *PlaylistService) one(ctx context.Context, playlist *models.Playlist, err error) (*models.Playlist, error) {
	if err != nil {
		return nil, err
	}
	if err := s.liveSongs(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// liveSongs drops soft-deleted songs from each playlist's set, keeping order. It reads
// every referenced song with one query and does not write.
func (s *PlaylistService) liveSongs(ctx context.Context, playlists ...*models.Playlist) error {
	var ids []string
	for _, p := range playlists {
		ids = append(ids, p.Songs()...)
	}
	if len(ids) == 0 {
		return nil
	}

	songs, err := s.catalog.Songs.GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to read playlist songs: %w", err)
	}
	live := make(map[string]bool, len(songs))
	for _, song := range songs {
		live[song.ID()] = true
	}

	for _, p := range playlists {
		var kept []string
		for _, id := range p.Songs() {
			if live[id] {
				kept = append(kept, id)
			}
		}
		p.SetSongs(kept)
	}
	return nil
}
