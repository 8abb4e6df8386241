package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/desertthunder/discography/internal/models"
)

type playlistDocument struct {
	Record `bson:",inline"`
	Name   string   `bson:"name"`
	Owner  string   `bson:"owner"`
	Songs  []string `bson:"songs"`
}

func (d playlistDocument) model() *models.Playlist {
	playlist := models.NewPlaylist(d.Name, d.Owner, d.Songs)
	d.Record.apply(playlist)
	return playlist
}

// PlaylistStore implements [models.PlaylistStore] on MongoDB.
type PlaylistStore struct {
	coll *mongo.Collection
	seq  counters
}

func (s *PlaylistStore) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := s.seq.next(ctx, playlistsCollection)
	if err != nil {
		return err
	}

	doc := playlistDocument{
		Record: newRecord(playlist, sequence),
		Name:   playlist.Name(),
		Owner:  playlist.Owner(),
		Songs:  nonNil(playlist.Songs()),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return writeError("playlist", err)
	}

	playlist.SetID(doc.ID.Hex())
	playlist.SetSequence(sequence)
	return nil
}

func (s *PlaylistStore) Get(ctx context.Context, id string) (*models.Playlist, error) {
	filter, err := live("playlist", id)
	if err != nil {
		return nil, err
	}
	doc, err := findOne[playlistDocument](ctx, s.coll, filter, "playlist", id)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *PlaylistStore) Update(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return updateLive(ctx, s.coll, "playlist", playlist.ID(), bson.M{"$set": bson.M{
		"name":  playlist.Name(),
		"songs": nonNil(playlist.Songs()),
	}})
}

func (s *PlaylistStore) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, s.coll, "playlist", id)
}

func (s *PlaylistStore) List(ctx context.Context, criteria map[string]any) ([]*models.Playlist, error) {
	filter := bson.M{"deleted_at": nil}
	if owner, ok := stringCriteria(criteria, "owner"); ok {
		filter["owner"] = owner
	}

	docs, err := findAll[playlistDocument](ctx, s.coll, filter, nil)
	if err != nil {
		return nil, err
	}

	playlists := make([]*models.Playlist, 0, len(docs))
	for _, d := range docs {
		playlists = append(playlists, d.model())
	}
	return playlists, nil
}

func (s *PlaylistStore) AddSongs(ctx context.Context, playlistID string, songIDs []string) error {
	return updateLive(ctx, s.coll, "playlist", playlistID, bson.M{
		"$addToSet": bson.M{"songs": bson.M{"$each": models.UniqueIDs(songIDs)}},
	})
}

func (s *PlaylistStore) RemoveSongs(ctx context.Context, playlistID string, songIDs []string) error {
	return updateLive(ctx, s.coll, "playlist", playlistID, bson.M{
		"$pull": bson.M{"songs": bson.M{"$in": songIDs}},
	})
}
