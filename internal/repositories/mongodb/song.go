package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

type songDocument struct {
	Record   `bson:",inline"`
	Title    string `bson:"title"`
	Artist   string `bson:"artist"`
	Album    string `bson:"album,omitempty"`
	Duration int    `bson:"duration"`
}

func (d songDocument) model() *models.Song {
	song := models.NewSong(d.Title, d.Artist, d.Album, d.Duration)
	d.Record.apply(song)
	return song
}

// SongStore implements [models.SongStore] on MongoDB.
type SongStore struct {
	coll *mongo.Collection
	seq  counters
}

func (s *SongStore) Create(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := s.seq.next(ctx, songsCollection)
	if err != nil {
		return err
	}

	doc := songDocument{
		Record:   newRecord(song, sequence),
		Title:    song.Title(),
		Artist:   song.Artist(),
		Album:    song.Album(),
		Duration: song.Duration(),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return writeError("song", err)
	}

	song.SetID(doc.ID.Hex())
	song.SetSequence(sequence)
	return nil
}

func (s *SongStore) Get(ctx context.Context, id string) (*models.Song, error) {
	filter, err := live("song", id)
	if err != nil {
		return nil, err
	}
	doc, err := findOne[songDocument](ctx, s.coll, filter, "song", id)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *SongStore) FindByTitle(ctx context.Context, title, artistID string) (*models.Song, error) {
	title = shared.NormalizeName(title)
	filter := bson.M{"title": title, "artist": artistID, "deleted_at": nil}
	doc, err := findOne[songDocument](ctx, s.coll, filter, "song", title)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// GetMany matches ids with a "not soft-deleted" filter in a single query.
func (s *SongStore) GetMany(ctx context.Context, ids []string) ([]*models.Song, error) {
	ids = models.UniqueIDs(ids)
	if len(ids) == 0 {
		return []*models.Song{}, nil
	}
	return s.find(ctx, liveIDs(ids))
}

// Update writes title, artist, album and duration. An empty album is removed from the document.
func (s *SongStore) Update(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	update := bson.M{"$set": bson.M{
		"title":    song.Title(),
		"artist":   song.Artist(),
		"duration": song.Duration(),
	}}
	if song.HasAlbum() {
		update["$set"].(bson.M)["album"] = song.Album()
	} else {
		update["$unset"] = bson.M{"album": ""}
	}
	return updateLive(ctx, s.coll, "song", song.ID(), update)
}

func (s *SongStore) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, s.coll, "song", id)
}

func (s *SongStore) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	filter := bson.M{"deleted_at": nil}
	if artist, ok := stringCriteria(criteria, "artist"); ok {
		filter["artist"] = artist
	}
	if album, ok := stringCriteria(criteria, "album"); ok {
		filter["album"] = album
	}
	if title, ok := stringCriteria(criteria, "title_contains"); ok {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(title), "$options": "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		opts.SetLimit(int64(limit))
	}
	docs, err := findAll[songDocument](ctx, s.coll, filter, opts)
	if err != nil {
		return nil, err
	}
	return songModels(docs), nil
}

func (s *SongStore) SetAlbum(ctx context.Context, songID, albumID string) error {
	if albumID == "" {
		return updateLive(ctx, s.coll, "song", songID, bson.M{"$unset": bson.M{"album": ""}})
	}
	return updateLive(ctx, s.coll, "song", songID, bson.M{"$set": bson.M{"album": albumID}})
}

// ClearAlbum unsets album only on a document whose album still equals albumID.
func (s *SongStore) ClearAlbum(ctx context.Context, songID, albumID string) error {
	filter, err := live("song", songID)
	if err != nil {
		return err
	}
	delete(filter, "deleted_at")
	filter["album"] = albumID

	if _, err := s.coll.UpdateOne(ctx, filter, bson.M{"$unset": bson.M{"album": ""}}); err != nil {
		return fmt.Errorf("failed to clear song album: %w", err)
	}
	return nil
}

func (s *SongStore) find(ctx context.Context, filter bson.M) ([]*models.Song, error) {
	docs, err := findAll[songDocument](ctx, s.coll, filter, nil)
	if err != nil {
		return nil, err
	}
	return songModels(docs), nil
}

func songModels(docs []songDocument) []*models.Song {
	songs := make([]*models.Song, 0, len(docs))
	for _, d := range docs {
		songs = append(songs, d.model())
	}
	return songs
}
