package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

type albumDocument struct {
	Record `bson:",inline"`
	Title  string   `bson:"title"`
	Year   int      `bson:"year"`
	Genre  string   `bson:"genre"`
	Artist string   `bson:"artist"`
	Songs  []string `bson:"songs"`
}

func (d albumDocument) model() *models.Album {
	album := models.NewAlbum(d.Title, d.Year, d.Genre, d.Artist, d.Songs)
	d.Record.apply(album)
	return album
}

// AlbumStore implements [models.AlbumStore] on MongoDB.
type AlbumStore struct {
	coll *mongo.Collection
	seq  counters
}

func (s *AlbumStore) Create(ctx context.Context, album *models.Album) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := s.seq.next(ctx, albumsCollection)
	if err != nil {
		return err
	}

	doc := albumDocument{
		Record: newRecord(album, sequence),
		Title:  album.Title(),
		Year:   album.Year(),
		Genre:  album.Genre(),
		Artist: album.Artist(),
		Songs:  nonNil(album.Songs()),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return writeError("album", err)
	}

	album.SetID(doc.ID.Hex())
	album.SetSequence(sequence)
	return nil
}

func (s *AlbumStore) Get(ctx context.Context, id string) (*models.Album, error) {
	filter, err := live("album", id)
	if err != nil {
		return nil, err
	}
	doc, err := findOne[albumDocument](ctx, s.coll, filter, "album", id)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *AlbumStore) FindByTitle(ctx context.Context, title, artistID string) (*models.Album, error) {
	title = shared.NormalizeName(title)
	filter := bson.M{"title": title, "artist": artistID, "deleted_at": nil}
	doc, err := findOne[albumDocument](ctx, s.coll, filter, "album", title)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// Update writes title, year, genre and artist. The songs array changes through SetSongs.
func (s *AlbumStore) Update(ctx context.Context, album *models.Album) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return updateLive(ctx, s.coll, "album", album.ID(), bson.M{"$set": bson.M{
		"title":  album.Title(),
		"year":   album.Year(),
		"genre":  album.Genre(),
		"artist": album.Artist(),
	}})
}

func (s *AlbumStore) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, s.coll, "album", id)
}

func (s *AlbumStore) List(ctx context.Context, criteria map[string]any) ([]*models.Album, error) {
	filter := bson.M{"deleted_at": nil}
	if artist, ok := stringCriteria(criteria, "artist"); ok {
		filter["artist"] = artist
	}
	if genre, ok := stringCriteria(criteria, "genre"); ok {
		filter["genre"] = genre
	}

	docs, err := findAll[albumDocument](ctx, s.coll, filter, nil)
	if err != nil {
		return nil, err
	}

	albums := make([]*models.Album, 0, len(docs))
	for _, d := range docs {
		albums = append(albums, d.model())
	}
	return albums, nil
}

func (s *AlbumStore) AddSong(ctx context.Context, albumID, songID string) error {
	return updateLive(ctx, s.coll, "album", albumID, bson.M{"$addToSet": bson.M{"songs": songID}})
}

func (s *AlbumStore) RemoveSong(ctx context.Context, albumID, songID string) error {
	return updateLive(ctx, s.coll, "album", albumID, bson.M{"$pull": bson.M{"songs": songID}})
}

func (s *AlbumStore) SetSongs(ctx context.Context, albumID string, songIDs []string) error {
	return updateLive(ctx, s.coll, "album", albumID, bson.M{"$set": bson.M{"songs": models.UniqueIDs(songIDs)}})
}

// CountByArtist groups live albums by their artist reference.
func (s *AlbumStore) CountByArtist(ctx context.Context) ([]models.GroupCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"deleted_at": nil}}},
		{{Key: "$group", Value: bson.M{"_id": "$artist", "albumCount": bson.M{"$sum": 1}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count albums by artist: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Artist string `bson:"_id"`
		Count  int    `bson:"albumCount"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode album counts: %w", err)
	}

	counts := make([]models.GroupCount, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, models.GroupCount{Key: r.Artist, Count: r.Count})
	}
	return counts, nil
}

// SongCounts projects each live album onto the size of its songs array, treating a missing array as empty.
func (s *AlbumStore) SongCounts(ctx context.Context) ([]models.AlbumSongCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"deleted_at": nil}}},
		{{Key: "$sort", Value: bson.M{"sequence": 1}}},
		{{Key: "$project", Value: bson.M{
			"title":     1,
			"songCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$songs", bson.A{}}}},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count album songs: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID        primitive.ObjectID `bson:"_id"`
		Title     string             `bson:"title"`
		SongCount int                `bson:"songCount"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode album song counts: %w", err)
	}

	counts := make([]models.AlbumSongCount, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, models.AlbumSongCount{AlbumID: r.ID.Hex(), Title: r.Title, SongCount: r.SongCount})
	}
	return counts, nil
}
