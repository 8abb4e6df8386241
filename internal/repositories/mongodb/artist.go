package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

type artistDocument struct {
	Record  `bson:",inline"`
	Name    string   `bson:"name"`
	Country string   `bson:"country"`
	Genres  []string `bson:"genres"`
	Albums  []string `bson:"albums"`
}

func (d artistDocument) model() *models.Artist {
	artist := models.NewArtist(d.Name, d.Country, d.Genres)
	artist.SetAlbums(d.Albums)
	d.Record.apply(artist)
	return artist
}

// ArtistStore implements [models.ArtistStore] on MongoDB.
type ArtistStore struct {
	coll *mongo.Collection
	seq  counters
}

func (s *ArtistStore) Create(ctx context.Context, artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := s.seq.next(ctx, artistsCollection)
	if err != nil {
		return err
	}

	doc := artistDocument{
		Record:  newRecord(artist, sequence),
		Name:    artist.Name(),
		Country: artist.Country(),
		Genres:  nonNil(artist.Genres()),
		Albums:  nonNil(artist.Albums()),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return writeError("artist", err)
	}

	artist.SetID(doc.ID.Hex())
	artist.SetSequence(sequence)
	return nil
}

func (s *ArtistStore) Get(ctx context.Context, id string) (*models.Artist, error) {
	filter, err := live("artist", id)
	if err != nil {
		return nil, err
	}
	doc, err := findOne[artistDocument](ctx, s.coll, filter, "artist", id)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *ArtistStore) FindByName(ctx context.Context, name string) (*models.Artist, error) {
	name = shared.NormalizeName(name)
	doc, err := findOne[artistDocument](ctx, s.coll, bson.M{"name": name, "deleted_at": nil}, "artist", name)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// Update writes name, country and genres. The albums array is left untouched.
func (s *ArtistStore) Update(ctx context.Context, artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return updateLive(ctx, s.coll, "artist", artist.ID(), bson.M{"$set": bson.M{
		"name":    artist.Name(),
		"country": artist.Country(),
		"genres":  nonNil(artist.Genres()),
	}})
}

func (s *ArtistStore) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, s.coll, "artist", id)
}

func (s *ArtistStore) List(ctx context.Context, criteria map[string]any) ([]*models.Artist, error) {
	filter := bson.M{"deleted_at": nil}
	if genre, ok := stringCriteria(criteria, "genre"); ok {
		filter["genres"] = genre
	}
	if name, ok := stringCriteria(criteria, "name"); ok {
		filter["name"] = shared.NormalizeName(name)
	}

	docs, err := findAll[artistDocument](ctx, s.coll, filter, nil)
	if err != nil {
		return nil, err
	}

	artists := make([]*models.Artist, 0, len(docs))
	for _, d := range docs {
		artists = append(artists, d.model())
	}
	return artists, nil
}

func (s *ArtistStore) CountByGenre(ctx context.Context, genreID string) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"genres": genreID, "deleted_at": nil})
	if err != nil {
		return 0, fmt.Errorf("failed to count artists by genre: %w", err)
	}
	return int(n), nil
}

func (s *ArtistStore) AddAlbum(ctx context.Context, artistID, albumID string) error {
	return updateLive(ctx, s.coll, "artist", artistID, bson.M{"$addToSet": bson.M{"albums": albumID}})
}

func (s *ArtistStore) RemoveAlbum(ctx context.Context, artistID, albumID string) error {
	return updateLive(ctx, s.coll, "artist", artistID, bson.M{"$pull": bson.M{"albums": albumID}})
}

func (s *ArtistStore) SetAlbums(ctx context.Context, artistID string, albumIDs []string) error {
	return updateLive(ctx, s.coll, "artist", artistID, bson.M{"$set": bson.M{"albums": models.UniqueIDs(albumIDs)}})
}
