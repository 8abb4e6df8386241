package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

type genreDocument struct {
	Record  `bson:",inline"`
	Name    string `bson:"name"`
	NameKey string `bson:"name_key"`
	Active  bool   `bson:"active"`
}

func (d genreDocument) model() *models.Genre {
	genre := models.NewGenre(d.Name)
	genre.SetActive(d.Active)
	d.Record.apply(genre)
	return genre
}

// GenreStore implements [models.GenreStore] on MongoDB.
type GenreStore struct {
	coll *mongo.Collection
	seq  counters
}

func (s *GenreStore) Create(ctx context.Context, genre *models.Genre) error {
	if err := genre.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := s.seq.next(ctx, genresCollection)
	if err != nil {
		return err
	}

	doc := genreDocument{
		Record:  newRecord(genre, sequence),
		Name:    genre.Name(),
		NameKey: genre.NameKey(),
		Active:  genre.Active(),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return writeError("genre", err)
	}

	genre.SetID(doc.ID.Hex())
	genre.SetSequence(sequence)
	return nil
}

func (s *GenreStore) Get(ctx context.Context, id string) (*models.Genre, error) {
	filter, err := live("genre", id)
	if err != nil {
		return nil, err
	}
	doc, err := findOne[genreDocument](ctx, s.coll, filter, "genre", id)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// FindByName matches on the stored case-folded name.
func (s *GenreStore) FindByName(ctx context.Context, name string) (*models.Genre, error) {
	filter := bson.M{"name_key": shared.FoldName(name), "deleted_at": nil}
	doc, err := findOne[genreDocument](ctx, s.coll, filter, "genre", name)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *GenreStore) Update(ctx context.Context, genre *models.Genre) error {
	if err := genre.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return updateLive(ctx, s.coll, "genre", genre.ID(), bson.M{"$set": bson.M{
		"name":     genre.Name(),
		"name_key": genre.NameKey(),
		"active":   genre.Active(),
	}})
}

func (s *GenreStore) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, s.coll, "genre", id)
}

func (s *GenreStore) List(ctx context.Context, criteria map[string]any) ([]*models.Genre, error) {
	filter := bson.M{"deleted_at": nil}
	if all, _ := criteria["include_inactive"].(bool); !all {
		filter["active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "name_key", Value: 1}})
	docs, err := findAll[genreDocument](ctx, s.coll, filter, opts)
	if err != nil {
		return nil, err
	}

	genres := make([]*models.Genre, 0, len(docs))
	for _, d := range docs {
		genres = append(genres, d.model())
	}
	return genres, nil
}
