package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/desertthunder/discography/internal/models"
)

type pairedWriteDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Operation  string             `bson:"operation"`
	Target     string             `bson:"target"`
	TargetID   string             `bson:"target_id"`
	RefID      string             `bson:"ref_id"`
	Error      string             `bson:"error"`
	CreatedAt  time.Time          `bson:"created_at"`
	ResolvedAt *time.Time         `bson:"resolved_at,omitempty"`
}

// PairedWriteStore implements [models.PairedWriteLog] on MongoDB.
type PairedWriteStore struct {
	coll *mongo.Collection
}

func (s *PairedWriteStore) Record(ctx context.Context, w models.PairedWrite) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	doc := pairedWriteDocument{
		ID:        primitive.NewObjectID(),
		Operation: w.Operation,
		Target:    w.Target,
		TargetID:  w.TargetID,
		RefID:     w.RefID,
		Error:     w.Error,
		CreatedAt: w.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to record paired write: %w", err)
	}
	return nil
}

func (s *PairedWriteStore) Pending(ctx context.Context) ([]models.PairedWrite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	docs, err := findAll[pairedWriteDocument](ctx, s.coll, bson.M{"resolved_at": nil}, opts)
	if err != nil {
		return nil, err
	}

	writes := make([]models.PairedWrite, 0, len(docs))
	for _, d := range docs {
		writes = append(writes, models.PairedWrite{
			ID:        d.ID.Hex(),
			Operation: d.Operation,
			Target:    d.Target,
			TargetID:  d.TargetID,
			RefID:     d.RefID,
			Error:     d.Error,
			CreatedAt: d.CreatedAt,
		})
	}
	return writes, nil
}

func (s *PairedWriteStore) Resolve(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	filter := liveIDs(ids)
	delete(filter, "deleted_at")
	filter["resolved_at"] = nil

	update := bson.M{"$set": bson.M{"resolved_at": time.Now().UTC()}}
	if _, err := s.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to resolve paired writes: %w", err)
	}
	return nil
}
