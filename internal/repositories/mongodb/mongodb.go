// Package mongodb implements the catalog stores on MongoDB.
//
// Documents carry their back-reference sets as arrays of id strings. Set changes use
// $addToSet / $pull on a single document, which MongoDB applies atomically. References
// between collections are ObjectID hex strings.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

const (
	artistsCollection   = "artists"
	albumsCollection    = "albums"
	songsCollection     = "songs"
	genresCollection    = "genres"
	playlistsCollection = "playlists"
	usersCollection     = "users"
	journalCollection   = "paired_writes"
	countersCollection  = "counters"
)

// ObjectIDs is the [models.IDScheme] of the MongoDB backend.
type ObjectIDs struct{}

func (ObjectIDs) Name() string { return "objectid" }

func (ObjectIDs) Valid(id string) bool { return primitive.IsValidObjectID(id) }

// Record holds the bookkeeping fields shared by every document. Live documents store an
// explicit null deleted_at so the unique indexes can be partial on it.
type Record struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Sequence  int                `bson:"sequence"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
	DeletedAt *time.Time         `bson:"deleted_at"`
}

type stamped interface {
	SetID(string)
	SetSequence(int)
	SetCreatedAt(time.Time)
	SetUpdatedAt(time.Time)
	SetDeletedAt(*time.Time)
}

func (m Record) apply(s stamped) {
	s.SetID(m.ID.Hex())
	s.SetSequence(m.Sequence)
	s.SetCreatedAt(m.CreatedAt)
	s.SetUpdatedAt(m.UpdatedAt)
	s.SetDeletedAt(m.DeletedAt)
}

func newRecord(m models.Model, sequence int) Record {
	return Record{
		ID:        primitive.NewObjectID(),
		Sequence:  sequence,
		CreatedAt: m.CreatedAt(),
		UpdatedAt: m.UpdatedAt(),
	}
}

// live matches a document by id unless it is soft-deleted.
func live(entity, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", entity, id, shared.ErrNotFound)
	}
	return bson.M{"_id": oid, "deleted_at": nil}, nil
}

func liveIDs(ids []string) bson.M {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return bson.M{"_id": bson.M{"$in": oids}, "deleted_at": nil}
}

func findOne[D any](ctx context.Context, coll *mongo.Collection, filter bson.M, entity, key string) (*D, error) {
	var doc D
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s %s: %w", entity, key, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", entity, err)
	}
	return &doc, nil
}

func findAll[D any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]D, error) {
	if opts == nil {
		opts = options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})
	}
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []D{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return docs, nil
}

// updateLive applies update to one live document and reports a missing one as not found.
func updateLive(ctx context.Context, coll *mongo.Collection, entity, id string, update bson.M) error {
	filter, err := live(entity, id)
	if err != nil {
		return err
	}

	if set, ok := update["$set"].(bson.M); ok {
		set["updated_at"] = time.Now().UTC()
	} else {
		update["$set"] = bson.M{"updated_at": time.Now().UTC()}
	}

	result, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return writeError(entity, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, shared.ErrNotFound)
	}
	return nil
}

func softDelete(ctx context.Context, coll *mongo.Collection, entity, id string) error {
	return updateLive(ctx, coll, entity, id, bson.M{"$set": bson.M{"deleted_at": time.Now().UTC()}})
}

func writeError(entity string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", entity, shared.ErrDuplicateEntity)
	}
	return fmt.Errorf("failed to write %s: %w", entity, err)
}

func stringCriteria(criteria map[string]any, key string) (string, bool) {
	v, ok := criteria[key].(string)
	return v, ok && v != ""
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// counters hands out per-collection sequence numbers.
type counters struct {
	coll *mongo.Collection
}

func (c counters) next(ctx context.Context, name string) (int, error) {
	var doc struct {
		Value int `bson:"value"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := c.coll.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"value": 1}}, opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to generate sequence: %w", err)
	}
	return doc.Value, nil
}

// liveOnly restricts a unique index to documents that are not soft-deleted.
var liveOnly = bson.M{"deleted_at": bson.M{"$type": "null"}}

func uniqueLive(keys ...string) mongo.IndexModel {
	d := bson.D{}
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return mongo.IndexModel{
		Keys:    d,
		Options: options.Index().SetUnique(true).SetPartialFilterExpression(liveOnly),
	}
}

// catalogIndexes mirrors the SQLite schema: the uniqueness rules hold among live documents only.
func catalogIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		artistsCollection: {
			uniqueLive("name"),
			{Keys: bson.D{{Key: "genres", Value: 1}}},
		},
		albumsCollection: {
			uniqueLive("artist", "title"),
			{Keys: bson.D{{Key: "genre", Value: 1}}},
		},
		songsCollection: {
			{Keys: bson.D{{Key: "album", Value: 1}}},
			uniqueLive("artist", "title"),
		},
		genresCollection:    {uniqueLive("name_key")},
		playlistsCollection: {{Keys: bson.D{{Key: "owner", Value: 1}}}},
		usersCollection:     {uniqueLive("subject"), uniqueLive("email")},
		journalCollection:   {{Keys: bson.D{{Key: "resolved_at", Value: 1}, {Key: "created_at", Value: 1}}}},
	}
}

// EnsureIndexes creates the lookup and uniqueness indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, idx := range catalogIndexes() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// NewCatalog wires every MongoDB store around db.
func NewCatalog(db *mongo.Database) *models.Catalog {
	seq := counters{coll: db.Collection(countersCollection)}
	return &models.Catalog{
		Artists:   &ArtistStore{coll: db.Collection(artistsCollection), seq: seq},
		Albums:    &AlbumStore{coll: db.Collection(albumsCollection), seq: seq},
		Songs:     &SongStore{coll: db.Collection(songsCollection), seq: seq},
		Genres:    &GenreStore{coll: db.Collection(genresCollection), seq: seq},
		Playlists: &PlaylistStore{coll: db.Collection(playlistsCollection), seq: seq},
		Users:     &UserStore{coll: db.Collection(usersCollection), seq: seq},
		Journal:   &PairedWriteStore{coll: db.Collection(journalCollection)},
		IDs:       ObjectIDs{},
		Backend:   backend{db: db},
	}
}

type backend struct {
	db *mongo.Database
}

func (b backend) Ping(ctx context.Context) error { return b.db.Client().Ping(ctx, nil) }

func (b backend) Close(ctx context.Context) error { return b.db.Client().Disconnect(ctx) }
