package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/desertthunder/discography/internal/models"
)

type userDocument struct {
	Record    `bson:",inline"`
	Subject   string   `bson:"subject"`
	Email     string   `bson:"email"`
	FirstName string   `bson:"first_name"`
	LastName  string   `bson:"last_name"`
	Active    bool     `bson:"active"`
	Admin     bool     `bson:"admin"`
	Playlists []string `bson:"playlists"`
}

func (d userDocument) model() *models.User {
	user := models.NewUser(d.Subject, d.Email, d.FirstName, d.LastName)
	user.SetActive(d.Active)
	user.SetAdmin(d.Admin)
	user.SetPlaylists(d.Playlists)
	d.Record.apply(user)
	return user
}

// UserStore implements [models.UserStore] on MongoDB.
type UserStore struct {
	coll *mongo.Collection
	seq  counters
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := s.seq.next(ctx, usersCollection)
	if err != nil {
		return err
	}

	doc := userDocument{
		Record:    newRecord(user, sequence),
		Subject:   user.Subject(),
		Email:     user.Email(),
		FirstName: user.FirstName(),
		LastName:  user.LastName(),
		Active:    user.Active(),
		Admin:     user.Admin(),
		Playlists: nonNil(user.Playlists()),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return writeError("user", err)
	}

	user.SetID(doc.ID.Hex())
	user.SetSequence(sequence)
	return nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	filter, err := live("user", id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, filter, id)
}

func (s *UserStore) FindBySubject(ctx context.Context, subject string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"subject": subject, "deleted_at": nil}, subject)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.findOne(ctx, bson.M{"email": email, "deleted_at": nil}, email)
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M, key string) (*models.User, error) {
	doc, err := findOne[userDocument](ctx, s.coll, filter, "user", key)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// Update writes identity fields and flags. The playlists array is left untouched.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return updateLive(ctx, s.coll, "user", user.ID(), bson.M{"$set": bson.M{
		"email":      user.Email(),
		"first_name": user.FirstName(),
		"last_name":  user.LastName(),
		"active":     user.Active(),
		"admin":      user.Admin(),
	}})
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, s.coll, "user", id)
}

func (s *UserStore) List(ctx context.Context, criteria map[string]any) ([]*models.User, error) {
	filter := bson.M{"deleted_at": nil}
	if admin, ok := criteria["admin"].(bool); ok {
		filter["admin"] = admin
	}

	docs, err := findAll[userDocument](ctx, s.coll, filter, nil)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.model())
	}
	return users, nil
}

func (s *UserStore) AddPlaylist(ctx context.Context, userID, playlistID string) error {
	return updateLive(ctx, s.coll, "user", userID, bson.M{"$addToSet": bson.M{"playlists": playlistID}})
}

func (s *UserStore) RemovePlaylist(ctx context.Context, userID, playlistID string) error {
	return updateLive(ctx, s.coll, "user", userID, bson.M{"$pull": bson.M{"playlists": playlistID}})
}

func (s *UserStore) SetPlaylists(ctx context.Context, userID string, playlistIDs []string) error {
	return updateLive(ctx, s.coll, "user", userID, bson.M{"$set": bson.M{"playlists": models.UniqueIDs(playlistIDs)}})
}
