package repository

import (
	"context"
	"errors"
	"fmt"

	"task_api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UsersCollection keeps the collection name used by the existing deployment.
const UsersCollection = "usuarios"

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"` // hashed
	Username string             `bson:"username"`
}

func (d userDocument) toModel() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.Password,
	}
}

type UserMongo struct {
	coll *mongo.Collection
}

func NewUserMongo(db *mongo.Database) *UserMongo {
	return &UserMongo{coll: db.Collection(UsersCollection)}
}

var _ Users = (*UserMongo)(nil)

// Create inserts a new user document with a fresh ObjectID.
func (r *UserMongo) Create(ctx context.Context, u models.User) (models.User, error) {
	doc := userDocument{
		ID:       primitive.NewObjectID(),
		Email:    u.Email,
		Password: u.PasswordHash,
		Username: u.Username,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	return doc.toModel(), nil
}

// GetByEmail returns (nil, nil) if no document matches.
func (r *UserMongo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user %q: %w", email, err)
	}
	u := doc.toModel()
	return &u, nil
}
