package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"budgetbuddy/internal/core"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	EmailKey     string    `bson:"email_key"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDoc) toCore() core.User {
	return core.User{ID: d.ID, Email: d.Email, Name: d.Name, PasswordHash: d.PasswordHash, CreatedAt: d.CreatedAt.UTC()}
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.ID = newID()
	doc := userDoc{
		ID: u.ID, Email: u.Email, EmailKey: strings.ToLower(u.Email), Name: u.Name,
		PasswordHash: u.PasswordHash, CreatedAt: u.CreatedAt.UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := s.col(colUsers).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return core.User{}, core.ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (core.User, error) {
	return findOne(ctx, s.col(colUsers), bson.M{"email_key": strings.ToLower(email)}, userDoc.toCore)
}
