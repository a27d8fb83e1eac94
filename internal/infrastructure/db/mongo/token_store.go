package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	stateCollection = "client_state"
	defaultTokenKey = "auth_token"
)

// TokenStore keeps the bearer token as a single upserted document.
type TokenStore struct {
	db   *mongo.Database
	coll *mongo.Collection
	key  string
}

// NewTokenStore creates a TokenStore backed by the client_state collection.
func NewTokenStore(db *mongo.Database, key string) *TokenStore {
	if key == "" {
		key = defaultTokenKey
	}
	return &TokenStore{db: db, coll: db.Collection(stateCollection), key: key}
}

type tokenDocument struct {
	Key       string `bson:"_id"`
	Token     string `bson:"token"`
	UpdatedAt int64  `bson:"updated_at"`
}

// Load returns the stored token, or "" when no document exists.
func (s *TokenStore) Load(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc tokenDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", fmt.Errorf("find token: %w", err)
	}
	return doc.Token, nil
}

// Save upserts the token document. An empty token clears it.
func (s *TokenStore) Save(ctx context.Context, raw string) error {
	if raw == "" {
		return s.Clear(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"token":      raw,
		"updated_at": time.Now().UTC().Unix(),
	}}
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": s.key}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

// Clear removes the token document.
func (s *TokenStore) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.key}); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// Ping checks MongoDB connectivity.
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}
