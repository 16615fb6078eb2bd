package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidID         = errors.New("invalid identifier")
	QueryTimeoutDuration = time.Second * 5
)

// DefaultListLimit bounds List when the caller passes limit <= 0.
const DefaultListLimit = 50

type Storage struct {
	Reviews interface {
		Create(context.Context, *Review) (string, error)
		List(ctx context.Context, limit, offset int) ([]Review, error)
		GetByID(context.Context, string) (*Review, error)
	}
}

func NewStorage(db *mongo.Database) Storage {
	return Storage{
		Reviews: &ReviewStore{coll: db.Collection("Resenas")},
	}
}
