package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Review is a rated location submitted by an authenticated user. The token
// fields snapshot the creating session's credential for audit; they are
// never re-validated.
type Review struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Address        string             `bson:"address" json:"address"`
	Latitude       float64            `bson:"latitude" json:"latitude"`
	Longitude      float64            `bson:"longitude" json:"longitude"`
	Rating         int                `bson:"rating" json:"rating"`
	AuthorEmail    string             `bson:"author_email" json:"author_email"`
	AuthorName     string             `bson:"author_name" json:"author_name"`
	Token          string             `bson:"token" json:"token"`
	TokenIssuedAt  *time.Time         `bson:"token_issued_at" json:"token_issued_at"`
	TokenExpiresAt *time.Time         `bson:"token_expires_at" json:"token_expires_at"`
	Images         []string           `bson:"images" json:"images"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

type ReviewStore struct {
	coll *mongo.Collection
}

// Create assigns the identifier and creation timestamp server-side and
// returns the new hex identifier.
func (s *ReviewStore) Create(ctx context.Context, review *Review) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now().UTC()
	if review.Images == nil {
		review.Images = []string{}
	}

	if _, err := s.coll.InsertOne(ctx, review); err != nil {
		return "", fmt.Errorf("insert review: %w", err)
	}
	return review.ID.Hex(), nil
}

// List returns reviews newest first. limit <= 0 falls back to
// DefaultListLimit so the result stays bounded as data grows.
func (s *ReviewStore) List(ctx context.Context, limit, offset int) ([]Review, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

// GetByID distinguishes a malformed identifier (ErrInvalidID) from a
// well-formed one with no match (ErrNotFound); the handlers map them to
// 400 and 404 respectively, except the list view's selected-review
// fallback which collapses both to "no selection".
func (s *ReviewStore) GetByID(ctx context.Context, id string) (*Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var review Review
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return &review, nil
}
