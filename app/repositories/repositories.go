// Package repositories holds the database operations behind interfaces so
// controllers can be exercised against in-memory fakes.
package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("repositories: not found")

// ErrDuplicate is returned when a unique index rejects an insert.
var ErrDuplicate = errors.New("repositories: duplicate key")

// parseObjectID converts a hex path parameter. A malformed ID behaves like
// a missing document rather than a server error.
func parseObjectID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}
