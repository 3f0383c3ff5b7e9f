// Package vectorstore is the client side of the vector index: it stores
// (id, vector, metadata) triples and answers cosine-similarity queries
// constrained by exact-match metadata filters. Every query and delete is
// scoped to a user; unscoped access across tenants is rejected before it
// can reach the index.
package vectorstore

import (
	"context"
	"errors"
)

var (
	// ErrInvalidScopeFilter is returned when a query or delete filter is
	// missing the owning user id.
	ErrInvalidScopeFilter = errors.New("filter must include a user id")

	// ErrIndexUnavailable wraps transport or storage failures of the
	// underlying index.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)

// Record is one stored embedding with the metadata retrieval needs, content
// included so answering a query does not require a second fetch.
type Record struct {
	ID         string
	Vector     []float32
	UserID     string
	DocumentID string
	ChunkIndex int
	Source     string
	Content    string
}

// Match is a query result, ranked by descending cosine similarity.
type Match struct {
	ID         string
	Score      float64
	UserID     string
	DocumentID string
	ChunkIndex int
	Source     string
	Content    string
}

// Filter selects records by exact-match metadata equality. UserID is
// mandatory; DocumentID narrows to a single document; ChunkIndexGTE selects
// trailing chunk indexes, used to trim orphans after a document shrinks.
type Filter struct {
	UserID        string
	DocumentID    string
	ChunkIndexGTE *int
}

func (f Filter) Validate() error {
	if f.UserID == "" {
		return ErrInvalidScopeFilter
	}
	return nil
}

// Store upserts, queries and deletes embeddings. Upsert keys on Record.ID
// with overwrite semantics. Implementations are safe for concurrent use.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error)
	Delete(ctx context.Context, filter Filter) (int64, error)
}
