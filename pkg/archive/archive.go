// Package archive provides persistent storage for decoded page graphs.
//
// Crawl pipelines decode thousands of recordings; the archive keeps the
// serialized results addressable by ID so later analysis passes skip the
// decode step. Backends:
//   - memory: in-memory storage for development/testing
//   - mongo: MongoDB-backed storage for crawl corpora
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pagegraph-tools/pagegraph/pkg/export"
	"github.com/pagegraph-tools/pagegraph/pkg/pagegraph"
)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("not found")

// Entry is a stored decoded graph with its crawl metadata.
type Entry struct {
	ID        string       `json:"id" bson:"id"`
	URL       string       `json:"url,omitempty" bson:"url,omitempty"`
	DecodedAt time.Time    `json:"decoded_at" bson:"decoded_at"`
	NodeCount int          `json:"node_count" bson:"node_count"`
	EdgeCount int          `json:"edge_count" bson:"edge_count"`
	Graph     export.Graph `json:"graph" bson:"graph"`
}

// Summary is the listing view of an entry, without the graph payload.
type Summary struct {
	ID        string    `json:"id" bson:"id"`
	URL       string    `json:"url,omitempty" bson:"url,omitempty"`
	DecodedAt time.Time `json:"decoded_at" bson:"decoded_at"`
	NodeCount int       `json:"node_count" bson:"node_count"`
	EdgeCount int       `json:"edge_count" bson:"edge_count"`
}

// Store is the interface for archive storage backends.
type Store interface {
	// Put stores an entry. An existing entry with the same ID is replaced.
	Put(ctx context.Context, entry *Entry) error

	// Get retrieves an entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	Get(ctx context.Context, id string) (*Entry, error)

	// List returns summaries of all entries, most recent first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes an entry. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// NewEntry builds an archive entry from a decoded graph.
func NewEntry(g *pagegraph.Graph) *Entry {
	serialized := export.FromGraph(g)
	return &Entry{
		ID:        uuid.NewString(),
		URL:       serialized.URL,
		DecodedAt: time.Now().UTC(),
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		Graph:     serialized,
	}
}

// Summarize returns the listing view of an entry.
func (e *Entry) Summarize() Summary {
	return Summary{
		ID:        e.ID,
		URL:       e.URL,
		DecodedAt: e.DecodedAt,
		NodeCount: e.NodeCount,
		EdgeCount: e.EdgeCount,
	}
}
