package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing of the normalized code.
type ID uint64

// IDFromCode generates a deterministic ID from a normalized ICD-10-CM code
// using BLAKE2b hashing. The same code always hashes to the same ID, so
// re-indexing a code set replaces records instead of duplicating them.
func IDFromCode(code string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(code))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChapterCount is the number of chapters in the ICD-10-CM tabular list.
const ChapterCount = 22

// CodeRecord represents a single ICD-10-CM code with its official description.
// It may be enriched with a hierarchy embedding during indexing.
type CodeRecord struct {
	Id          ID
	Code        string // Normalized form without the dot (e.g. "E1152")
	Description string // Long description from the code set
	Billable    bool   // Whether the code is specific enough for claims
	Chapter     int    // Chapter number, 1 through ChapterCount
	Vector      []float32 // Hierarchy embedding (populated by the vectorizer)
	InsertedAt  time.Time // When the record was inserted into the database
	UpdatedAt   time.Time // When the record was last updated
}

// IndexInfo describes the state of a built index.
type IndexInfo struct {
	Source     string // Code set origin: a file path or "builtin"
	CodeCount  int
	Dimensions int       // Embedding dimensions, 0 until the vectorizer has run
	BuiltAt    time.Time
	EmbeddedAt time.Time // Zero until the vectorizer has run
}

// Checkpoint records how far a long-running stage has progressed,
// so an interrupted run can resume instead of starting over.
type Checkpoint struct {
	Stage     string
	LastId    ID
	UpdatedAt time.Time
}

// SimilarityMatch represents a code record match from vector similarity search.
type SimilarityMatch struct {
	RecordId ID
	Score    float32
}

// SearchResult represents a search result with the full record and relevance score.
type SearchResult struct {
	Record *CodeRecord
	Score  float32
}
