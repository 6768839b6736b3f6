package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"lg/weight-planner-api/internal/advisor"
)

// IndexVersion is written into saved index files.
const IndexVersion = "1"

// entry is a stored passage with its embedding.
type entry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Embedding []float32 `json:"embedding"`
}

// indexFile is the on-disk layout of a MemoryIndex.
type indexFile struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Model     string    `json:"model,omitempty"`
	Documents []entry   `json:"documents"`
}

// MemoryIndex is an in-process index loaded from or saved to a JSON file.
type MemoryIndex struct {
	mu       sync.RWMutex
	embedder Embedder
	entries  []entry
}

// NewMemoryIndex returns an empty index that embeds with e.
func NewMemoryIndex(e Embedder) *MemoryIndex {
	return &MemoryIndex{embedder: e}
}

// LoadMemoryIndex reads an index file written by Save.
func LoadMemoryIndex(path string, e Embedder) (*MemoryIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return &MemoryIndex{embedder: e, entries: f.Documents}, nil
}

// Save writes the index to path.
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	f := indexFile{Version: IndexVersion, CreatedAt: time.Now().UTC(), Documents: m.entries}
	data, err := json.Marshal(f)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Len is the number of stored passages.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Add embeds docs and stores them. Docs without an ID get a random one.
func (m *MemoryIndex) Add(ctx context.Context, docs []advisor.Document) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vecs, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range docs {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		m.entries = append(m.entries, entry{ID: id, Content: d.Content, Source: d.Source, Embedding: vecs[i]})
	}
	return nil
}

// Search returns up to k passages ordered by ascending cosine distance.
func (m *MemoryIndex) Search(ctx context.Context, query string, k int) ([]advisor.ScoredDocument, error) {
	qv, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	m.mu.RLock()
	hits := make([]advisor.ScoredDocument, 0, len(m.entries))
	for _, e := range m.entries {
		hits = append(hits, advisor.ScoredDocument{
			Document: advisor.Document{ID: e.ID, Content: e.Content, Source: e.Source},
			Score:    cosineDistance(qv, e.Embedding),
		})
	}
	m.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score < hits[j].Score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
