package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"lg/weight-planner-api/internal/advisor"
)

// PGStore keeps passages in the doc_chunks table with a pgvector column.
type PGStore struct {
	db       *pgxpool.Pool
	embedder Embedder
}

// NewPGStore returns a store over db that embeds with e.
func NewPGStore(db *pgxpool.Pool, e Embedder) *PGStore {
	return &PGStore{db: db, embedder: e}
}

// chunkRow is a doc_chunks search result.
type chunkRow struct {
	ID       uuid.UUID `db:"id"`
	Content  string    `db:"content"`
	Source   string    `db:"source"`
	Distance float64   `db:"distance"`
}

const searchSQL = `
SELECT id, content, source, embedding <=> @embedding::vector AS distance
FROM doc_chunks
ORDER BY distance
LIMIT @k`

// Search embeds query and returns the k nearest chunks by cosine distance.
func (s *PGStore) Search(ctx context.Context, query string, k int) ([]advisor.ScoredDocument, error) {
	qv, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.db.Query(ctx, searchSQL, pgx.NamedArgs{
		"embedding": pgvector.NewVector(qv),
		"k":         k,
	})
	if err != nil {
		return nil, fmt.Errorf("search doc_chunks: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[chunkRow])
	if err != nil {
		return nil, fmt.Errorf("scan doc_chunks: %w", err)
	}

	hits := make([]advisor.ScoredDocument, len(found))
	for i, r := range found {
		hits[i] = advisor.ScoredDocument{
			Document: advisor.Document{ID: r.ID.String(), Content: r.Content, Source: r.Source},
			Score:    r.Distance,
		}
	}
	return hits, nil
}

// Add embeds docs in one request and inserts them in one batch.
func (s *PGStore) Add(ctx context.Context, docs []advisor.Document) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	batch := &pgx.Batch{}
	for i, d := range docs {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			id = uuid.New()
		}
		batch.Queue(
			`INSERT INTO doc_chunks (id, content, source, embedding)
			 VALUES (@id, @content, @source, @embedding::vector)
			 ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, source = EXCLUDED.source, embedding = EXCLUDED.embedding`,
			pgx.NamedArgs{
				"id":        id,
				"content":   d.Content,
				"source":    d.Source,
				"embedding": pgvector.NewVector(vecs[i]),
			})
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert doc_chunks: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (s *PGStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, "SELECT count(*) FROM doc_chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count doc_chunks: %w", err)
	}
	return n, nil
}
