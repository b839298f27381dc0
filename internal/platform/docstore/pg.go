package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PG stores documents in a single Postgres JSONB table. Writes fan out to
// in-process listeners so Listen observes every mutation made through this
// client.
type PG struct {
	pool  *pgxpool.Pool
	log   zerolog.Logger
	watch *watchRegistry
}

func NewPG(pool *pgxpool.Pool, logger zerolog.Logger) *PG {
	return &PG{
		pool:  pool,
		log:   logger.With().Str("component", "docstore").Logger(),
		watch: newWatchRegistry(),
	}
}

// EnsureSchema creates the documents table if it does not exist yet.
func (s *PG) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			doc_id     TEXT NOT NULL,
			data       JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, doc_id)
		)`)
	if err != nil {
		return fmt.Errorf("ensure documents table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING GIN (data)`)
	if err != nil {
		return fmt.Errorf("ensure documents index: %w", err)
	}
	return nil
}

func (s *PG) GetDocument(ctx context.Context, path string) (Document, error) {
	collection, id, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	var raw []byte
	err = s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND doc_id = $2`,
		collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", path, err)
	}
	return doc, nil
}

func (s *PG) GetCollectionByFilter(ctx context.Context, collection, field string, value interface{}) ([]Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND data->>$2 = $3
		ORDER BY updated_at DESC`,
		collection, field, fmt.Sprint(value))
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode document in %s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PG) Listen(path string, fn func(Event)) UnsubscribeFunc {
	return s.watch.add(path, fn)
}

func (s *PG) SetDocument(ctx context.Context, path string, doc Document) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", path, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, doc_id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, doc_id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		collection, id, raw)
	if err != nil {
		return fmt.Errorf("set document %s: %w", path, err)
	}
	s.watch.notify(Event{Type: EventSet, Path: JoinPath(collection, id), Doc: doc})
	return nil
}

func (s *PG) UpdateDocument(ctx context.Context, path string, fields Document) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode partial %s: %w", path, err)
	}
	var merged []byte
	err = s.pool.QueryRow(ctx, `
		INSERT INTO documents (collection, doc_id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, doc_id)
		DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = NOW()
		RETURNING data`,
		collection, id, raw).Scan(&merged)
	if err != nil {
		return fmt.Errorf("update document %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(merged, &doc); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("decode merged document for notify")
		doc = fields
	}
	s.watch.notify(Event{Type: EventUpdate, Path: JoinPath(collection, id), Doc: doc})
	return nil
}

func (s *PG) DeleteDocument(ctx context.Context, path string) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND doc_id = $2`,
		collection, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", path, err)
	}
	s.watch.notify(Event{Type: EventDelete, Path: JoinPath(collection, id)})
	return nil
}
