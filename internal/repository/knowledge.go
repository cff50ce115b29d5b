package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/conferente/labelscan/internal/entity"
	"github.com/conferente/labelscan/internal/knowledge"
)

const knowledgeKey = "knowledge_base"

// knowledgeRepository stores the whole knowledge base as one JSON document
// in the kv table. The document is small (bounded reading log) and always
// read and written whole, so a single row beats a normalized schema here.
type knowledgeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewKnowledgeRepository(db *sql.DB, logger *slog.Logger) knowledge.Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &knowledgeRepository{db: db, logger: logger}
}

func (r *knowledgeRepository) Load(ctx context.Context) (*entity.KnowledgeBase, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, knowledgeKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to load knowledge base", "error", err)
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}

	var kb entity.KnowledgeBase
	if err := json.Unmarshal([]byte(doc), &kb); err != nil {
		return nil, fmt.Errorf("decode knowledge base: %w", err)
	}
	return &kb, nil
}

func (r *knowledgeRepository) Save(ctx context.Context, kb *entity.KnowledgeBase) error {
	doc, err := json.Marshal(kb)
	if err != nil {
		return fmt.Errorf("encode knowledge base: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		knowledgeKey, string(doc))
	if err != nil {
		r.logger.Error("failed to save knowledge base", "error", err)
		return fmt.Errorf("save knowledge base: %w", err)
	}
	return nil
}
