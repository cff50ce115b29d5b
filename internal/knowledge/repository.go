package knowledge

import (
	"context"

	"github.com/conferente/labelscan/internal/entity"
)

// Repository persists the knowledge base as one document. Load returns
// (nil, nil) when nothing has been saved yet.
type Repository interface {
	Load(ctx context.Context) (*entity.KnowledgeBase, error)
	Save(ctx context.Context, kb *entity.KnowledgeBase) error
}
