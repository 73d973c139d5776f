package documents

import (
	"context"

	"github.com/andela-jare/CP3-DMS/internal/domain"
)

// Repository defines the interface for document data operations. List
// accepts a filter expression tree; a nil filter is unrestricted. Results
// are ordered by creation time, newest first.
type Repository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, filter Expr, limit, offset int) ([]domain.Document, int, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id string) error
}
