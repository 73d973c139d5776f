// Package documents provides document CRUD with ownership and visibility
// enforcement, and the search query builder.
package documents

import (
	"context"
	"strings"

	"github.com/andela-jare/CP3-DMS/internal/domain"
	"github.com/google/uuid"
)

// Service implements document business logic.
type Service struct {
	repo Repository
}

// NewService creates a new document service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput holds data for creating a document.
type CreateInput struct {
	Title   string
	Content string
	Access  domain.Access
}

// Create stores a new document owned by the requester. Access defaults to
// public.
func (s *Service) Create(ctx context.Context, requester domain.Requester, input CreateInput) (*domain.Document, error) {
	if input.Access == "" {
		input.Access = domain.AccessPublic
	}
	if !input.Access.IsValid() {
		return nil, ErrInvalidAccess
	}

	doc := &domain.Document{
		ID:      uuid.NewString(),
		Title:   input.Title,
		Content: input.Content,
		Access:  input.Access,
		OwnerID: requester.UserID,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get retrieves a document. Private documents are visible to the owner and
// admins only.
func (s *Service) Get(ctx context.Context, requester domain.Requester, id string) (*domain.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.Access == domain.AccessPrivate && doc.OwnerID != requester.UserID && !requester.IsAdmin() {
		return nil, ErrPrivateDocument
	}
	return doc, nil
}

// List returns a page of documents the requester may see, newest first.
func (s *Service) List(ctx context.Context, requester domain.Requester, limit, offset int) ([]domain.Document, int, error) {
	return s.repo.List(ctx, VisibilityFilter(requester), limit, offset)
}

// ListByOwner returns a page of one user's documents, subject to the
// requester's visibility.
func (s *Service) ListByOwner(ctx context.Context, requester domain.Requester, ownerID string, limit, offset int) ([]domain.Document, int, error) {
	return s.repo.List(ctx, OwnerFilter(ownerID, requester), limit, offset)
}

// Search returns a page of documents matching the free-text query,
// filtered by the requester's visibility. A blank query matches all.
func (s *Service) Search(ctx context.Context, requester domain.Requester, query string, limit, offset int) ([]domain.Document, int, error) {
	return s.repo.List(ctx, SearchFilter(strings.TrimSpace(query), requester), limit, offset)
}

// UpdateInput holds updatable document fields. Empty fields are left
// unchanged. OwnerID is decoded only so ownership changes can be rejected.
type UpdateInput struct {
	Title   string
	Content string
	Access  domain.Access
	OwnerID string
}

// Update applies changes to a document. Only the owner or an admin may
// update, and ownership is immutable: any submitted ownerId is rejected.
func (s *Service) Update(ctx context.Context, requester domain.Requester, id string, input UpdateInput) (*domain.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.OwnerID != requester.UserID && !requester.IsAdmin() {
		return nil, ErrNotOwner
	}
	if input.OwnerID != "" {
		return nil, ErrOwnerImmutable
	}

	if input.Title != "" {
		doc.Title = input.Title
	}
	if input.Content != "" {
		doc.Content = input.Content
	}
	if input.Access != "" {
		if !input.Access.IsValid() {
			return nil, ErrInvalidAccess
		}
		doc.Access = input.Access
	}

	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document. Only the owner or an admin may delete.
func (s *Service) Delete(ctx context.Context, requester domain.Requester, id string) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if doc.OwnerID != requester.UserID && !requester.IsAdmin() {
		return ErrNotOwner
	}

	return s.repo.Delete(ctx, doc.ID)
}
