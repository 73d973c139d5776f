package documents

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/andela-jare/CP3-DMS/internal/domain"
	"github.com/andela-jare/CP3-DMS/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Pagination constants.
const (
	DefaultDocumentsLimit = 10
	MaxDocumentsLimit     = 100
)

// Handler handles HTTP requests for the documents module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new documents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers document routes. All require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	r.Get("/users/{id}/documents", h.ListByUser)
	r.Get("/search/documents", h.Search)
}

// CreateDocumentRequest represents the document creation request body.
type CreateDocumentRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Access  string `json:"access" validate:"omitempty,oneof=private public role"`
}

// Create handles POST /documents.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err, nil)
		return
	}

	doc, err := h.service.Create(r.Context(), httputil.GetRequester(r.Context()), CreateInput{
		Title:   req.Title,
		Content: req.Content,
		Access:  domain.Access(req.Access),
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrInvalidAccess, Status: http.StatusBadRequest, Message: "access must be private, public or role."},
		})
		return
	}

	httputil.Success(w, http.StatusCreated, doc)
}

// Get handles GET /documents/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), httputil.GetRequester(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, h.errorMappings())
		return
	}

	httputil.Success(w, http.StatusOK, doc)
}

// List handles GET /documents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := h.pageParams(w, r)
	if !ok {
		return
	}

	docs, total, err := h.service.List(r.Context(), httputil.GetRequester(r.Context()), limit, offset)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	h.respondPage(w, docs, total, limit, offset)
}

// ListByUser handles GET /users/{id}/documents.
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := h.pageParams(w, r)
	if !ok {
		return
	}

	docs, total, err := h.service.ListByOwner(r.Context(), httputil.GetRequester(r.Context()), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	h.respondPage(w, docs, total, limit, offset)
}

// Search handles GET /search/documents.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := h.pageParams(w, r)
	if !ok {
		return
	}

	docs, total, err := h.service.Search(r.Context(), httputil.GetRequester(r.Context()), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	h.respondPage(w, docs, total, limit, offset)
}

// UpdateDocumentRequest represents the document update request body.
// OwnerID is decoded only so ownership changes can be rejected.
type UpdateDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Access  string `json:"access" validate:"omitempty,oneof=private public role"`
	OwnerID string `json:"ownerId"`
}

// Update handles PUT /documents/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err, nil)
		return
	}

	doc, err := h.service.Update(r.Context(), httputil.GetRequester(r.Context()), chi.URLParam(r, "id"), UpdateInput{
		Title:   req.Title,
		Content: req.Content,
		Access:  domain.Access(req.Access),
		OwnerID: req.OwnerID,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, h.errorMappings())
		return
	}

	httputil.Success(w, http.StatusOK, doc)
}

// Delete handles DELETE /documents/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), httputil.GetRequester(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, h.errorMappings())
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"message": "Document deleted successfully.",
	})
}

func (h *Handler) errorMappings() []httputil.ErrorMapping {
	return []httputil.ErrorMapping{
		{Error: ErrDocumentNotFound, Status: http.StatusNotFound, Message: "Document Not found."},
		{Error: ErrNotOwner, Status: http.StatusForbidden, Message: "You are restricted from performing this action."},
		{Error: ErrPrivateDocument, Status: http.StatusForbidden, Message: "You are restricted from performing this action."},
		{Error: ErrOwnerImmutable, Status: http.StatusForbidden, Message: "You cannot update ownerId."},
		{Error: ErrInvalidAccess, Status: http.StatusBadRequest, Message: "access must be private, public or role."},
	}
}

func (h *Handler) respondPage(w http.ResponseWriter, docs []domain.Document, total, limit, offset int) {
	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"data":     docs,
		"metaData": httputil.NewPagination(total, limit, offset),
	})
}

func (h *Handler) pageParams(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit = DefaultDocumentsLimit
	offset = 0

	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return 0, 0, false
		}
		if parsed > MaxDocumentsLimit {
			parsed = MaxDocumentsLimit
		}
		limit = parsed
	}

	if o := r.URL.Query().Get("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil || parsed < 0 {
			httputil.Error(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return 0, 0, false
		}
		offset = parsed
	}

	return limit, offset, true
}
