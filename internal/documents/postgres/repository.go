package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andela-jare/CP3-DMS/internal/documents"
	"github.com/andela-jare/CP3-DMS/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements documents.Repository backed by PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new documents repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const documentColumns = `id, title, content, access, owner_id, created_at, updated_at`

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Access, &doc.OwnerID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, documents.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return &doc, nil
}

// Create inserts a new document and fills in its timestamps.
func (r *Repository) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, title, content, access, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, doc.ID, doc.Title, doc.Content, doc.Access, doc.OwnerID).
		Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	return nil
}

// GetByID fetches a document by its id.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.pool.QueryRow(ctx, query, id))
}

// List returns documents matching the filter, newest first, along with the
// total count of matching rows.
func (r *Repository) List(ctx context.Context, filter documents.Expr, limit, offset int) ([]domain.Document, int, error) {
	where, args, err := compileFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM documents WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting documents: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM documents
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		documentColumns, where, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, total, nil
}

// Update persists changed fields of a document.
func (r *Repository) Update(ctx context.Context, doc *domain.Document) error {
	query := `
		UPDATE documents
		SET title = $2, content = $3, access = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, doc.ID, doc.Title, doc.Content, doc.Access).Scan(&doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return documents.ErrDocumentNotFound
		}
		return fmt.Errorf("updating document: %w", err)
	}
	return nil
}

// Delete removes a document by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return documents.ErrDocumentNotFound
	}
	return nil
}

// compileFilter translates a filter expression into a parameterized SQL
// predicate. A nil filter matches all rows.
func compileFilter(e documents.Expr) (string, []interface{}, error) {
	if e == nil {
		return "TRUE", nil, nil
	}

	var b builder
	clause, err := b.compile(e)
	if err != nil {
		return "", nil, err
	}
	return clause, b.args, nil
}

type builder struct {
	args []interface{}
}

func (b *builder) placeholder(arg interface{}) string {
	b.args = append(b.args, arg)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) compile(e documents.Expr) (string, error) {
	switch expr := e.(type) {
	case documents.And:
		return b.compileJoin(expr.Exprs, " AND ")
	case documents.Or:
		return b.compileJoin(expr.Exprs, " OR ")
	case documents.Contains:
		col, err := column(expr.Field)
		if err != nil {
			return "", err
		}
		return col + " ILIKE " + b.placeholder("%"+escapeLike(expr.Value)+"%"), nil
	case documents.Eq:
		col, err := column(expr.Field)
		if err != nil {
			return "", err
		}
		return col + " = " + b.placeholder(expr.Value), nil
	case documents.In:
		col, err := column(expr.Field)
		if err != nil {
			return "", err
		}
		return col + " = ANY(" + b.placeholder(expr.Values) + ")", nil
	default:
		return "", fmt.Errorf("unsupported filter expression %T", e)
	}
}

func (b *builder) compileJoin(exprs []documents.Expr, op string) (string, error) {
	if len(exprs) == 0 {
		return "TRUE", nil
	}

	clauses := make([]string, 0, len(exprs))
	for _, e := range exprs {
		clause, err := b.compile(e)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return "(" + strings.Join(clauses, op) + ")", nil
}

func column(f documents.Field) (string, error) {
	switch f {
	case documents.FieldTitle:
		return "title", nil
	case documents.FieldContent:
		return "content", nil
	case documents.FieldOwnerID:
		return "owner_id", nil
	case documents.FieldAccess:
		return "access", nil
	default:
		return "", fmt.Errorf("unknown filter field %q", f)
	}
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
