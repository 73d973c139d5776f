package documents

import (
	"strings"

	"github.com/andela-jare/CP3-DMS/internal/domain"
	"golang.org/x/text/cases"
)

// Field identifies a document attribute a predicate applies to.
type Field string

// Filterable document fields.
const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldOwnerID Field = "owner_id"
	FieldAccess  Field = "access"
)

// Expr is a node in a filter expression tree. Trees are built by the
// service, compiled to SQL by the storage layer, and evaluated in-memory by
// Match. A nil Expr means unrestricted.
type Expr interface {
	isExpr()
}

// And matches when every child expression matches.
type And struct {
	Exprs []Expr
}

// Or matches when any child expression matches.
type Or struct {
	Exprs []Expr
}

// Contains matches when the field contains the value as a
// case-insensitive substring. An empty value matches everything.
type Contains struct {
	Field Field
	Value string
}

// Eq matches when the field equals the value exactly.
type Eq struct {
	Field Field
	Value string
}

// In matches when the field equals any of the values.
type In struct {
	Field  Field
	Values []string
}

func (And) isExpr()      {}
func (Or) isExpr()       {}
func (Contains) isExpr() {}
func (Eq) isExpr()       {}
func (In) isExpr()       {}

// SearchFilter builds the filter for a free-text search. The text predicate
// matches title or content; non-admin requesters additionally see only
// their own documents and shared (public/role) ones. An empty search string
// matches all documents the visibility predicate allows.
func SearchFilter(search string, requester domain.Requester) Expr {
	text := Or{Exprs: []Expr{
		Contains{Field: FieldTitle, Value: search},
		Contains{Field: FieldContent, Value: search},
	}}

	visibility := VisibilityFilter(requester)
	if visibility == nil {
		return text
	}
	return And{Exprs: []Expr{text, visibility}}
}

// VisibilityFilter builds the predicate limiting which documents the
// requester may see. Admins are unrestricted (nil).
func VisibilityFilter(requester domain.Requester) Expr {
	if requester.IsAdmin() {
		return nil
	}

	shared := domain.SharedAccessTiers()
	values := make([]string, 0, len(shared))
	for _, tier := range shared {
		values = append(values, string(tier))
	}

	return Or{Exprs: []Expr{
		Eq{Field: FieldOwnerID, Value: requester.UserID},
		In{Field: FieldAccess, Values: values},
	}}
}

// OwnerFilter builds the predicate for listing one user's documents, still
// subject to the requester's visibility.
func OwnerFilter(ownerID string, requester domain.Requester) Expr {
	owner := Eq{Field: FieldOwnerID, Value: ownerID}
	if requester.IsAdmin() || requester.UserID == ownerID {
		return owner
	}
	return And{Exprs: []Expr{owner, VisibilityFilter(requester)}}
}

var fold = cases.Fold()

// Match evaluates an expression against a document. Used to verify filter
// semantics without a storage engine; the storage layer compiles the same
// tree to SQL.
func Match(e Expr, doc *domain.Document) bool {
	switch ex := e.(type) {
	case nil:
		return true
	case And:
		for _, child := range ex.Exprs {
			if !Match(child, doc) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range ex.Exprs {
			if Match(child, doc) {
				return true
			}
		}
		return false
	case Contains:
		return strings.Contains(fold.String(fieldValue(ex.Field, doc)), fold.String(ex.Value))
	case Eq:
		return fieldValue(ex.Field, doc) == ex.Value
	case In:
		v := fieldValue(ex.Field, doc)
		for _, candidate := range ex.Values {
			if v == candidate {
				return true
			}
		}
		return false
	}
	return false
}

func fieldValue(f Field, doc *domain.Document) string {
	switch f {
	case FieldTitle:
		return doc.Title
	case FieldContent:
		return doc.Content
	case FieldOwnerID:
		return doc.OwnerID
	case FieldAccess:
		return string(doc.Access)
	}
	return ""
}
