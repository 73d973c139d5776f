package postgres

import (
	"testing"

	"github.com/andela-jare/CP3-DMS/internal/documents"
	"github.com/andela-jare/CP3-DMS/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileFilter_NilMatchesAll(t *testing.T) {
	where, args, err := compileFilter(nil)

	require.NoError(t, err)
	assert.Equal(t, "TRUE", where)
	assert.Empty(t, args)
}

func TestCompileFilter_Contains(t *testing.T) {
	where, args, err := compileFilter(documents.Contains{
		Field: documents.FieldTitle,
		Value: "alpha",
	})

	require.NoError(t, err)
	assert.Equal(t, "title ILIKE $1", where)
	assert.Equal(t, []interface{}{"%alpha%"}, args)
}

func TestCompileFilter_ContainsEscapesWildcards(t *testing.T) {
	_, args, err := compileFilter(documents.Contains{
		Field: documents.FieldContent,
		Value: "100%_done",
	})

	require.NoError(t, err)
	assert.Equal(t, []interface{}{`%100\%\_done%`}, args)
}

func TestCompileFilter_SearchShape(t *testing.T) {
	requester := domain.Requester{UserID: "u1", Role: domain.RoleRegular}
	where, args, err := compileFilter(documents.SearchFilter("alpha", requester))

	require.NoError(t, err)
	assert.Equal(t,
		"((title ILIKE $1 OR content ILIKE $2) AND (owner_id = $3 OR access = ANY($4)))",
		where)
	require.Len(t, args, 4)
	assert.Equal(t, "%alpha%", args[0])
	assert.Equal(t, "%alpha%", args[1])
	assert.Equal(t, "u1", args[2])
	assert.Equal(t, []string{"public", "role"}, args[3])
}

func TestCompileFilter_AdminSearchHasNoVisibilityClause(t *testing.T) {
	adminReq := domain.Requester{UserID: "a1", Role: domain.RoleAdmin}
	where, _, err := compileFilter(documents.SearchFilter("alpha", adminReq))

	require.NoError(t, err)
	assert.Equal(t, "(title ILIKE $1 OR content ILIKE $2)", where)
}

func TestCompileFilter_SingleChildUnwrapped(t *testing.T) {
	where, _, err := compileFilter(documents.And{Exprs: []documents.Expr{
		documents.Eq{Field: documents.FieldOwnerID, Value: "u1"},
	}})

	require.NoError(t, err)
	assert.Equal(t, "owner_id = $1", where)
}

func TestCompileFilter_UnknownField(t *testing.T) {
	_, _, err := compileFilter(documents.Eq{Field: "password", Value: "x"})

	assert.Error(t, err)
}
