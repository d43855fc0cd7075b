// AngelaMos | 2026
// core_test.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type titleInput struct {
	Name  string `json:"name"  validate:"required,max=256"`
	Year  *int   `json:"year"  validate:"omitempty,notfuture_year"`
	Slug  string `json:"slug"  validate:"omitempty,slug"`
	Login string `json:"login" validate:"omitempty,username"`
}

func TestValidatorUsesJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := ValidateStruct(v, titleInput{})
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has("name"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNotFutureYear(t *testing.T) {
	v := NewValidator()
	current := time.Now().Year()

	thisYear := current
	next := current + 1

	assert.NoError(t, ValidateStruct(v, titleInput{Name: "x", Year: &thisYear}))

	err := ValidateStruct(v, titleInput{Name: "x", Year: &next})
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t,
		[]string{"year cannot be greater than the current year"},
		verr.Fields["year"],
	)
}

func TestSlugAndUsernameRules(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, ValidateStruct(v, titleInput{Name: "x", Slug: "sci-fi_2", Login: "jane.doe+1@x"}))

	err := ValidateStruct(v, titleInput{Name: "x", Slug: "sci fi", Login: "jane doe"})
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has("slug"))
	assert.True(t, verr.Has("login"))
}

func TestValidationErrorMerge(t *testing.T) {
	a := FieldError("username", "already taken")
	b := FieldError("email", "already taken")

	merged := NewValidationError().Merge(a).Merge(b).Merge(nil)
	assert.Len(t, merged.Fields, 2)
	assert.Equal(t,
		"validation failed: email: already taken, username: already taken",
		merged.Error(),
	)
	assert.NoError(t, NewValidationError().OrNil())
}

func TestJSONErrorMapsTypes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", FieldError("score", "bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", NotFoundError("title"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", ConflictError("dup"), http.StatusConflict, "CONFLICT"},
		{"wrapped app error", fmt.Errorf("op: %w", ForbiddenError("")), http.StatusForbidden, "FORBIDDEN"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSONError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.code)
		})
	}
}

func TestPaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, []string{"a"}, 2, 10, 21)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"success":true,"data":["a"],"meta":{"page":2,"page_size":10,"total":21,"total_pages":3}}`,
		rec.Body.String(),
	)
}

func TestParsePageParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=0&page_size=500", nil)
	p := ParsePageParams(req)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())
}

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "reviews_title_author_key",
	})

	name, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "reviews_title_author_key", name)

	_, ok = UniqueViolation(errors.New("other"))
	assert.False(t, ok)
}

func TestDeriveKey(t *testing.T) {
	a, err := DeriveKey("secret", "confirmation-code")
	require.NoError(t, err)
	b, err := DeriveKey("secret", "something-else")
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)

	_, err = DeriveKey("", "confirmation-code")
	assert.Error(t, err)
}
