// AngelaMos | 2026
// handler_test.go

package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/yamdb/internal/access"
)

// roleAuth sets the actor from an X-Test-Role header.
func roleAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role := r.Header.Get("X-Test-Role"); role != "" {
			kind, err := access.ParseRole(role)
			if err == nil {
				actor := access.Actor{Kind: kind, ID: "id-" + role}
				r = r.WithContext(access.WithActor(r.Context(), actor))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func newRouter(t *testing.T) (http.Handler, *fixture) {
	t.Helper()

	f := newFixture(t)
	r := chi.NewRouter()
	NewHandler(f.categories, f.genres, f.titles).RegisterRoutes(r, roleAuth)
	return r, f
}

func do(router http.Handler, method, target, role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code   string              `json:"code"`
		Fields map[string][]string `json:"fields"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

const heat = `{"name":"Heat","year":1995,"genre":["drama"],"category":"movie"}`

func TestCatalogWritesNeedAdmin(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPost, "/titles", "", heat)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodPost, "/titles", access.RoleUser, heat)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodPost, "/genres", access.RoleModerator, `{"name":"Noir","slug":"noir"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodPost, "/titles", access.RoleAdmin, heat)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var title TitleResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &title))
	assert.Equal(t, "Heat", title.Name)
	require.NotNil(t, title.Category)
	assert.Equal(t, TermResponse{Name: "Film", Slug: "movie"}, *title.Category)
	assert.Equal(t, []TermResponse{{Name: "Drama", Slug: "drama"}}, title.Genre)
	assert.Nil(t, title.Rating)
}

func TestCatalogReadsArePublic(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPost, "/titles", access.RoleAdmin, heat)
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, target := range []string{"/titles", "/titles/1", "/genres", "/categories?search=fil"} {
		rec := do(router, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}

	rec = do(router, http.MethodGet, "/titles/99", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodGet, "/titles/abc", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTitleRatingIsNullInResponse(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPost, "/titles", access.RoleAdmin, heat)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(router, http.MethodGet, "/titles/1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &raw))
	v, present := raw["rating"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestTitleRejectsFutureYear(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPost, "/titles", access.RoleAdmin, `{"name":"Later","year":3000}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Error.Fields, "year")

	rec = do(router, http.MethodPost, "/titles", access.RoleAdmin, heat)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(router, http.MethodPatch, "/titles/1", access.RoleAdmin, `{"year":3000}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Error.Fields, "year")
}

func TestTitleWriteRejectsRating(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPost, "/titles", access.RoleAdmin,
		`{"name":"Heat","year":1995,"rating":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTitleFilters(t *testing.T) {
	router, _ := newRouter(t)

	for _, body := range []string{
		`{"name":"Heat","year":1995}`,
		`{"name":"Ronin","year":1998}`,
	} {
		rec := do(router, http.MethodPost, "/titles", access.RoleAdmin, body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(router, http.MethodGet, "/titles?year=1998", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var titles []TitleResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &titles))
	require.Len(t, titles, 1)
	assert.Equal(t, "Ronin", titles[0].Name)

	rec = do(router, http.MethodGet, "/titles?year=late", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTermLifecycle(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPost, "/genres", access.RoleAdmin, `{"name":"Noir","slug":"noir"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(router, http.MethodPost, "/genres", access.RoleAdmin, `{"name":"Noir","slug":"noir"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Error.Fields, "slug")

	rec = do(router, http.MethodPost, "/genres", access.RoleAdmin, `{"name":"Bad","slug":"bad slug"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodDelete, "/genres/noir", access.RoleAdmin, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(router, http.MethodDelete, "/genres/noir", access.RoleAdmin, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTitleReplace(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(router, http.MethodPost, "/titles", access.RoleAdmin, heat)
	require.Equal(t, http.StatusCreated, rec.Code)

	replacement := `{"name":"Heat (1995)","year":1995}`

	rec = do(router, http.MethodPut, "/titles/1", "", replacement)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodPut, "/titles/1", access.RoleUser, replacement)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodPut, "/titles/1", access.RoleAdmin, `{"name":"Heat"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Error.Fields, "year")

	rec = do(router, http.MethodPut, "/titles/1", access.RoleAdmin, replacement)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var title TitleResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &title))
	assert.Equal(t, "Heat (1995)", title.Name)
	assert.Nil(t, title.Category)
	assert.Empty(t, title.Genre)

	rec = do(router, http.MethodPut, "/titles/99", access.RoleAdmin, replacement)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
