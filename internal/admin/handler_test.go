// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/yamdb/internal/access"
)

type fixedCount struct {
	n   int
	err error
}

func (f fixedCount) Count(context.Context) (int, error) {
	return f.n, f.err
}

func as(kind access.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if kind != access.Anonymous {
				actor := access.Actor{Kind: kind, ID: "actor-1"}
				r = r.WithContext(access.WithActor(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func serve(h *Handler, kind access.Kind, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r, as(kind))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func newTestHandler(reviews Counter) *Handler {
	return NewHandler(HandlerConfig{
		DBStats:   func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25} },
		DBPing:    func(context.Context) error { return nil },
		RedisPing: func(context.Context) error { return errors.New("down") },
		Users:     fixedCount{n: 3},
		Titles:    fixedCount{n: 5},
		Reviews:   reviews,
	})
}

func TestStatsRequireAdmin(t *testing.T) {
	h := newTestHandler(fixedCount{n: 7})

	assert.Equal(t, http.StatusUnauthorized, serve(h, access.Anonymous, "/admin/stats").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, access.User, "/admin/stats").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, access.Moderator, "/admin/stats").Code)
	assert.Equal(t, http.StatusOK, serve(h, access.Superuser, "/admin/stats/runtime").Code)
}

func TestSystemStats(t *testing.T) {
	h := newTestHandler(fixedCount{n: 7})

	rec := serve(h, access.Admin, "/admin/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	assert.Equal(t, ContentStats{Users: 3, Titles: 5, Reviews: 7}, env.Data.Content)
	assert.True(t, env.Data.Database.Healthy)
	require.NotNil(t, env.Data.Database.Stats)
	assert.Equal(t, 25, env.Data.Database.Stats.MaxOpenConnections)
	assert.False(t, env.Data.Redis.Healthy)
	assert.Nil(t, env.Data.Redis.Stats)
	assert.NotEmpty(t, env.Data.Runtime.GoVersion)
}

func TestContentStatsError(t *testing.T) {
	h := newTestHandler(fixedCount{err: errors.New("db gone")})

	rec := serve(h, access.Admin, "/admin/stats/content")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
