// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/yamdb/internal/access"
	"github.com/carterperez-dev/yamdb/internal/config"
	"github.com/carterperez-dev/yamdb/internal/core"
	"github.com/carterperez-dev/yamdb/internal/middleware"
	"github.com/carterperez-dev/yamdb/internal/notify"
	"github.com/carterperez-dev/yamdb/internal/user"
)

// userRepo is an in-memory user.Repository.
type userRepo struct {
	mu    sync.Mutex
	users []*user.User
}

func (r *userRepo) find(pred func(*user.User) bool) *user.User {
	for _, u := range r.users {
		if u.DeletedAt == nil && pred(u) {
			return u
		}
	}
	return nil
}

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(func(x *user.User) bool { return x.Username == u.Username }) != nil {
		return core.FieldError("username", "taken")
	}
	cp := *u
	r.users = append(r.users, &cp)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u := r.find(func(x *user.User) bool { return x.ID == id }); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (r *userRepo) GetByUsername(_ context.Context, name string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u := r.find(func(x *user.User) bool { return x.Username == name }); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (r *userRepo) Update(context.Context, *user.User) error { return nil }

func (r *userRepo) SoftDelete(context.Context, string) error { return nil }

func (r *userRepo) List(context.Context, user.ListUsersParams) ([]user.User, int, error) {
	return nil, 0, nil
}

func (r *userRepo) ExistsByUsername(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(x *user.User) bool { return x.Username == name }) != nil, nil
}

func (r *userRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(x *user.User) bool { return x.Email == email }) != nil, nil
}

func (r *userRepo) Count(context.Context) (int, error) { return len(r.users), nil }

type recordingSender struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *recordingSender) codeFor(t *testing.T, to string) string {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.msgs) - 1; i >= 0; i-- {
		if s.msgs[i].To == to {
			return strings.TrimPrefix(s.msgs[i].Body, "Your confirmation code: ")
		}
	}
	t.Fatalf("no message sent to %s", to)
	return ""
}

type fixture struct {
	service *Service
	users   *user.Service
	sender  *recordingSender
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, GenerateKeyPair(privPath, pubPath))

	jwtManager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    privPath,
		PublicKeyPath:     pubPath,
		AccessTokenExpire: time.Hour,
		Issuer:            "yamdb",
		Audience:          "yamdb-api",
	})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb, err := core.NewRedis(ctx, config.RedisConfig{URL: "redis://" + mr.Addr(), PoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	codes, err := NewCodeIssuer(config.AuthConfig{SecretKey: testSecret})
	require.NoError(t, err)

	users := user.NewService(&userRepo{})
	sender := &recordingSender{}

	svc := NewService(ServiceConfig{
		Users:   users,
		Codes:   codes,
		JWT:     jwtManager,
		Revoker: rdb,
		Sender:  sender,
		Mail: config.MailConfig{
			From:     "noreply@yamdb.local",
			Subject:  "Registration confirmation",
			Template: "Your confirmation code: %s",
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, middleware.Authenticator(svc, users))
	r.With(middleware.Authenticator(svc, users)).Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, access.FromContext(r.Context()).ID)
	})

	return &fixture{service: svc, users: users, sender: sender, router: r}
}

func (f *fixture) post(path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestSignupAndExchange(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/auth/signup", `{"username":"jane","email":"jane@example.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"username":"jane","email":"jane@example.com"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "confirmation")

	code := f.sender.codeFor(t, "jane@example.com")

	rec = f.post("/auth/token", `{"username":"jane","confirmation_code":"`+code+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	u, err := f.users.GetByUsername(context.Background(), "jane")
	require.NoError(t, err)

	rec = f.get("/whoami", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.ID, rec.Body.String())

	again, err := f.service.ExchangeForSession(context.Background(), "jane", code)
	require.NoError(t, err)
	assert.NotEqual(t, resp.Token, again, "each exchange mints a new credential")
}

func TestExchangeRejectsAnotherUsersCode(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.post("/auth/signup", `{"username":"jane","email":"jane@example.com"}`, "").Code)
	require.Equal(t, http.StatusOK, f.post("/auth/signup", `{"username":"john","email":"john@example.com"}`, "").Code)

	janeCode := f.sender.codeFor(t, "jane@example.com")

	rec := f.post("/auth/token", `{"username":"john","confirmation_code":"`+janeCode+`"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "token")

	_, err := f.service.ExchangeForSession(context.Background(), "john", janeCode)
	assert.ErrorIs(t, err, ErrIdentityMismatch)
}

func TestExchangeTamperedCode(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.post("/auth/signup", `{"username":"jane","email":"jane@example.com"}`, "").Code)

	rec := f.post("/auth/token", `{"username":"jane","confirmation_code":"garbage.code.here"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body TokenErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.TokenError)
}

func TestExchangeUnknownUser(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/auth/token", `{"username":"ghost","confirmation_code":"x"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExchangeValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/auth/token", `{"username":"jane"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "confirmation_code")
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"me", "Me", "admin", "Admin"} {
		rec := f.post("/auth/signup", `{"username":"`+name+`","email":"x@example.com"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.Contains(t, rec.Body.String(), `"username"`, name)
	}

	rec := f.post("/auth/signup", `{"username":"bad name","email":"nope"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username"`)
	assert.Contains(t, rec.Body.String(), `"email"`)

	require.Equal(t, http.StatusOK, f.post("/auth/signup", `{"username":"jane","email":"jane@example.com"}`, "").Code)

	rec = f.post("/auth/signup", `{"username":"jane","email":"jane@example.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username"`)
	assert.Contains(t, rec.Body.String(), `"email"`)
	assert.Len(t, f.sender.msgs, 1, "no code is re-sent")
}

func TestSignupEchoesSubmittedEmail(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/auth/signup", `{"username":"jane","email":" Jane@Example.com "}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"username":"jane","email":"Jane@Example.com"}`, rec.Body.String())

	u, err := f.users.GetByUsername(context.Background(), "jane")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	f.sender.codeFor(t, "jane@example.com")
}

func TestSignupSucceedsWhenDeliveryFails(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("broker unavailable")

	rec := f.post("/auth/signup", `{"username":"jane","email":"jane@example.com"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := f.users.GetByUsername(context.Background(), "jane")
	assert.NoError(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.post("/auth/signup", `{"username":"jane","email":"jane@example.com"}`, "").Code)
	token, err := f.service.ExchangeForSession(context.Background(), "jane", f.sender.codeFor(t, "jane@example.com"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, f.post("/auth/logout", "", "").Code)
	assert.Equal(t, http.StatusNoContent, f.post("/auth/logout", "", token).Code)

	rec := f.get("/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_REVOKED")

	_, err = f.service.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestJWKSHandler(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.service.jwt.GetJWKSHandler()(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kid":"`+f.service.jwt.GetKeyID()+`"`)
	assert.NotContains(t, rec.Body.String(), `"d":`)
}
