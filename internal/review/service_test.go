// AngelaMos | 2026
// service_test.go

package review

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/yamdb/internal/access"
	"github.com/carterperez-dev/yamdb/internal/core"
)

// memoryRepo enforces the (title, author) uniqueness the way the storage
// constraint does, independently of the service pre-check.
type memoryRepo struct {
	mu       sync.Mutex
	nextID   int64
	reviews  map[int64]Review
	comments map[int64]Comment
	clock    time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		reviews:  make(map[int64]Review),
		comments: make(map[int64]Comment),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memoryRepo) ListReviews(_ context.Context, titleID int64, page core.PageParams) ([]Review, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page.Normalize()

	out := []Review{}
	for _, r := range m.reviews {
		if r.TitleID == titleID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.After(out[j].PubDate) })
	return out, len(out), nil
}

func (m *memoryRepo) GetReview(_ context.Context, titleID, id int64) (*Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok || r.TitleID != titleID {
		return nil, core.ErrNotFound
	}
	return &r, nil
}

func (m *memoryRepo) ReviewExists(_ context.Context, titleID int64, authorID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.TitleID == titleID && r.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) CreateReview(_ context.Context, review *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.TitleID == review.TitleID && r.AuthorID == review.AuthorID {
			return core.ConflictError(msgAlreadyReviewed)
		}
	}
	m.nextID++
	review.ID = m.nextID
	review.Author = review.AuthorID
	review.PubDate = m.tick()
	m.reviews[review.ID] = *review
	return nil
}

func (m *memoryRepo) UpdateReview(_ context.Context, review *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[review.ID]; !ok {
		return core.ErrNotFound
	}
	m.reviews[review.ID] = *review
	return nil
}

func (m *memoryRepo) DeleteReview(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *memoryRepo) ListComments(_ context.Context, reviewID int64, _ core.PageParams) ([]Comment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Comment{}
	for _, c := range m.comments {
		if c.ReviewID == reviewID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.After(out[j].PubDate) })
	return out, len(out), nil
}

func (m *memoryRepo) GetComment(_ context.Context, reviewID, id int64) (*Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok || c.ReviewID != reviewID {
		return nil, core.ErrNotFound
	}
	return &c, nil
}

func (m *memoryRepo) CreateComment(_ context.Context, comment *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	comment.ID = m.nextID
	comment.Author = comment.AuthorID
	comment.PubDate = m.tick()
	m.comments[comment.ID] = *comment
	return nil
}

func (m *memoryRepo) UpdateComment(_ context.Context, comment *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[comment.ID]; !ok {
		return core.ErrNotFound
	}
	m.comments[comment.ID] = *comment
	return nil
}

func (m *memoryRepo) DeleteComment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *memoryRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reviews), nil
}

type knownTitles map[int64]bool

func (k knownTitles) Exists(_ context.Context, id int64) error {
	if !k[id] {
		return core.ErrNotFound
	}
	return nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	return NewService(repo, knownTitles{1: true, 2: true}), repo
}

func score(n int) *int {
	return &n
}

var (
	alice = access.Actor{Kind: access.User, ID: "alice"}
	bob   = access.Actor{Kind: access.User, ID: "bob"}
)

func TestOneReviewPerTitleAndAuthor(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, 1, alice, CreateReviewRequest{Text: "great", Score: score(9)})
	require.NoError(t, err)

	_, err = svc.CreateReview(ctx, 1, alice, CreateReviewRequest{Text: "again", Score: score(3)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConflict))

	_, err = svc.CreateReview(ctx, 2, alice, CreateReviewRequest{Text: "other title", Score: score(5)})
	assert.NoError(t, err)

	_, err = svc.CreateReview(ctx, 1, bob, CreateReviewRequest{Text: "mine", Score: score(5)})
	assert.NoError(t, err)
}

func TestStorageConstraintIsBackstop(t *testing.T) {
	repo := newMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.CreateReview(ctx, &Review{TitleID: 1, AuthorID: "alice", Score: 5}))

	err := repo.CreateReview(ctx, &Review{TitleID: 1, AuthorID: "alice", Score: 6})
	assert.True(t, errors.Is(err, core.ErrConflict))
}

func TestCreateReviewUnknownTitle(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateReview(context.Background(), 99, alice, CreateReviewRequest{Text: "x", Score: score(5)})
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestCreateReviewNeedsAuthor(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateReview(context.Background(), 1, access.AnonymousActor(),
		CreateReviewRequest{Text: "x", Score: score(5)})
	assert.True(t, errors.Is(err, core.ErrUnauthorized))
}

func TestUpdateReviewKeepsPubDate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateReview(ctx, 1, alice, CreateReviewRequest{Text: "ok", Score: score(6)})
	require.NoError(t, err)
	published := created.PubDate

	current, err := svc.GetReview(ctx, 1, created.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateReview(ctx, current, UpdateReviewRequest{Score: score(8)})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Score)
	assert.Equal(t, "ok", updated.Text)
	assert.Equal(t, published, updated.PubDate)
	assert.Equal(t, int64(1), updated.TitleID)
}

func TestCommentReviewMustBelongToTitle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	review, err := svc.CreateReview(ctx, 1, alice, CreateReviewRequest{Text: "ok", Score: score(6)})
	require.NoError(t, err)

	_, err = svc.CreateComment(ctx, 2, review.ID, bob, CommentRequest{Text: "hi"})
	assert.True(t, errors.Is(err, core.ErrNotFound))

	comment, err := svc.CreateComment(ctx, 1, review.ID, bob, CommentRequest{Text: "hi"})
	require.NoError(t, err)

	_, err = svc.GetComment(ctx, 2, review.ID, comment.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	_, _, err = svc.ListComments(ctx, 2, review.ID, core.PageParams{})
	assert.True(t, errors.Is(err, core.ErrNotFound))

	comments, total, err := svc.ListComments(ctx, 1, review.ID, core.PageParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "bob", comments[0].Author)
}

func TestReviewsNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, 1, alice, CreateReviewRequest{Text: "first", Score: score(6)})
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, 1, bob, CreateReviewRequest{Text: "second", Score: score(7)})
	require.NoError(t, err)

	reviews, total, err := svc.ListReviews(ctx, 1, core.PageParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "second", reviews[0].Text)

	_, _, err = svc.ListReviews(ctx, 99, core.PageParams{})
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
