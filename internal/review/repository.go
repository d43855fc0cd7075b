// AngelaMos | 2026
// repository.go

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/carterperez-dev/yamdb/internal/core"
)

type Repository interface {
	ListReviews(ctx context.Context, titleID int64, page core.PageParams) ([]Review, int, error)
	GetReview(ctx context.Context, titleID, id int64) (*Review, error)
	ReviewExists(ctx context.Context, titleID int64, authorID string) (bool, error)
	CreateReview(ctx context.Context, review *Review) error
	UpdateReview(ctx context.Context, review *Review) error
	DeleteReview(ctx context.Context, id int64) error

	ListComments(ctx context.Context, reviewID int64, page core.PageParams) ([]Comment, int, error)
	GetComment(ctx context.Context, reviewID, id int64) (*Comment, error)
	CreateComment(ctx context.Context, comment *Comment) error
	UpdateComment(ctx context.Context, comment *Comment) error
	DeleteComment(ctx context.Context, id int64) error

	Count(ctx context.Context) (int, error)
}

const titleAuthorConstraint = "reviews_title_author_key"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var (
	reviewColumns = []string{
		"r.id", "r.title_id", "r.author_id", "u.username AS author",
		"r.text", "r.score", "r.pub_date",
	}
	commentColumns = []string{
		"c.id", "c.review_id", "c.author_id", "u.username AS author",
		"c.text", "c.pub_date",
	}
)

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) ListReviews(
	ctx context.Context,
	titleID int64,
	page core.PageParams,
) ([]Review, int, error) {
	page.Normalize()

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM reviews WHERE title_id = $1`, titleID); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	query, args, err := psql.Select(reviewColumns...).
		From("reviews r").
		Join("users u ON u.id = r.author_id").
		Where(squirrel.Eq{"r.title_id": titleID}).
		OrderBy("r.pub_date DESC", "r.id DESC").
		Limit(page.LimitU()).
		Offset(page.OffsetU()).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: build query: %w", err)
	}

	reviews := []Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}

// GetReview only finds a review under the given title.
func (r *repository) GetReview(ctx context.Context, titleID, id int64) (*Review, error) {
	query, args, err := psql.Select(reviewColumns...).
		From("reviews r").
		Join("users u ON u.id = r.author_id").
		Where(squirrel.Eq{"r.id": id, "r.title_id": titleID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get review: build query: %w", err)
	}

	var review Review
	err = r.db.GetContext(ctx, &review, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	return &review, nil
}

func (r *repository) ReviewExists(
	ctx context.Context,
	titleID int64,
	authorID string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE title_id = $1 AND author_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, titleID, authorID); err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}

	return exists, nil
}

// CreateReview relies on the (title_id, author_id) constraint as the
// final word on uniqueness.
func (r *repository) CreateReview(ctx context.Context, review *Review) error {
	query := `
		WITH ins AS (
			INSERT INTO reviews (title_id, author_id, text, score)
			VALUES ($1, $2, $3, $4)
			RETURNING id, author_id, pub_date
		)
		SELECT ins.id, ins.pub_date, u.username AS author
		FROM ins JOIN users u ON u.id = ins.author_id`

	err := r.db.GetContext(ctx, review, query,
		review.TitleID,
		review.AuthorID,
		review.Text,
		review.Score,
	)
	if err != nil {
		if name, ok := core.UniqueViolation(err); ok && name == titleAuthorConstraint {
			return fmt.Errorf("create review: %w", core.ConflictError(msgAlreadyReviewed))
		}
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

func (r *repository) UpdateReview(ctx context.Context, review *Review) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET text = $2, score = $3 WHERE id = $1`,
		review.ID, review.Text, review.Score,
	)
	return checkAffected("update review", result, err)
}

func (r *repository) DeleteReview(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	return checkAffected("delete review", result, err)
}

func (r *repository) ListComments(
	ctx context.Context,
	reviewID int64,
	page core.PageParams,
) ([]Comment, int, error) {
	page.Normalize()

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM comments WHERE review_id = $1`, reviewID); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query, args, err := psql.Select(commentColumns...).
		From("comments c").
		Join("users u ON u.id = c.author_id").
		Where(squirrel.Eq{"c.review_id": reviewID}).
		OrderBy("c.pub_date DESC", "c.id DESC").
		Limit(page.LimitU()).
		Offset(page.OffsetU()).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: build query: %w", err)
	}

	comments := []Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	return comments, total, nil
}

func (r *repository) GetComment(ctx context.Context, reviewID, id int64) (*Comment, error) {
	query, args, err := psql.Select(commentColumns...).
		From("comments c").
		Join("users u ON u.id = c.author_id").
		Where(squirrel.Eq{"c.id": id, "c.review_id": reviewID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get comment: build query: %w", err)
	}

	var comment Comment
	err = r.db.GetContext(ctx, &comment, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get comment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &comment, nil
}

func (r *repository) CreateComment(ctx context.Context, comment *Comment) error {
	query := `
		WITH ins AS (
			INSERT INTO comments (review_id, author_id, text)
			VALUES ($1, $2, $3)
			RETURNING id, author_id, pub_date
		)
		SELECT ins.id, ins.pub_date, u.username AS author
		FROM ins JOIN users u ON u.id = ins.author_id`

	err := r.db.GetContext(ctx, comment, query,
		comment.ReviewID,
		comment.AuthorID,
		comment.Text,
	)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *repository) UpdateComment(ctx context.Context, comment *Comment) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET text = $2 WHERE id = $1`,
		comment.ID, comment.Text,
	)
	return checkAffected("update comment", result, err)
}

func (r *repository) DeleteComment(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return checkAffected("delete comment", result, err)
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM reviews`); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

func checkAffected(op string, result sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
