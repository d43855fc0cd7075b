// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/yamdb/internal/access"
	"github.com/carterperez-dev/yamdb/internal/core"
)

// TitleChecker reports core.ErrNotFound for an unknown title.
type TitleChecker interface {
	Exists(ctx context.Context, id int64) error
}

type Service struct {
	repo   Repository
	titles TitleChecker
}

func NewService(repo Repository, titles TitleChecker) *Service {
	return &Service{repo: repo, titles: titles}
}

func (s *Service) ListReviews(
	ctx context.Context,
	titleID int64,
	page core.PageParams,
) ([]Review, int, error) {
	if err := s.titles.Exists(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListReviews(ctx, titleID, page)
}

func (s *Service) GetReview(ctx context.Context, titleID, reviewID int64) (*Review, error) {
	return s.repo.GetReview(ctx, titleID, reviewID)
}

// CreateReview records the author's review of a title. A second review by
// the same author fails with core.ErrConflict.
func (s *Service) CreateReview(
	ctx context.Context,
	titleID int64,
	author access.Actor,
	req CreateReviewRequest,
) (review *Review, err error) {
	ctx, span := core.StartSpan(ctx, "review.CreateReview",
		attribute.Int64("title.id", titleID),
	)
	defer func() { core.EndSpan(span, err) }()

	if !author.Authenticated() {
		return nil, fmt.Errorf("create review: %w", core.ErrUnauthorized)
	}

	if err := s.titles.Exists(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ReviewExists(ctx, titleID, author.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, core.ConflictError(msgAlreadyReviewed)
	}

	review = &Review{
		TitleID:  titleID,
		AuthorID: author.ID,
		Text:     req.Text,
		Score:    *req.Score,
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// UpdateReview applies a partial update. Title, author and pub_date never
// change.
func (s *Service) UpdateReview(
	ctx context.Context,
	review *Review,
	req UpdateReviewRequest,
) (*Review, error) {
	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}

	if err := s.repo.UpdateReview(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *Service) DeleteReview(ctx context.Context, review *Review) error {
	return s.repo.DeleteReview(ctx, review.ID)
}

// ListComments requires the review to belong to the title.
func (s *Service) ListComments(
	ctx context.Context,
	titleID, reviewID int64,
	page core.PageParams,
) ([]Comment, int, error) {
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListComments(ctx, reviewID, page)
}

func (s *Service) GetComment(
	ctx context.Context,
	titleID, reviewID, commentID int64,
) (*Comment, error) {
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.repo.GetComment(ctx, reviewID, commentID)
}

func (s *Service) CreateComment(
	ctx context.Context,
	titleID, reviewID int64,
	author access.Actor,
	req CommentRequest,
) (comment *Comment, err error) {
	ctx, span := core.StartSpan(ctx, "review.CreateComment",
		attribute.Int64("title.id", titleID),
		attribute.Int64("review.id", reviewID),
	)
	defer func() { core.EndSpan(span, err) }()

	if !author.Authenticated() {
		return nil, fmt.Errorf("create comment: %w", core.ErrUnauthorized)
	}

	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment = &Comment{
		ReviewID: reviewID,
		AuthorID: author.ID,
		Text:     req.Text,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *Service) UpdateComment(
	ctx context.Context,
	comment *Comment,
	req CommentRequest,
) (*Comment, error) {
	comment.Text = req.Text

	if err := s.repo.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, comment *Comment) error {
	return s.repo.DeleteComment(ctx, comment.ID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
