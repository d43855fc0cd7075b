// AngelaMos | 2026
// rating.go

package catalog

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/carterperez-dev/yamdb/internal/core"
)

// RatingSource computes the mean review score per title. Titles with no
// reviews are absent from the result.
type RatingSource interface {
	Ratings(ctx context.Context, titleIDs []int64) (map[int64]*float64, error)
}

type ratingRepository struct {
	db core.DBTX
}

func NewRatingRepository(db core.DBTX) RatingSource {
	return &ratingRepository{db: db}
}

type titleRating struct {
	TitleID int64   `db:"title_id"`
	Rating  float64 `db:"rating"`
}

// Ratings is computed live on every read; nothing is cached.
func (r *ratingRepository) Ratings(
	ctx context.Context,
	titleIDs []int64,
) (map[int64]*float64, error) {
	out := make(map[int64]*float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return out, nil
	}

	query, args, err := psql.Select("title_id", "AVG(score)::float8 AS rating").
		From("reviews").
		Where(squirrel.Eq{"title_id": titleIDs}).
		GroupBy("title_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("title ratings: build query: %w", err)
	}

	var rows []titleRating
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("title ratings: %w", err)
	}

	for _, row := range rows {
		rating := row.Rating
		out[row.TitleID] = &rating
	}

	return out, nil
}
