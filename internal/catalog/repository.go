// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/yamdb/internal/core"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type TermRepository interface {
	List(ctx context.Context, search string, page core.PageParams) ([]Term, int, error)
	Create(ctx context.Context, term *Term) error
	DeleteBySlug(ctx context.Context, slug string) error
	GetBySlugs(ctx context.Context, slugs []string) ([]Term, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Term, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

type termRepository struct {
	db       core.DBTX
	taxonomy Taxonomy
}

func NewTermRepository(db core.DBTX, taxonomy Taxonomy) TermRepository {
	return &termRepository{db: db, taxonomy: taxonomy}
}

func (r *termRepository) List(
	ctx context.Context,
	search string,
	page core.PageParams,
) ([]Term, int, error) {
	page.Normalize()

	where := squirrel.And{}
	if search != "" {
		where = append(where, squirrel.ILike{"name": core.ContainsPattern(search)})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").
		From(r.taxonomy.Table).
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: build query: %w", r.taxonomy.Table, err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.taxonomy.Table, err)
	}

	query, args, err := psql.Select("id", "name", "slug").
		From(r.taxonomy.Table).
		Where(where).
		OrderBy("name ASC", "id ASC").
		Limit(page.LimitU()).
		Offset(page.OffsetU()).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: build query: %w", r.taxonomy.Table, err)
	}

	terms := []Term{}
	if err := r.db.SelectContext(ctx, &terms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.taxonomy.Table, err)
	}

	return terms, total, nil
}

func (r *termRepository) Create(ctx context.Context, term *Term) error {
	query, args, err := psql.Insert(r.taxonomy.Table).
		Columns("name", "slug").
		Values(term.Name, term.Slug).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("create %s: build query: %w", r.taxonomy.Name, err)
	}

	if err := r.db.GetContext(ctx, &term.ID, query, args...); err != nil {
		if name, ok := core.UniqueViolation(err); ok && name == r.taxonomy.Constraint {
			return fmt.Errorf("create %s: %w", r.taxonomy.Name,
				core.FieldError("slug", r.taxonomy.slugTaken()))
		}
		return fmt.Errorf("create %s: %w", r.taxonomy.Name, err)
	}

	return nil
}

func (r *termRepository) DeleteBySlug(ctx context.Context, slug string) error {
	query, args, err := psql.Delete(r.taxonomy.Table).
		Where(squirrel.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return fmt.Errorf("delete %s: build query: %w", r.taxonomy.Name, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.taxonomy.Name, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.taxonomy.Name, err)
	}

	if rows == 0 {
		return fmt.Errorf("delete %s: %w", r.taxonomy.Name, core.ErrNotFound)
	}

	return nil
}

func (r *termRepository) GetBySlugs(ctx context.Context, slugs []string) ([]Term, error) {
	if len(slugs) == 0 {
		return []Term{}, nil
	}
	return r.selectWhere(ctx, squirrel.Eq{"slug": slugs})
}

func (r *termRepository) GetByIDs(ctx context.Context, ids []int64) ([]Term, error) {
	if len(ids) == 0 {
		return []Term{}, nil
	}
	return r.selectWhere(ctx, squirrel.Eq{"id": ids})
}

func (r *termRepository) selectWhere(ctx context.Context, pred squirrel.Sqlizer) ([]Term, error) {
	query, args, err := psql.Select("id", "name", "slug").
		From(r.taxonomy.Table).
		Where(pred).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get %s: build query: %w", r.taxonomy.Table, err)
	}

	terms := []Term{}
	if err := r.db.SelectContext(ctx, &terms, query, args...); err != nil {
		return nil, fmt.Errorf("get %s: %w", r.taxonomy.Table, err)
	}

	return terms, nil
}

func (r *termRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1)`, r.taxonomy.Table)

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, slug); err != nil {
		return false, fmt.Errorf("check %s slug exists: %w", r.taxonomy.Name, err)
	}

	return exists, nil
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter) ([]Title, int, error)
	GetByID(ctx context.Context, id int64) (*Title, error)
	Create(ctx context.Context, title *Title, genreIDs []int64) error
	Update(ctx context.Context, title *Title, genreIDs []int64) error
	Delete(ctx context.Context, id int64) error
	GenresFor(ctx context.Context, titleIDs []int64) (map[int64][]Term, error)
	Count(ctx context.Context) (int, error)
}

var titleColumns = []string{"id", "name", "year", "description", "category_id"}

type titleRepository struct {
	db *sqlx.DB
}

func NewTitleRepository(db *sqlx.DB) TitleRepository {
	return &titleRepository{db: db}
}

func titleWhere(f TitleFilter) squirrel.And {
	where := squirrel.And{}
	if f.Name != "" {
		where = append(where, squirrel.ILike{"name": core.ContainsPattern(f.Name)})
	}
	if f.Year != nil {
		where = append(where, squirrel.Eq{"year": *f.Year})
	}
	if f.Category != "" {
		where = append(where, squirrel.Expr(
			"category_id IN (SELECT id FROM categories WHERE slug ILIKE ?)",
			core.ContainsPattern(f.Category),
		))
	}
	if f.Genre != "" {
		where = append(where, squirrel.Expr(
			"id IN (SELECT tg.title_id FROM title_genres tg "+
				"JOIN genres g ON g.id = tg.genre_id WHERE g.slug ILIKE ?)",
			core.ContainsPattern(f.Genre),
		))
	}
	return where
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter) ([]Title, int, error) {
	filter.Normalize()
	where := titleWhere(filter)

	countQuery, countArgs, err := psql.Select("COUNT(*)").
		From("titles").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("count titles: build query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	query, args, err := psql.Select(titleColumns...).
		From("titles").
		Where(where).
		OrderBy("name ASC", "id ASC").
		Limit(filter.LimitU()).
		Offset(filter.OffsetU()).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: build query: %w", err)
	}

	titles := []Title{}
	if err := r.db.SelectContext(ctx, &titles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}

	return titles, total, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*Title, error) {
	query, args, err := psql.Select(titleColumns...).
		From("titles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get title: build query: %w", err)
	}

	var title Title
	err = r.db.GetContext(ctx, &title, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get title: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get title: %w", err)
	}

	return &title, nil
}

// Create inserts the title and its genre links in one transaction.
func (r *titleRepository) Create(ctx context.Context, title *Title, genreIDs []int64) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO titles (name, year, description, category_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id`

		err := tx.GetContext(ctx, &title.ID, query,
			title.Name,
			title.Year,
			title.Description,
			title.CategoryID,
		)
		if err != nil {
			return fmt.Errorf("create title: %w", err)
		}

		return linkGenres(ctx, tx, title.ID, genreIDs)
	})
}

// Update writes every column. A nil genreIDs keeps the current links; a
// non-nil slice replaces them.
func (r *titleRepository) Update(ctx context.Context, title *Title, genreIDs []int64) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE titles
			SET name = $2, year = $3, description = $4, category_id = $5
			WHERE id = $1`

		result, err := tx.ExecContext(ctx, query,
			title.ID,
			title.Name,
			title.Year,
			title.Description,
			title.CategoryID,
		)
		if err != nil {
			return fmt.Errorf("update title: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update title: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("update title: %w", core.ErrNotFound)
		}

		if genreIDs == nil {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM title_genres WHERE title_id = $1`, title.ID); err != nil {
			return fmt.Errorf("update title genres: %w", err)
		}

		return linkGenres(ctx, tx, title.ID, genreIDs)
	})
}

func linkGenres(ctx context.Context, tx *sqlx.Tx, titleID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}

	insert := psql.Insert("title_genres").Columns("title_id", "genre_id")
	for _, id := range genreIDs {
		insert = insert.Values(titleID, id)
	}

	query, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("link genres: build query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("link genres: %w", err)
	}

	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete title: %w", core.ErrNotFound)
	}

	return nil
}

type titleGenre struct {
	TitleID int64 `db:"title_id"`
	Term
}

func (r *titleRepository) GenresFor(
	ctx context.Context,
	titleIDs []int64,
) (map[int64][]Term, error) {
	out := make(map[int64][]Term, len(titleIDs))
	if len(titleIDs) == 0 {
		return out, nil
	}

	query, args, err := psql.Select("tg.title_id", "g.id", "g.name", "g.slug").
		From("title_genres tg").
		Join("genres g ON g.id = tg.genre_id").
		Where(squirrel.Eq{"tg.title_id": titleIDs}).
		OrderBy("g.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("title genres: build query: %w", err)
	}

	var rows []titleGenre
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("title genres: %w", err)
	}

	for _, row := range rows {
		out[row.TitleID] = append(out[row.TitleID], row.Term)
	}

	return out, nil
}

func (r *titleRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM titles`); err != nil {
		return 0, fmt.Errorf("count titles: %w", err)
	}
	return n, nil
}
