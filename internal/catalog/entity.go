// AngelaMos | 2026
// entity.go

// Package catalog serves categories, genres and titles.
package catalog

import (
	"fmt"

	"github.com/carterperez-dev/yamdb/internal/core"
)

// Term is a category or a genre. Both share the same shape and are
// addressed by slug.
type Term struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

// Taxonomy describes where a kind of Term is stored.
type Taxonomy struct {
	Name       string
	Table      string
	Constraint string
}

var (
	Categories = Taxonomy{
		Name:       "category",
		Table:      "categories",
		Constraint: "categories_slug_key",
	}
	Genres = Taxonomy{
		Name:       "genre",
		Table:      "genres",
		Constraint: "genres_slug_key",
	}
)

func (t Taxonomy) slugTaken() string {
	return fmt.Sprintf("%s with this slug already exists", t.Name)
}

func missingSlug(slug string) string {
	return fmt.Sprintf("object with slug=%s does not exist", slug)
}

// Title is a work that can be reviewed. Category, Genres and Rating are
// populated on read.
type Title struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Year        int    `db:"year"`
	Description string `db:"description"`
	CategoryID  *int64 `db:"category_id"`

	Category *Term    `db:"-"`
	Genres   []Term   `db:"-"`
	Rating   *float64 `db:"-"`
}

// TitleFilter narrows a title listing. Category, Genre and Name match by
// case-insensitive substring; Year matches exactly.
type TitleFilter struct {
	core.PageParams
	Category string
	Genre    string
	Name     string
	Year     *int
}
