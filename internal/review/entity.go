// AngelaMos | 2026
// entity.go

// Package review serves reviews of titles and the comments on them.
package review

import (
	"time"
)

const msgAlreadyReviewed = "you have already reviewed this title"

// Review is one author's scored opinion of a title. Author is the
// author's username, joined on read.
type Review struct {
	ID       int64     `db:"id"`
	TitleID  int64     `db:"title_id"`
	AuthorID string    `db:"author_id"`
	Author   string    `db:"author"`
	Text     string    `db:"text"`
	Score    int       `db:"score"`
	PubDate  time.Time `db:"pub_date"`
}

func (r *Review) OwnerID() string {
	return r.AuthorID
}

type Comment struct {
	ID       int64     `db:"id"`
	ReviewID int64     `db:"review_id"`
	AuthorID string    `db:"author_id"`
	Author   string    `db:"author"`
	Text     string    `db:"text"`
	PubDate  time.Time `db:"pub_date"`
}

func (c *Comment) OwnerID() string {
	return c.AuthorID
}
