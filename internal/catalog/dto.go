// AngelaMos | 2026
// dto.go

package catalog

import (
	"strings"
)

type CreateTermRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

func (r *CreateTermRequest) Trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.TrimSpace(r.Slug)
}

type TermResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateTitleRequest references its genres and category by slug. There
// is no rating field; the handler rejects unknown fields.
type CreateTitleRequest struct {
	Name        string   `json:"name"        validate:"required,max=256"`
	Year        *int     `json:"year"        validate:"required,gte=0,notfuture_year"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"       validate:"omitempty,dive,required,slug"`
	Category    *string  `json:"category"    validate:"omitempty,slug"`
}

func (r *CreateTitleRequest) Trim() {
	r.Name = strings.TrimSpace(r.Name)
}

// Replacement turns a full PUT body into an update that overwrites every
// field. Omitted genres and category are cleared.
func (r CreateTitleRequest) Replacement() UpdateTitleRequest {
	genre := r.Genre
	if genre == nil {
		genre = []string{}
	}
	category := r.Category
	if category == nil {
		category = new(string)
	}

	return UpdateTitleRequest{
		Name:        &r.Name,
		Year:        r.Year,
		Description: &r.Description,
		Genre:       genre,
		Category:    category,
	}
}

// UpdateTitleRequest is a partial update. A nil Genre leaves the links
// untouched; an empty list clears them.
type UpdateTitleRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,max=256"`
	Year        *int     `json:"year"        validate:"omitempty,gte=0,notfuture_year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"       validate:"omitempty,dive,required,slug"`
	Category    *string  `json:"category"    validate:"omitempty,slug"`
}

type TitleResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Rating      *float64       `json:"rating"`
	Description string         `json:"description"`
	Genre       []TermResponse `json:"genre"`
	Category    *TermResponse  `json:"category"`
}

func ToTermResponse(t Term) TermResponse {
	return TermResponse{Name: t.Name, Slug: t.Slug}
}

func ToTermResponseList(terms []Term) []TermResponse {
	out := make([]TermResponse, len(terms))
	for i, t := range terms {
		out[i] = ToTermResponse(t)
	}
	return out
}

func ToTitleResponse(t *Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       ToTermResponseList(t.Genres),
	}
	if t.Category != nil {
		c := ToTermResponse(*t.Category)
		resp.Category = &c
	}
	return resp
}

func ToTitleResponseList(titles []Title) []TitleResponse {
	out := make([]TitleResponse, len(titles))
	for i := range titles {
		out[i] = ToTitleResponse(&titles[i])
	}
	return out
}
