// AngelaMos | 2026
// dto.go

package user

import (
	"strings"

	"github.com/carterperez-dev/yamdb/internal/access"
	"github.com/carterperez-dev/yamdb/internal/core"
)

type CreateUserRequest struct {
	Username  string  `json:"username"   validate:"required,max=150,username"`
	Email     string  `json:"email"      validate:"required,email,max=254"`
	FirstName string  `json:"first_name" validate:"max=150"`
	LastName  string  `json:"last_name"  validate:"max=150"`
	Bio       *string `json:"bio"`
	Role      string  `json:"role"       validate:"omitempty,oneof=user moderator admin"`
}

func (r *CreateUserRequest) Trim() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

// Replacement turns a full PUT body into an update that overwrites every
// field. An omitted role falls back to user and an omitted bio is
// cleared.
func (r CreateUserRequest) Replacement() UpdateUserRequest {
	role := r.Role
	if role == "" {
		role = access.RoleUser
	}
	bio := r.Bio
	if bio == nil {
		bio = new(string)
	}

	return UpdateUserRequest{
		Username:  &r.Username,
		Email:     &r.Email,
		FirstName: &r.FirstName,
		LastName:  &r.LastName,
		Bio:       bio,
		Role:      &role,
	}
}

// UpdateUserRequest is a partial update issued by an admin.
type UpdateUserRequest struct {
	Username  *string `json:"username"   validate:"omitempty,max=150,username"`
	Email     *string `json:"email"      validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"       validate:"omitempty,oneof=user moderator admin"`
}

// UpdateMeRequest is a self-service update. It has no role field: a role
// sent by the caller is decoded away and never applied.
type UpdateMeRequest struct {
	Username  *string `json:"username"   validate:"omitempty,max=150,username"`
	Email     *string `json:"email"      validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
}

func (r UpdateMeRequest) asUpdate() UpdateUserRequest {
	return UpdateUserRequest{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
	}
}

type UserResponse struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      string  `json:"role"`
}

type ListUsersParams struct {
	core.PageParams
	Search string
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.EffectiveRole(),
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
