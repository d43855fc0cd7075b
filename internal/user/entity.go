// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/yamdb/internal/access"
	"github.com/carterperez-dev/yamdb/internal/core"
)

type User struct {
	ID          string     `db:"id"`
	Username    string     `db:"username"`
	Email       string     `db:"email"`
	FirstName   string     `db:"first_name"`
	LastName    string     `db:"last_name"`
	Bio         *string    `db:"bio"`
	Role        string     `db:"role"`
	IsSuperuser bool       `db:"is_superuser"`
	DateJoined  time.Time  `db:"date_joined"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// EffectiveRole is admin for superusers regardless of the stored role.
func (u *User) EffectiveRole() string {
	if u.IsSuperuser {
		return access.RoleAdmin
	}
	return u.Role
}

func (u *User) Actor() access.Actor {
	return access.Actor{
		Kind: access.KindFor(u.Role, u.IsSuperuser),
		ID:   u.ID,
	}
}

// OwnerID makes a user the resource of self-service decisions.
func (u *User) OwnerID() string {
	return u.ID
}

func (u *User) normalize() {
	if u.IsSuperuser {
		u.Role = access.RoleAdmin
	}
	if u.Role == "" {
		u.Role = access.RoleUser
	}
}

var forbiddenUsernames = map[string]struct{}{
	"me":    {},
	"Me":    {},
	"admin": {},
	"Admin": {},
}

const (
	msgUsernameForbidden = "this username is reserved"
	msgUsernameTaken     = "a user with that username already exists"
	msgEmailTaken        = "a user with that email already exists"
)

// ValidateUsername rejects reserved usernames. Every path that creates or
// renames a user goes through it.
func ValidateUsername(username string) error {
	if _, ok := forbiddenUsernames[username]; ok {
		return core.FieldError("username", msgUsernameForbidden)
	}
	return nil
}
