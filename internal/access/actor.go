// AngelaMos | 2026
// actor.go

// Package access decides whether an actor may perform an action on a
// resource. Every decision is a pure function of its inputs.
package access

import (
	"context"
	"fmt"
	"net/http"
)

// Kind is the closed set of actor variants. Stored roles map onto
// User, Moderator and Admin; Superuser is an account flag that outranks
// the stored role.
type Kind int

const (
	Anonymous Kind = iota
	User
	Moderator
	Admin
	Superuser
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

func (k Kind) String() string {
	switch k {
	case Anonymous:
		return "anonymous"
	case User:
		return RoleUser
	case Moderator:
		return RoleModerator
	case Admin:
		return RoleAdmin
	case Superuser:
		return "superuser"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseRole maps a stored role name to its actor kind.
func ParseRole(role string) (Kind, error) {
	switch role {
	case RoleUser:
		return User, nil
	case RoleModerator:
		return Moderator, nil
	case RoleAdmin:
		return Admin, nil
	default:
		return Anonymous, fmt.Errorf("unknown role %q", role)
	}
}

// KindFor resolves an account's effective kind. Unknown stored roles fall
// back to User so a corrupt row can never gain privileges.
func KindFor(role string, superuser bool) Kind {
	if superuser {
		return Superuser
	}
	k, err := ParseRole(role)
	if err != nil {
		return User
	}
	return k
}

type Actor struct {
	Kind Kind
	ID   string
}

func AnonymousActor() Actor {
	return Actor{Kind: Anonymous}
}

func (a Actor) Authenticated() bool {
	return a.Kind != Anonymous && a.ID != ""
}

func (a Actor) IsStaff() bool {
	switch a.Kind {
	case Admin, Superuser:
		return true
	case Anonymous, User, Moderator:
		return false
	default:
		return false
	}
}

// Action is what the actor wants to do. List and Retrieve are safe.
type Action int

const (
	List Action = iota
	Retrieve
	Create
	Update
	PartialUpdate
	Destroy
)

func (a Action) Safe() bool {
	switch a {
	case List, Retrieve:
		return true
	case Create, Update, PartialUpdate, Destroy:
		return false
	default:
		return false
	}
}

func (a Action) String() string {
	switch a {
	case List:
		return "list"
	case Retrieve:
		return "retrieve"
	case Create:
		return "create"
	case Update:
		return "update"
	case PartialUpdate:
		return "partial_update"
	case Destroy:
		return "destroy"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ActionFor maps an HTTP method to an action. detail distinguishes
// requests that target a single instance from collection requests.
func ActionFor(method string, detail bool) (Action, bool) {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		if detail {
			return Retrieve, true
		}
		return List, true
	case http.MethodPost:
		return Create, true
	case http.MethodPut:
		return Update, true
	case http.MethodPatch:
		return PartialUpdate, true
	case http.MethodDelete:
		return Destroy, true
	default:
		return 0, false
	}
}

type ctxKey struct{}

// WithActor stores the request's actor in ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// FromContext returns the request's actor, or an anonymous actor when
// none was stored.
func FromContext(ctx context.Context) Actor {
	if actor, ok := ctx.Value(ctxKey{}).(Actor); ok {
		return actor
	}
	return AnonymousActor()
}
