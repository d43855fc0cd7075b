// AngelaMos | 2026
// policy.go

package access

// Resource is a concrete instance a decision can be made against.
type Resource interface {
	OwnerID() string
}

// Owner is a Resource for callers that only know the owning identity.
type Owner string

func (o Owner) OwnerID() string {
	return string(o)
}

type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) Allowed() bool {
	return d == Allow
}

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Policy decides a single endpoint family. res is nil for collection
// level checks.
type Policy func(actor Actor, action Action, res Resource) Decision

func Authorize(p Policy, actor Actor, action Action, res Resource) Decision {
	if p == nil {
		return Forbidden
	}
	return p(actor, action, res)
}

// Content governs reviews and comments. Anyone may read. Authenticated
// actors may create; changing an existing object needs moderator rank or
// authorship.
func Content(actor Actor, action Action, res Resource) Decision {
	if action.Safe() {
		return Allow
	}

	switch actor.Kind {
	case Anonymous:
		return Unauthenticated
	case Moderator, Admin, Superuser:
		return Allow
	case User:
		if res == nil {
			if action == Create {
				return Allow
			}
			return Forbidden
		}
		if action == Create || isOwner(actor, res) {
			return Allow
		}
		return Forbidden
	default:
		return Forbidden
	}
}

// Catalog governs categories, genres and titles: readable by anyone,
// writable by admins.
func Catalog(actor Actor, action Action, _ Resource) Decision {
	if action.Safe() {
		return Allow
	}

	switch actor.Kind {
	case Anonymous:
		return Unauthenticated
	case Admin, Superuser:
		return Allow
	case User, Moderator:
		return Forbidden
	default:
		return Forbidden
	}
}

// UserAdmin governs the user administration resource. Every action,
// including reads, requires an admin.
func UserAdmin(actor Actor, _ Action, _ Resource) Decision {
	switch actor.Kind {
	case Anonymous:
		return Unauthenticated
	case Admin, Superuser:
		return Allow
	case User, Moderator:
		return Forbidden
	default:
		return Forbidden
	}
}

// SelfService lets any authenticated actor read and edit their own
// account, regardless of role.
func SelfService(actor Actor, action Action, res Resource) Decision {
	if !actor.Authenticated() {
		return Unauthenticated
	}

	switch action {
	case Retrieve, Update, PartialUpdate:
	case List, Create, Destroy:
		return Forbidden
	default:
		return Forbidden
	}

	if res == nil || isOwner(actor, res) {
		return Allow
	}
	return Forbidden
}

func isOwner(actor Actor, res Resource) bool {
	return actor.ID != "" && res.OwnerID() == actor.ID
}
