// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/yamdb/internal/access"
	"github.com/carterperez-dev/yamdb/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account with the default role for self-service
// signup.
func (s *Service) Register(
	ctx context.Context,
	username, email string,
) (*User, error) {
	return s.Create(ctx, CreateUserRequest{
		Username: username,
		Email:    email,
		Role:     access.RoleUser,
	})
}

func (s *Service) Create(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	req.Trim()

	if err := ValidateUsername(req.Username); err != nil {
		return nil, err
	}

	user := &User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     strings.ToLower(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	}
	user.normalize()

	if err := s.checkAvailable(ctx, user.Username, user.Email); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// CreateSuperuser bootstraps an administrator from the command line.
// Reserved usernames are allowed here.
func (s *Service) CreateSuperuser(
	ctx context.Context,
	username, email string,
) (*User, error) {
	user := &User{
		ID:          uuid.New().String(),
		Username:    strings.TrimSpace(username),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		IsSuperuser: true,
	}
	user.normalize()

	if user.Username == "" || user.Email == "" {
		verr := core.NewValidationError()
		if user.Username == "" {
			verr.Add("username", "this field is required")
		}
		if user.Email == "" {
			verr.Add("email", "this field is required")
		}
		return nil, verr
	}

	if err := s.checkAvailable(ctx, user.Username, user.Email); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// checkAvailable reports every non-empty value that is already taken.
// The unique indexes remain the source of truth.
func (s *Service) checkAvailable(ctx context.Context, username, email string) error {
	verr := core.NewValidationError()

	if username != "" {
		exists, err := s.repo.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			verr.Add("username", msgUsernameTaken)
		}
	}

	if email != "" {
		exists, err := s.repo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			verr.Add("email", msgEmailTaken)
		}
	}

	return verr.OrNil()
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// ResolveActor loads the current role of an authenticated subject so that
// role changes apply to already issued credentials.
func (s *Service) ResolveActor(
	ctx context.Context,
	id string,
) (access.Actor, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return access.AnonymousActor(), err
	}
	return user.Actor(), nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	username string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, user, req)
}

func (s *Service) DeleteUser(ctx context.Context, username string) error {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, user.ID)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateMeRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, user, req.asUpdate())
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) apply(
	ctx context.Context,
	user *User,
	req UpdateUserRequest,
) (*User, error) {
	var newUsername, newEmail string

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name != user.Username {
			if err := ValidateUsername(name); err != nil {
				return nil, err
			}
			newUsername = name
			user.Username = name
		}
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			newEmail = email
			user.Email = email
		}
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	user.normalize()

	if err := s.checkAvailable(ctx, newUsername, newEmail); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
