// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/yamdb/internal/config"
	"github.com/carterperez-dev/yamdb/internal/core"
	"github.com/carterperez-dev/yamdb/internal/middleware"
	"github.com/carterperez-dev/yamdb/internal/notify"
	"github.com/carterperez-dev/yamdb/internal/user"
)

// ErrIdentityMismatch means a valid code was presented for a different
// user than the one it was issued to.
var ErrIdentityMismatch = errors.New("confirmation code does not belong to this user")

type UserStore interface {
	Register(ctx context.Context, username, email string) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
}

// TokenRevoker is the session blacklist.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type Service struct {
	users   UserStore
	codes   *CodeIssuer
	jwt     *JWTManager
	revoker TokenRevoker
	sender  notify.Sender
	mail    config.MailConfig
	logger  *slog.Logger
}

type ServiceConfig struct {
	Users   UserStore
	Codes   *CodeIssuer
	JWT     *JWTManager
	Revoker TokenRevoker
	Sender  notify.Sender
	Mail    config.MailConfig
	Logger  *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		users:   cfg.Users,
		codes:   cfg.Codes,
		jwt:     cfg.JWT,
		revoker: cfg.Revoker,
		sender:  cfg.Sender,
		mail:    cfg.Mail,
		logger:  logger,
	}
}

// Signup registers a user and mails a confirmation code. The account is
// committed before delivery; a delivery failure is logged and the signup
// still succeeds.
func (s *Service) Signup(
	ctx context.Context,
	username, email string,
) (resp *SignupResponse, err error) {
	ctx, span := core.StartSpan(ctx, "auth.Signup")
	defer func() { core.EndSpan(span, err) }()

	u, err := s.users.Register(ctx, username, email)
	if err != nil {
		return nil, err
	}

	code, err := s.codes.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue confirmation code: %w", err)
	}

	msg := notify.ConfirmationMessage(s.mail, u.Email, code)
	if sendErr := s.sender.Send(ctx, msg); sendErr != nil {
		s.logger.WarnContext(ctx, "confirmation delivery failed",
			"user_id", u.ID,
			"error", sendErr,
		)
		core.AddSpanEvent(ctx, "confirmation_delivery_failed",
			attribute.String("user.id", u.ID),
		)
	}

	// Echo the address as submitted; the stored copy is lowercased.
	return &SignupResponse{Username: u.Username, Email: email}, nil
}

// ExchangeForSession trades a confirmation code for a session token. Each
// successful exchange mints a new token; codes stay valid.
func (s *Service) ExchangeForSession(
	ctx context.Context,
	username, code string,
) (token string, err error) {
	ctx, span := core.StartSpan(ctx, "auth.ExchangeForSession")
	defer func() {
		if errors.Is(err, core.ErrNotFound) || errors.Is(err, ErrIdentityMismatch) {
			core.EndSpan(span, nil)
			return
		}
		core.EndSpan(span, err)
	}()

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	subject, err := s.codes.Verify(code)
	if err != nil {
		return "", err
	}

	if subject != u.ID {
		return "", ErrIdentityMismatch
	}

	token, err = s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: u.ID,
		Role:   u.EffectiveRole(),
	})
	if err != nil {
		return "", fmt.Errorf("create access token: %w", err)
	}

	return token, nil
}

// VerifyAccessToken validates a session token and rejects revoked ones.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoker.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

// Logout revokes the presented session token until it would have expired.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.revoker.RevokeToken(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
