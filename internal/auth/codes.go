// AngelaMos | 2026
// codes.go

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/yamdb/internal/config"
	"github.com/carterperez-dev/yamdb/internal/core"
)

const (
	confirmationPurpose = "confirmation-code"
	confirmationType    = "confirmation"
)

// TokenError reports a confirmation code that could not be verified.
// Its message is safe to return to the caller.
type TokenError struct {
	Reason string
	Err    error
}

func (e *TokenError) Error() string {
	return e.Reason
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

func newTokenError(reason string, err error) *TokenError {
	return &TokenError{Reason: reason, Err: err}
}

// CodeIssuer signs and verifies confirmation codes. A code is an HS256
// token whose subject is the user id. Codes are not stored anywhere.
type CodeIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewCodeIssuer(cfg config.AuthConfig) (*CodeIssuer, error) {
	key, err := core.DeriveKey(cfg.SecretKey, confirmationPurpose)
	if err != nil {
		return nil, fmt.Errorf("derive confirmation key: %w", err)
	}

	return &CodeIssuer{
		key: key,
		ttl: cfg.ConfirmationCodeTTL,
		now: time.Now,
	}, nil
}

func (c *CodeIssuer) Issue(userID string) (string, error) {
	now := c.now()

	builder := jwt.NewBuilder().
		Subject(userID).
		IssuedAt(now).
		Claim("typ", confirmationType)
	if c.ttl > 0 {
		builder = builder.Expiration(now.Add(c.ttl))
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("build confirmation code: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), c.key))
	if err != nil {
		return "", fmt.Errorf("sign confirmation code: %w", err)
	}

	return string(signed), nil
}

// Verify returns the user id embedded in code. Every failure is a
// *TokenError.
func (c *CodeIssuer) Verify(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", newTokenError("confirmation code is empty", core.ErrTokenInvalid)
	}

	token, err := jwt.Parse(
		[]byte(code),
		jwt.WithKey(jwa.HS256(), c.key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(c.now)),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return "", newTokenError("confirmation code has expired", core.ErrTokenExpired)
		}
		return "", newTokenError("confirmation code is invalid", core.ErrTokenInvalid)
	}

	var typ string
	if err := token.Get("typ", &typ); err != nil || typ != confirmationType {
		return "", newTokenError("confirmation code has the wrong type", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return "", newTokenError("confirmation code has no subject", core.ErrTokenInvalid)
	}

	return subject, nil
}
