package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/directory"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
}

// AuthMiddleware resolves the caller identity from the Authorization header.
// A request without a token passes through anonymously; the authorization
// check decides later whether the route needs an identity.
type AuthMiddleware struct {
	directory directory.Resolver
	logger    *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver directory.Resolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{directory: resolver, logger: logger}
}

// Handle attaches the resolved principal or aborts with InvalidCredentials.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := c.Get(fiber.HeaderAuthorization)
	if token == "" {
		return c.Next()
	}

	user, err := m.directory.ResolveUser(c.UserContext(), token)
	if err != nil {
		m.logger.Warn("token rejected", zap.String("path", c.Path()), zap.Error(err))
		message := directory.DefaultRejection
		var dirErr *directory.Error
		if errors.As(err, &dirErr) {
			message = dirErr.Message
		} else if err.Error() != "" {
			message = err.Error()
		}
		return apperrors.NewInvalidCredentials(message, err)
	}

	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.User != nil
}
