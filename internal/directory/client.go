package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
)

const lookupPath = "/users/me"

// DefaultRejection is reported when the directory rejects a token without a message.
const DefaultRejection = "Invalid Token"

// Error is returned when a token cannot be resolved to a user.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Resolver resolves bearer tokens to user identities.
type Resolver interface {
	ResolveUser(ctx context.Context, token string) (*domain.User, error)
}

// Client performs a single lookup per call against the directory service.
// There is no retry and no caching.
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient builds a directory client from configuration.
func NewClient(cfg config.DirectoryConfig) *Client {
	return &Client{baseURL: strings.TrimRight(cfg.BaseURL, "/"), timeout: cfg.Timeout()}
}

type rejectionBody struct {
	Message string `json:"message"`
}

// ResolveUser forwards the raw token as the Authorization header of GET /users/me.
// The call is bounded by the configured timeout, shortened to the context
// deadline when one is set.
func (c *Client) ResolveUser(ctx context.Context, token string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}

	agent := fiber.Get(c.baseURL + lookupPath)
	agent.Set(fiber.HeaderAuthorization, token)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if timeout := c.effectiveTimeout(ctx); timeout > 0 {
		agent.Timeout(timeout)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		err := errors.Join(errs...)
		return nil, &Error{Message: fmt.Sprintf("directory unavailable: %v", err), Err: err}
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return nil, &Error{StatusCode: status, Message: rejectionMessage(body)}
	}

	var user domain.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, &Error{StatusCode: status, Message: fmt.Sprintf("invalid directory response: %v", err), Err: err}
	}
	if user.ID == "" {
		return nil, &Error{StatusCode: status, Message: DefaultRejection}
	}
	return &user, nil
}

func (c *Client) effectiveTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func rejectionMessage(body []byte) string {
	var rejection rejectionBody
	if err := json.Unmarshal(body, &rejection); err == nil && strings.TrimSpace(rejection.Message) != "" {
		return rejection.Message
	}
	return DefaultRejection
}
