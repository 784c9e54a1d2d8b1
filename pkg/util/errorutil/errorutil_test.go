package errorutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{"unauthorized", NewUnauthorized(), CodeUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{"not found", NewNotFound(InvalidTicketID), CodeNotFound, http.StatusBadRequest, InvalidTicketID},
		{"validation", NewValidationError("category", "Category is required"), CodeValidationFailed, http.StatusBadRequest, "Category is required"},
		{"credentials", NewInvalidCredentials("Invalid Token", nil), CodeInvalidCredentials, http.StatusBadRequest, "Invalid Token"},
		{"raw error", errors.New("disk full"), CodeInternal, http.StatusBadRequest, "disk full"},
		{"fiber error", fiber.ErrNotFound, CodeRouting, http.StatusNotFound, "Cannot GET"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDomainError(tc.err)
			if got.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tc.wantCode)
			}
			if got.HTTPStatus != tc.wantStatus {
				t.Errorf("status = %d, want %d", got.HTTPStatus, tc.wantStatus)
			}
			if tc.name != "fiber error" && got.Message != tc.wantMsg {
				t.Errorf("message = %q, want %q", got.Message, tc.wantMsg)
			}
		})
	}
}

func TestToDomainErrorUnwrapsWrapped(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), NewNotFound(InvalidTicketID))
	if !IsCode(wrapped, CodeNotFound) {
		t.Fatalf("expected wrapped not-found to be detected")
	}
	if ToDomainError(nil) != nil {
		t.Fatalf("nil error must map to nil")
	}
}
