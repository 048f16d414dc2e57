package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/casebuddy/casebuddy/internal/shared"
)

var titler = cases.Title(language.English)

// ValidationError carries field-level detail for malformed input. It is
// produced at the route boundary and never reaches the service layer.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError converts validator output into the field-keyed
// detail map the API returns.
func NewValidationError(err error) *ValidationError {
	details := make(map[string]string)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			field := jsonField(fe.Field())
			switch fe.Tag() {
			case "required":
				details[field] = fmt.Sprintf("%s is required", titler.String(field))
			case "max":
				details[field] = fmt.Sprintf("%s is too long", titler.String(field))
			case "oneof":
				details[field] = fmt.Sprintf("%s must be one of: %s", titler.String(field), fe.Param())
			default:
				details[field] = fmt.Sprintf("%s is invalid", titler.String(field))
			}
		}
	}
	return &ValidationError{Details: details}
}

func jsonField(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// RespondError maps domain errors to HTTP responses. Anything outside
// the known taxonomy becomes a generic 500; internals are never leaked
// to the client.
func RespondError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		JSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Validation failed",
			"details": vErr.Details,
		})
	case errors.Is(err, shared.ErrUsernameTaken):
		Error(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, shared.ErrEmailTaken):
		Error(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, shared.ErrAccountDeactivated):
		Error(w, http.StatusUnauthorized, "Account is deactivated")
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, "Not found")
	default:
		Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
