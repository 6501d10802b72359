package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dom/snake-game-api/internal/auth"
)

// maxFieldLength matches the width of the username and email columns.
const maxFieldLength = 100

// validationError is reported to the client as a 422.
type validationError struct {
	field  string
	reason string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("%s %s", e.field, e.reason)
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &validationError{field: field, reason: "is required"}
	}
	if len(value) > maxFieldLength {
		return &validationError{field: field, reason: fmt.Sprintf("must be at most %d characters", maxFieldLength)}
	}
	return nil
}

func requirePassword(password string) error {
	if password == "" {
		return &validationError{field: "password", reason: "is required"}
	}
	if len(password) > auth.MaxPasswordBytes {
		return &validationError{field: "password", reason: fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes)}
	}
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// decodeJSON reads a JSON body into v. Unknown fields are ignored.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
