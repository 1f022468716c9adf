package backend

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("not found")

	genericErrorMessage = "the server could not process the request"
)

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is matches the status sentinels (ErrUnauthorized, ErrForbidden, ErrNotFound).
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// FieldErrors returns the per-field messages of a validation failure.
func (e *APIError) FieldErrors() map[string]string {
	return e.Fields
}

// errorBody covers the error shapes of the platform API:
// {"message": "..."}, {"error": "..."}, {"errors": {"field": "msg" | ["msg", ...]}}
type errorBody struct {
	Message string                     `json:"message"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
		if len(eb.Errors) > 0 {
			apiErr.Fields = make(map[string]string, len(eb.Errors))
			for field, raw := range eb.Errors {
				apiErr.Fields[field] = fieldMessage(raw)
			}
		}
	}

	if apiErr.Message == "" {
		if len(apiErr.Fields) > 0 {
			apiErr.Message = firstFieldMessage(apiErr.Fields)
		} else if text := http.StatusText(status); text != "" {
			apiErr.Message = strings.ToLower(text)
		} else {
			apiErr.Message = genericErrorMessage
		}
	}
	return apiErr
}

func fieldMessage(raw json.RawMessage) string {
	var msg string
	if json.Unmarshal(raw, &msg) == nil {
		return msg
	}
	var msgs []string
	if json.Unmarshal(raw, &msgs) == nil {
		return strings.Join(msgs, ", ")
	}
	return string(raw)
}

func firstFieldMessage(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0] + ": " + fields[keys[0]]
}
