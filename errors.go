package skillsprint

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeUnauthorized     = "UNAUTHORIZED"
	TextCodeForbidden        = "FORBIDDEN"
	TextCodeServerError      = "SERVER_ERROR"
	TextCodeNetworkError     = "NETWORK_ERROR"
	TextCodeRequestFailed    = "REQUEST_FAILED"
	TextCodeInvalidResponse  = "INVALID_RESPONSE"
	TextCodeMissingToken     = "MISSING_TOKEN"
	TextCodeInvalidPayload   = "INVALID_PAYLOAD"
	TextCodeChallengeMissing = "CHALLENGE_NOT_FOUND"
)

// Messages shown for transport failures
const (
	MessageNotAuthorized    = "You are not authorized to perform this action"
	MessageServerError      = "Server error. Please try again later."
	MessageNetworkError     = "Network error. Backend not reachable."
	MessagePermissionDenied = "Permission Denied: Admin access required."
)

// ErrInvalidResponse is returned when a 2xx body can not be decoded
var ErrInvalidResponse = errors.New("invalid response from server", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidResponse).
	WithCode(http.StatusBadGateway)

// ErrMissingToken is returned when login succeeds without handing out a token
var ErrMissingToken = errors.New("Invalid response from server", errors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidPayload wraps client side validation failures
var ErrInvalidPayload = errors.New("invalid request payload", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidPayload).
	WithCode(errors.CodeBadRequest)

// ErrChallengeNotFound is returned when a challenge id is not in the listing
var ErrChallengeNotFound = errors.New("Challenge not found.", errors.CategoryNotFound).
	WithTextCode(TextCodeChallengeMissing).
	WithCode(errors.CodeNotFound)

// statusError builds the rich error for a non 2xx response
func statusError(status int, body []byte, meta map[string]any) *errors.Error {
	var richErr *errors.Error

	switch {
	case status == http.StatusUnauthorized:
		richErr = errors.New("authentication expired or invalid", errors.CategoryAuth).
			WithTextCode(TextCodeUnauthorized)
	case status == http.StatusForbidden:
		richErr = errors.New(MessageNotAuthorized, errors.CategoryAuthz).
			WithTextCode(TextCodeForbidden)
	case status >= http.StatusInternalServerError:
		richErr = errors.New(MessageServerError, errors.CategoryInternal).
			WithTextCode(TextCodeServerError)
	default:
		richErr = errors.New(http.StatusText(status), categoryForStatus(status)).
			WithTextCode(TextCodeRequestFailed)
	}

	richErr = richErr.WithCode(status)

	if meta == nil {
		meta = map[string]any{}
	}
	meta["status"] = status
	if msg, ok := bodyMessage(body); ok {
		meta["message"] = msg
	}
	return richErr.WithMetadata(meta)
}

// networkError wraps a failure where no response was received
func networkError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryOperation, MessageNetworkError).
		WithTextCode(TextCodeNetworkError)
}

func categoryForStatus(status int) errors.Category {
	switch status {
	case http.StatusNotFound:
		return errors.CategoryNotFound
	case http.StatusConflict:
		return errors.CategoryConflict
	case http.StatusUnprocessableEntity:
		return errors.CategoryValidation
	default:
		return errors.CategoryBadInput
	}
}

// bodyMessage extracts a textual message from an error body. JSON bodies
// contribute their message field, plain text bodies are used as is.
func bodyMessage(body []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", false
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return trimmed, true
	}

	switch v := payload.(type) {
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg, true
		}
	case string:
		if v != "" {
			return v, true
		}
	}
	return "", false
}

// StatusCode returns the HTTP status carried by err, 0 when none
func StatusCode(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return 0
	}
	if richErr.TextCode == TextCodeNetworkError {
		return 0
	}
	if richErr.Metadata != nil {
		if status, ok := richErr.Metadata["status"].(int); ok {
			return status
		}
	}
	return 0
}

// ErrorMessage returns the backend provided message for err, or fallback
// when the response carried nothing textual
func ErrorMessage(err error, fallback string) string {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return fallback
	}
	if richErr.Metadata != nil {
		if msg, ok := richErr.Metadata["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fallback
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

func IsServerError(err error) bool {
	return StatusCode(err) >= http.StatusInternalServerError
}

// IsNetworkError reports a failure where the backend never answered
func IsNetworkError(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeNetworkError
}

// IsAdminKeyError reports login failures caused by a bad admin key, which
// the login screen shows as a header alert instead of a notification
func IsAdminKeyError(err error) bool {
	msg := strings.ToLower(ErrorMessage(err, ""))
	return strings.Contains(msg, "admin key")
}
