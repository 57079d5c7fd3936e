package dailyquote

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrEmptyQuote indicates the quote endpoint answered without any quote text.
	ErrEmptyQuote = errors.New("dailyquote: quote has no content")
	// ErrInvalidColor indicates a value that is not a 3- or 6-digit hex colour.
	ErrInvalidColor = errors.New("dailyquote: invalid hex color")
	// ErrSchemeTooShort indicates the scheme endpoint returned fewer than three colours.
	ErrSchemeTooShort = errors.New("dailyquote: color scheme has fewer than 3 colors")
	// ErrNotCached indicates there is no record file for the requested day.
	ErrNotCached = errors.New("dailyquote: no record for day")
	// ErrDeviceIDMissing indicates deviceId is required.
	ErrDeviceIDMissing = errors.New("dailyquote: deviceId is required")
	// ErrImagePayloadMissing indicates image payload is required.
	ErrImagePayloadMissing = errors.New("dailyquote: image payload is required")
)

// APIError captures non-2xx responses from any upstream. Bodies may be JSON or plain text.
type APIError struct {
	// Host is the upstream that produced the error (e.g. "api.quotable.io").
	Host       string
	StatusCode int
	// Code is a normalized string form of the server error code when present.
	Code string
	// Message is the server message, or the trimmed body when none can be extracted.
	Message string
	RawBody []byte
}

func (e *APIError) Error() string {
	b := strings.Builder{}
	b.WriteString("dailyquote: ")
	if e.Host != "" {
		b.WriteString(e.Host)
		b.WriteString(" ")
	}
	b.WriteString("API error (status=")
	b.WriteString(strconv.Itoa(e.StatusCode))
	if e.Code != "" {
		b.WriteString(", code=")
		b.WriteString(e.Code)
	}
	b.WriteString(")")
	if m := strings.TrimSpace(e.Message); m != "" {
		b.WriteString(": ")
		b.WriteString(m)
	}
	return b.String()
}

// IsRateLimitError reports whether err wraps an APIError with HTTP status 429.
func IsRateLimitError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusTooManyRequests
}

// IsAuthError reports whether err wraps an APIError with HTTP status 401 or 403.
func IsAuthError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && (ae.StatusCode == http.StatusUnauthorized || ae.StatusCode == http.StatusForbidden)
}

func buildAPIError(host string, status int, body []byte) error {
	trimmed := strings.TrimSpace(string(body))
	ae := &APIError{Host: host, StatusCode: status, RawBody: body, Message: trimmed}
	if trimmed == "" {
		ae.Message = http.StatusText(status)
		return ae
	}
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var obj map[string]interface{}
		if err := json.Unmarshal(body, &obj); err == nil {
			extractErrorFields(ae, obj)
		}
	}
	return ae
}

// extractErrorFields reads "message", "error" or "statusMessage" and a string or numeric "code".
func extractErrorFields(ae *APIError, obj map[string]interface{}) {
	for _, k := range []string{"message", "error", "statusMessage"} {
		if v, ok := obj[k].(string); ok && v != "" {
			ae.Message = v
			break
		}
	}
	for _, k := range []string{"code", "statusCode"} {
		switch t := obj[k].(type) {
		case string:
			ae.Code = strings.TrimSpace(t)
			return
		case float64:
			ae.Code = strconv.Itoa(int(t))
			return
		}
	}
}
