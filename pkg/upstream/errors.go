package upstream

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload is returned when a 2xx response does not carry valid JSON.
var ErrMalformedPayload = errors.New("malformed upstream payload")

// maxErrorBody bounds how much of an error body is echoed back to callers.
const maxErrorBody = 256

// HTTPError is returned for non-2xx upstream responses.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	body := string(e.Body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	if body == "" {
		return fmt.Sprintf("upstream responded %s", e.Status)
	}
	return fmt.Sprintf("upstream responded %s: %s", e.Status, body)
}
