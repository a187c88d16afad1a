package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// maxErrorBody caps how much of a failed response is read for its message
const maxErrorBody = 1 << 20

// Error is the single failure kind surfaced by the client. Its message is
// meant to be shown to the user verbatim.
type Error struct {
	Op         string
	Message    string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a client request timeout
func IsTimeout(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Timeout
}

// Message returns the user-facing text of err
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

// errNoImageURL is returned when a JSON /image response has no URL member
var errNoImageURL = errors.New("no image URL found in response")

// statusError builds the failure for a non-2xx response. The message comes
// from the body's detail or message member when the body is JSON; any
// problem reading the body falls back to the status line.
func statusError(op string, resp *http.Response) *Error {
	msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, statusText(resp))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		if detail := bodyMessage(body); detail != "" {
			msg = detail
		}
	}

	return &Error{Op: op, Message: msg, StatusCode: resp.StatusCode}
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// bodyMessage extracts detail, then message, from a JSON error body
func bodyMessage(body []byte) string {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "message"} {
		if text := messageText(parsed[key]); text != "" {
			return text
		}
	}
	return ""
}

// messageText renders a truthy JSON value; structured details such as
// validation error lists are re-encoded as JSON.
func messageText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if !val {
			return ""
		}
		return "true"
	case float64:
		if val == 0 {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
