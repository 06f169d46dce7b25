package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport means the API could not be reached.
	KindTransport Kind = iota + 1
	// KindMissingToken means the call needs a token and none was given. Nothing was sent.
	KindMissingToken
	// KindDomain means the API answered with an `error` payload.
	KindDomain
	// KindStatus means the API answered with a non-2xx status and no `error` payload.
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindMissingToken:
		return "missing token"
	case KindDomain:
		return "domain"
	case KindStatus:
		return "status"
	}
	return "unknown"
}

const (
	msgTransport    = "Unable to reach the server, please try again later."
	msgMissingToken = "Please login first"
)

// Error is the error marker returned by every failed call. Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a gateway *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind == kind
	}
	return false
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: msgTransport, Err: err}
}

// domainError detects an `error` field in body, regardless of the status.
func domainError(status int, body []byte) *Error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil
	}
	raw, ok := obj["error"]
	if !ok {
		return nil
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" || msg == "null" {
		msg = fallbackMessage(status)
	}
	return &Error{Kind: KindDomain, Status: status, Message: msg}
}

func statusError(status int, body []byte) *Error {
	msg := strings.TrimSpace(string(body))
	if msg == "" || len(msg) > 200 || strings.HasPrefix(msg, "<") {
		msg = fallbackMessage(status)
	}
	return &Error{Kind: KindStatus, Status: status, Message: msg}
}

func fallbackMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("Request failed: %s", text)
	}
	return fmt.Sprintf("Request failed with status %d", status)
}
