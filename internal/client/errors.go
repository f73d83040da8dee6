package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every failure a Client can return.
type Kind int

const (
	// KindValidation: the server rejected the input (4xx other than 404).
	KindValidation Kind = iota + 1
	// KindNotFound: the referenced todo does not exist.
	KindNotFound
	// KindTransport: network failure, timeout or a body that is not JSON.
	KindTransport
	// KindServer: the server failed while handling a well-formed request.
	KindServer
	// KindCancelled: the caller gave up before the call finished.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the normalized failure of a client call.
type Error struct {
	Kind Kind
	// Status is the HTTP status code, 0 when no response was received.
	Status int
	// Message is the server-supplied error text, if any.
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s error (%d)", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the text a UI shows for this failure.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindValidation:
		if e.Message != "" {
			return e.Message
		}
		return "The request was invalid."
	case KindNotFound:
		return "That todo no longer exists."
	case KindTransport:
		return "Could not reach the server. Check your connection and try again."
	case KindCancelled:
		return "Request cancelled."
	default:
		return "Something went wrong, please try again later."
	}
}

// IsKind reports whether err is a client *Error of kind k.
func IsKind(err error, k Kind) bool {
	var cerr *Error
	return errors.As(err, &cerr) && cerr.Kind == k
}

// UserMessage returns the user-facing text for any error returned by a Client.
func UserMessage(err error) string {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.UserMessage()
	}
	return (&Error{Kind: KindServer}).UserMessage()
}

func cancelled(ctx context.Context) *Error {
	return &Error{Kind: KindCancelled, Err: ctx.Err()}
}

// normalize is the single place where transport outcomes become an *Error.
// err is a failure to obtain or read a response; otherwise status and body
// describe a non-success response.
func normalize(ctx context.Context, err error, status int, body []byte) *Error {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}
	if ctx.Err() != nil {
		return cancelled(ctx)
	}
	if err != nil {
		return &Error{Kind: KindTransport, Err: err}
	}

	var payload struct {
		Error string `json:"error"`
	}
	jsonErr := json.Unmarshal(body, &payload)

	switch {
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: status, Message: payload.Error}
	case status >= 400 && status < 500:
		return &Error{Kind: KindValidation, Status: status, Message: payload.Error}
	case status >= 500 && jsonErr != nil:
		// A gateway page instead of our JSON: the API was never reached.
		return &Error{Kind: KindTransport, Status: status, Err: fmt.Errorf("non-JSON %d response", status)}
	default:
		return &Error{Kind: KindServer, Status: status, Message: payload.Error}
	}
}
