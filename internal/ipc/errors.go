package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// UnknownErrorMessage is reported when Hachimi returns an error without a message.
const UnknownErrorMessage = "Unknown error"

// TransportError indicates the request did not produce a complete HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("hachimi request timed out: %v", e.Err)
	}
	return fmt.Sprintf("hachimi request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request was abandoned because a deadline expired.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// HTTPError indicates Hachimi answered with a non-success status code.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("hachimi HTTP error: status %d", e.StatusCode)
}

// DecodeError indicates the response body is not a known Hachimi response.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode hachimi response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RemoteError indicates Hachimi received the command but failed to run it.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "Hachimi error: " + e.Message
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsTimeout reports whether err is a transport failure caused by a timeout.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Timeout()
}

// IsHTTP reports whether err is an HTTP status failure.
func IsHTTP(err error) bool {
	var he *HTTPError
	return errors.As(err, &he)
}

// IsDecode reports whether err is a response decoding failure.
func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsRemote reports whether err is an error reported by Hachimi itself.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
