package client

import (
	"errors"
	"fmt"
)

// ErrNoSuccess is used when a response lacks success:true and carries no error text
var ErrNoSuccess = errors.New("server did not report success")

// TransportError covers network failures and non-2xx statuses
type TransportError struct {
	Op         string
	StatusCode int // 0 when the request never got a response
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("%s: server status=%d body=%s", e.Op, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s: server status=%d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a parsed response whose success flag is not true
type ServerError struct {
	Op      string
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// IsTransport reports whether err is a network or HTTP status failure
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsServer reports whether err was reported by the server in the response body
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
