package invoker

import (
	"fmt"
	"time"
)

// Class tags a request outcome. Every outcome has exactly one class.
type Class int

const (
	// ClassSkipped marks an operation that never sent a request. It is the
	// zero value so an unset class is never mistaken for a success.
	ClassSkipped Class = iota
	ClassSuccess
	ClassClientError
	ClassServerError
	ClassTransportFailure
)

func (c Class) String() string {
	switch c {
	case ClassSkipped:
		return "skipped"
	case ClassSuccess:
		return "success"
	case ClassClientError:
		return "client_error"
	case ClassServerError:
		return "server_error"
	case ClassTransportFailure:
		return "transport_failure"
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// Classify maps a status code to its class. Anything that is neither 2xx nor
// 5xx is a client error, including 1xx and unfollowed 3xx responses.
func Classify(status int) Class {
	switch {
	case status >= 200 && status < 300:
		return ClassSuccess
	case status >= 500 && status < 600:
		return ClassServerError
	default:
		return ClassClientError
	}
}

// Outcome is the result of one logical call, after retries.
type Outcome struct {
	Method     string
	Path       string
	RequestID  string
	StatusCode int // 0 on transport failure
	Body       []byte
	Class      Class
	Err        error // set for transport failures only
	Attempts   int
	Latency    time.Duration
}

func (o Outcome) OK() bool { return o.Class == ClassSuccess }

// Retryable reports whether another attempt could change the outcome.
func (o Outcome) Retryable() bool {
	return o.Class == ClassServerError || o.Class == ClassTransportFailure
}

// TransportError is returned when the last attempt of a call failed without
// an HTTP response, or the call was cancelled.
type TransportError struct {
	Method   string
	Path     string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure after %d attempt(s): %v", e.Method, e.Path, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
