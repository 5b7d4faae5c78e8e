package runtime

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ExitCode is the numeric result of a client operation. The values are
// stable and shared with the C client.
type ExitCode uint32

const (
	Success          ExitCode = 0
	NullPointerError ExitCode = 1
	AlignmentError   ExitCode = 2
	BadArgumentError ExitCode = 3

	QuantumAPIUnhandledError  ExitCode = 100
	QuantumAPIBadRequest      ExitCode = 101
	QuantumAPIUnauthenticated ExitCode = 102
	QuantumAPIForbidden       ExitCode = 103
	QuantumAPINotFound        ExitCode = 104
	QuantumAPIConflict        ExitCode = 105

	GlobalSearchAPIUnhandledError  ExitCode = 200
	GlobalSearchAPIBadRequest      ExitCode = 201
	GlobalSearchAPIUnauthenticated ExitCode = 202
	GlobalSearchAPIForbidden       ExitCode = 203
	GlobalSearchAPINotFound        ExitCode = 204
	GlobalSearchAPIConflict        ExitCode = 205

	IAMAPIUnhandledError  ExitCode = 300
	IAMAPIBadRequest      ExitCode = 301
	IAMAPIUnauthenticated ExitCode = 302
	IAMAPIForbidden       ExitCode = 303
	IAMAPINotFound        ExitCode = 304
	IAMAPIConflict        ExitCode = 305
)

// API names the remote service a request went to.
type API int

const (
	QuantumAPI API = iota
	GlobalSearchAPI
	IAMAPI
)

var apiName = map[API]string{
	QuantumAPI:      "quantum",
	GlobalSearchAPI: "global search",
	IAMAPI:          "iam",
}

var apiBase = map[API]ExitCode{
	QuantumAPI:      QuantumAPIUnhandledError,
	GlobalSearchAPI: GlobalSearchAPIUnhandledError,
	IAMAPI:          IAMAPIUnhandledError,
}

func (a API) String() string {
	return apiName[a]
}

// ServiceError is a failed call to one of the remote APIs.
type ServiceError struct {
	API        API
	StatusCode int
	Message    string
	// Err is set for transport and decoding failures, StatusCode is 0 then.
	Err error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s api: %v", e.API, e.Err)
	}
	return fmt.Sprintf("%s api: %d %s: %s", e.API, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Code maps the failure to its exit code.
func (e *ServiceError) Code() ExitCode {
	base := apiBase[e.API]
	switch e.StatusCode {
	case http.StatusBadRequest:
		return base + 1
	case http.StatusUnauthorized:
		return base + 2
	case http.StatusForbidden:
		return base + 3
	case http.StatusNotFound:
		return base + 4
	case http.StatusConflict:
		return base + 5
	}
	return base
}

// ErrBadArgument marks caller mistakes such as an empty backend name.
var ErrBadArgument = errors.New("bad argument")

// CodeOf returns the exit code for any error returned by this package.
func CodeOf(err error) ExitCode {
	if err == nil {
		return Success
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code()
	}
	if errors.Is(err, ErrBadArgument) {
		return BadArgumentError
	}
	return QuantumAPIUnhandledError
}
