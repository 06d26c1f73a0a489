package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError so callers can branch on the failure without
// matching message text.
type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindInvalidVideoURL
	KindInvalidVideoID
	KindConnection
	KindSummarizationFailure
	KindBadResponse
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidVideoURL:
		return "invalid_video_url"
	case KindInvalidVideoID:
		return "invalid_video_id"
	case KindConnection:
		return "connection_error"
	case KindSummarizationFailure:
		return "summarization_failure"
	case KindBadResponse:
		return "bad_response"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func E(kind Kind, op string, err error, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    codeFor(kind),
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidArgument(op string, err error, message string) *AppError {
	return E(KindInvalidArgument, op, err, message)
}

func InvalidVideoURL(op string, err error, message string) *AppError {
	return E(KindInvalidVideoURL, op, err, message)
}

func InvalidVideoID(op string, err error, message string) *AppError {
	return E(KindInvalidVideoID, op, err, message)
}

func Connection(op string, err error, message string) *AppError {
	return E(KindConnection, op, err, message)
}

func SummarizationFailure(op string, message string) *AppError {
	return E(KindSummarizationFailure, op, nil, message)
}

func BadResponse(op string, err error, message string) *AppError {
	return E(KindBadResponse, op, err, message)
}

func NotFound(op string, err error, message string) *AppError {
	return E(KindNotFound, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return E(KindInternal, op, err, message)
}

// KindOf reports the Kind of the first AppError in err's chain. Errors that
// are not AppErrors are reported as KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf returns the HTTP status associated with err.
func CodeOf(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// As is errors.As from the standard library.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

func Is(err error, kind Kind) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}

func IsInvalidArgument(err error) bool      { return Is(err, KindInvalidArgument) }
func IsInvalidVideoURL(err error) bool      { return Is(err, KindInvalidVideoURL) }
func IsInvalidVideoID(err error) bool       { return Is(err, KindInvalidVideoID) }
func IsConnection(err error) bool           { return Is(err, KindConnection) }
func IsSummarizationFailure(err error) bool { return Is(err, KindSummarizationFailure) }
func IsBadResponse(err error) bool          { return Is(err, KindBadResponse) }
func IsNotFound(err error) bool             { return Is(err, KindNotFound) }

// IsDeadlineExceeded reports whether err was caused by a context deadline,
// whatever its Kind.
func IsDeadlineExceeded(err error) bool {
	return stderrors.Is(err, context.DeadlineExceeded)
}

func codeFor(kind Kind) int {
	switch kind {
	case KindInvalidArgument, KindInvalidVideoURL, KindInvalidVideoID:
		return http.StatusBadRequest
	case KindConnection, KindBadResponse:
		return http.StatusBadGateway
	case KindSummarizationFailure:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
