package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeSiteUnresolved  ErrorCode = "SITE_UNRESOLVED"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeNetworkDisabled ErrorCode = "NETWORK_DISABLED"
	CodeUnavailable     ErrorCode = "UNAVAILABLE"
	CodeInternal        ErrorCode = "INTERNAL"
)

// Sentinel errors shared across the platform and tool layers.
var (
	ErrSiteNotFound    = errors.New("site not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrPostTrashed     = errors.New("post is trashed")
	ErrTermNotFound    = errors.New("term not found")
	ErrToolNotFound    = errors.New("tool not found")
	ErrNetworkDisabled = errors.New("network mode is disabled")
	ErrStoreClosed     = errors.New("store is closed")
)

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:    existing.Code,
			Op:      op,
			Message: existing.Message,
			Cause:   existing.Cause,
		}
	}
	return E(code, op, "", err)
}

// CodeFrom maps an error onto the flat tool-failure taxonomy. Sentinels from
// the platform layer are classified so tool handlers can build structured
// failures without switching on concrete types.
func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrPostTrashed),
		errors.Is(err, ErrTermNotFound), errors.Is(err, ErrToolNotFound):
		return CodeNotFound, true
	case errors.Is(err, ErrSiteNotFound):
		return CodeSiteUnresolved, true
	case errors.Is(err, ErrNetworkDisabled):
		return CodeNetworkDisabled, true
	case errors.Is(err, ErrStoreClosed):
		return CodeUnavailable, true
	default:
		return "", false
	}
}
