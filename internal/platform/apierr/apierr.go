package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/arm-gateway/internal/pkg/errors"
)

// Wire codes shared with API clients.
const (
	CodeNotExists       = "NOT_EXISTS"
	CodeInvalidPosition = "INVALID_POSITION"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeConflict        = "CONFLICT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeUnhandled       = "UNHANDLED"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From classifies err into a status and stable wire code.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var ve *pkgerrors.ValidationError
	switch {
	case errors.As(err, &ve):
		code := ve.Code
		if code == "" {
			code = CodeInvalidArgument
		}
		return New(http.StatusBadRequest, code, err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, CodeNotExists, err)
	case errors.Is(err, pkgerrors.ErrInvalidPosition):
		return New(http.StatusBadRequest, CodeInvalidPosition, err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, CodeInvalidArgument, err)
	case errors.Is(err, pkgerrors.ErrConflict):
		return New(http.StatusConflict, CodeConflict, err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return New(http.StatusUnauthorized, CodeUnauthorized, err)
	default:
		return New(http.StatusInternalServerError, CodeUnhandled, err)
	}
}
