package bserr

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInternalError  = "INTERNAL_ERROR"

	CodeNoSeasonsForUser = "NO_SEASONS_FOR_USER"
	CodeSeasonNotFound   = "SEASON_NOT_FOUND"
	CodeDivisionByZero   = "DIVISION_BY_ZERO"
	CodeUnknownQuality   = "UNKNOWN_QUALITY"
	CodeMalformedInput   = "MALFORMED_INPUT"
	CodeDuplicateBoxType = "DUPLICATE_BOX_TYPE"
	CodeNegativeDelta    = "NEGATIVE_DELTA"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = New(fiber.StatusNotFound, CodeNotFound, "resource not found with given parameters")

	// ErrInvalidReq is returned when a request is invalid.
	ErrInvalidReq = New(fiber.StatusBadRequest, CodeInvalidRequest, "invalid request: some or all request parameters are invalid")

	// ErrUnauthorized is returned when the owner key is missing or unknown.
	ErrUnauthorized = New(fiber.StatusUnauthorized, CodeUnauthorized, "owner key is missing or invalid")

	// ErrInternalError is returned when an internal error occurs.
	ErrInternalError = New(fiber.StatusInternalServerError, CodeInternalError, "internal server error occurred")
)

// Statistics and ingestion failures. Each one carries its own code so callers
// can tell "no data" apart from "invalid data" and "computation error".
var (
	ErrNoSeasonsForUser = New(fiber.StatusNotFound, CodeNoSeasonsForUser, "owner has no recorded seasons")
	ErrSeasonNotFound   = New(fiber.StatusNotFound, CodeSeasonNotFound, "season not found")
	ErrDivisionByZero   = New(fiber.StatusUnprocessableEntity, CodeDivisionByZero, "total cannot be zero")
	ErrUnknownQuality   = New(fiber.StatusUnprocessableEntity, CodeUnknownQuality, "unknown quality")
	ErrMalformedInput   = New(fiber.StatusBadRequest, CodeMalformedInput, "malformed quality count list")
	ErrDuplicateBoxType = New(fiber.StatusConflict, CodeDuplicateBoxType, "boxes of this type already exist in the season")
	ErrNegativeDelta    = New(fiber.StatusInternalServerError, CodeNegativeDelta, "delta between scopes is negative")
)

type Extras map[string]interface{}

type Error struct {
	StatusCode int    `example:"400"`
	ErrorCode  string `example:"INVALID_REQUEST"`
	Message    string `example:"invalid request: some or all request parameters are invalid"`
	Extras     *Extras
}

func New(statusCode int, errorCode string, message string) *Error {
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func (e Error) Msg(format string, parts ...interface{}) *Error {
	e.Message = fmt.Sprintf(format, parts...)
	return &e
}

func (e Error) WithExtras(extras Extras) *Error {
	e.Extras = &extras
	return &e
}

func NewInvalidViolations(violations interface{}) *Error {
	// copy ErrInvalidReq as e
	e := *ErrInvalidReq
	e.Extras = &Extras{
		"violations": violations,
	}
	return &e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is keeps working on copies produced by Msg and WithExtras.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.ErrorCode == t.ErrorCode
}
