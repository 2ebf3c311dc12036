package domain

import "errors"

// Error kinds. Match with errors.Is; everything else is an internal failure.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpload       = errors.New("upload failed")
)

// Error carries a client-facing message on top of one of the kinds above.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func Validation(msg string) error   { return &Error{kind: ErrValidation, msg: msg} }
func Conflict(msg string) error     { return &Error{kind: ErrConflict, msg: msg} }
func NotFound(msg string) error     { return &Error{kind: ErrNotFound, msg: msg} }
func Unauthorized(msg string) error { return &Error{kind: ErrUnauthorized, msg: msg} }
func UploadFailed(msg string) error { return &Error{kind: ErrUpload, msg: msg} }

// Repository-level sentinels, translated by the service.
var (
	ErrUserNotFound = NotFound("user does not exist")
	ErrUserExists   = Conflict("user with this username or email already exists")
)
