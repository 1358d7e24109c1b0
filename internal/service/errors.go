package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a service failure. Each kind maps to one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal_error"
	}
}

// HTTPStatus returns the status code for k.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Messages returned to clients.
const (
	MsgTokenNotProvided        = "Token not provided"
	MsgTokenBlacklisted        = "Token is blacklisted"
	MsgTokenExpired            = "Token has expired"
	MsgInvalidToken            = "Invalid token"
	MsgUserNotFound            = "User not found"
	MsgUserNotInRequest        = "User not found in request"
	MsgInsufficientPermissions = "Access denied: Insufficient permissions"
	MsgInvalidCredentials      = "Invalid username or password"
	MsgAuthHeaderMissing       = "Authorization header is missing"
	MsgBearerTokenMissing      = "Bearer token is missing"
	MsgLoggedOut               = "Logged out successfully"
	MsgUsernameImmutable       = "Updating the username is not allowed."
	MsgRoleUpdateAdminOnly     = "Only admins are allowed to update roles."
	MsgAdminRoleAdminOnly      = "Only admins are allowed to assign the ADMIN role."
	MsgUsernameRequired        = "Username is required."
	MsgUsernameTaken           = "Username already exists."
	MsgPasswordRequired        = "Password is required."
	MsgPasswordTooShort        = "Password must be at least 8 characters long."
	MsgPasswordTooLong         = "Password must be at most 72 bytes long."
	MsgInvalidRole             = `Role must be either "ADMIN" or "USER".`
	MsgInvalidEmail            = "Email must be a valid email address."
	MsgNothingToUpdate         = "No fields to update."
	msgInternal                = "An internal error occurred"
)

// Error is a failure with a client-facing message. Err, when set, is the
// underlying cause and is never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Internal wraps a storage or infrastructure failure behind a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: msgInternal, Err: err}
}

// AsError returns err as an *Error, wrapping anything else as Internal.
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return Internal(err)
}

// KindOf returns the Kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	return AsError(err).Kind
}
