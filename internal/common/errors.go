package common

import "errors"

// Error kinds. Callers should match them with errors.Is; the HTTP layer maps
// each kind onto a status code.
var (
	ErrValidation         = errors.New("validation error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrorNotFound         = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrorInternal         = errors.New("internal error")

	// token lifecycle
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// stored e-mail could not be authenticated
	ErrDecryption = errors.New("decryption failed")
)

// Uniqueness violations reported by repositories.
var (
	ErrUsernameTaken = &Error{Kind: ErrConflict, Msg: "Username already taken"}
	ErrEmailTaken    = &Error{Kind: ErrConflict, Msg: "Email already registered"}
	ErrAlreadyMember = &Error{Kind: ErrConflict, Msg: "User is already a member of this workspace"}
)

// Error pairs an error kind with a message that is safe to show to clients.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validation(msg string) error { return &Error{Kind: ErrValidation, Msg: msg} }
func NotFound(msg string) error   { return &Error{Kind: ErrorNotFound, Msg: msg} }
func Forbidden(msg string) error  { return &Error{Kind: ErrForbidden, Msg: msg} }
func Conflict(msg string) error   { return &Error{Kind: ErrConflict, Msg: msg} }

// Unauthorized returns an ErrorUnauthorized carrying msg.
func Unauthorized(msg string) error { return &Error{Kind: ErrorUnauthorized, Msg: msg} }

// Message extracts the client-facing message from err, falling back to def
// when err carries none.
func Message(err error, def string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return def
}
