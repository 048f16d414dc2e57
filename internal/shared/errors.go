package shared

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. Unknown identifiers
	// and wrong passwords both map here.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDeactivated indicates a login attempt against a
	// deactivated account.
	ErrAccountDeactivated = errors.New("account is deactivated")
	// ErrUsernameTaken indicates a registration conflict on username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken indicates a registration conflict on email.
	ErrEmailTaken = errors.New("email already exists")
)
