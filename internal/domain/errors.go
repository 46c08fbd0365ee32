package domain

import "errors"

// Sentinel errors shared across usecases; the web layer maps these
// to HTTP statuses.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrForbidden          = errors.New("forbidden")
	ErrSelfDelete         = errors.New("cannot delete or disable the authenticated account")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrBadBackup          = errors.New("malformed backup document")
	ErrAIKeyMissing       = errors.New("analyzer credential not configured")
	ErrGistAuth           = errors.New("gist token rejected")
	ErrGistNotFound       = errors.New("gist not found")
)
