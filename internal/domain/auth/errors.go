package auth

import (
	"errors"
	"strings"
)

// Messages returned in failed results. Login failures never say which factor was wrong.
const (
	MsgInvalidCredentials  = "Invalid credentials"
	MsgUserNotFound        = "User not found"
	MsgInvalidRefreshToken = "Invalid refresh token"
	MsgUnauthorized        = "Unauthorized"
	MsgUnderage            = "User must be at least 18 years old."
)

var (
	// ErrEmailExists indicates a duplicate email address.
	ErrEmailExists = errors.New("email already exists")
	// ErrPhoneExists indicates a duplicate phone number.
	ErrPhoneExists = errors.New("phone number already exists")
	// ErrSessionNotFound is returned by session stores for unknown or expired ids.
	ErrSessionNotFound = errors.New("session not found")
)

// DirectoryError is an expected rejection from the user directory,
// for example a duplicate email or a password policy violation.
type DirectoryError struct {
	Kind     FailureKind
	Messages []string
}

func (e *DirectoryError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Reject builds a DirectoryError.
func Reject(kind FailureKind, messages ...string) error {
	return &DirectoryError{Kind: kind, Messages: messages}
}

// AsDirectoryError unwraps err into a DirectoryError when it is one.
func AsDirectoryError(err error) (*DirectoryError, bool) {
	var dirErr *DirectoryError
	if errors.As(err, &dirErr) {
		return dirErr, true
	}
	return nil, false
}
