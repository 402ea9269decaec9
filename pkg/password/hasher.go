package password

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidHash is returned when a stored hash cannot be parsed.
var ErrInvalidHash = errors.New("invalid password hash")

// Hasher hashes and verifies user passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// New returns the hasher registered under name ("bcrypt" or "argon2id").
func New(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bcrypt":
		return NewBcrypt(0), nil
	case "argon2id", "argon2":
		return NewArgon2id(DefaultArgon2Params()), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// Auto verifies hashes produced by either algorithm and hashes with primary.
// It lets a deployment switch algorithms without invalidating stored hashes.
type Auto struct {
	primary Hasher
	bcrypt  *Bcrypt
	argon   *Argon2id
}

// NewAuto wraps primary with verification for both supported formats.
func NewAuto(primary Hasher) *Auto {
	return &Auto{primary: primary, bcrypt: NewBcrypt(0), argon: NewArgon2id(DefaultArgon2Params())}
}

// Hash delegates to the primary hasher.
func (a *Auto) Hash(password string) (string, error) {
	return a.primary.Hash(password)
}

// Verify dispatches on the hash prefix.
func (a *Auto) Verify(password, encodedHash string) (bool, error) {
	if strings.HasPrefix(encodedHash, "$"+argon2Algorithm+"$") {
		return a.argon.Verify(password, encodedHash)
	}
	return a.bcrypt.Verify(password, encodedHash)
}
