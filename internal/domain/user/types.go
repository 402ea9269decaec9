package user

import (
	"context"
	"time"
)

// User is a stored account.
type User struct {
	ID           string
	Email        string
	PhoneNumber  string
	PasswordHash string
	BirthDate    time.Time
	Sex          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Demographics are the fields editable through the phone/sex/age endpoint.
type Demographics struct {
	BirthDate   time.Time `json:"birthDate"`
	Sex         string    `json:"sex"`
	PhoneNumber string    `json:"phoneNumber"`
}

// Repository persists users. Create returns auth.ErrEmailExists or
// auth.ErrPhoneExists when a unique constraint is violated.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	GetByID(ctx context.Context, id string) (User, bool, error)
	// PhoneTaken reports whether any user other than exceptID holds phone.
	PhoneTaken(ctx context.Context, phone, exceptID string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateDemographics(ctx context.Context, id string, d Demographics) error
	// Delete removes the user. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
}

// Provisioner creates the default records that belong to a new account.
type Provisioner interface {
	Provision(ctx context.Context, userID string) error
}
