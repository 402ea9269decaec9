package auth

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

const (
	// MinimumAge is the youngest age allowed to hold an account.
	MinimumAge        = 18
	minPasswordLength = 6
	minPhoneLength    = 10
	maxPhoneLength    = 12
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]+$`)

// ValidateRegistration runs the structural and policy checks that precede
// account creation. Uniqueness is left to the UserDirectory.
func ValidateRegistration(req RegisterRequest, today time.Time) []string {
	var errs []string
	if _, err := NormalizeEmail(req.Email); err != nil {
		errs = append(errs, "Email is not a valid email address.")
	}
	if len(req.Password) < minPasswordLength {
		errs = append(errs, "Password must be at least 6 characters.")
	}
	errs = append(errs, ValidateDemographics(req.BirthDate, req.Sex, req.PhoneNumber, today)...)
	return errs
}

// ValidateLogin only checks that both credentials are present.
func ValidateLogin(email, password string) []string {
	var errs []string
	if strings.TrimSpace(email) == "" {
		errs = append(errs, "Email is required.")
	}
	if password == "" {
		errs = append(errs, "Password is required.")
	}
	return errs
}

// ValidateDemographics checks phone, birth date and sex.
func ValidateDemographics(birthDate time.Time, sex, phone string, today time.Time) []string {
	var errs []string
	errs = append(errs, validatePhone(phone)...)
	switch {
	case birthDate.IsZero():
		errs = append(errs, "Birth date is required")
	case AgeOn(birthDate, today) < MinimumAge:
		errs = append(errs, MsgUnderage)
	}
	if sex != "male" && sex != "female" {
		errs = append(errs, "Sex must be either 'male' or 'female'")
	}
	return errs
}

func validatePhone(phone string) []string {
	if phone == "" {
		return []string{"Phone number is required"}
	}
	var errs []string
	if len(phone) < minPhoneLength || len(phone) > maxPhoneLength {
		errs = append(errs, "Phone number must be 10-12 digits")
	}
	if !phonePattern.MatchString(phone) {
		errs = append(errs, "Phone number can only contain numbers and optional '+' prefix")
	}
	return errs
}

// AgeOn returns the number of whole years between birthDate and today.
// A birthday not yet reached this year does not count.
func AgeOn(birthDate, today time.Time) int {
	by, bm, bd := birthDate.UTC().Date()
	ty, tm, td := today.UTC().Date()
	age := ty - by
	if tm < bm || (tm == bm && td < bd) {
		age--
	}
	return age
}

// NormalizeEmail trims, lower-cases and checks the address syntax.
func NormalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(strings.ToLower(raw))
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", err
	}
	if addr.Address != email {
		return "", errors.New("email must be a bare address")
	}
	return email, nil
}
