package user

import "unicode"

const minPasswordLength = 6

// CheckPassword applies the password policy and returns one message per
// violated rule.
func CheckPassword(password string) []string {
	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}
	var errs []string
	if len(password) < minPasswordLength {
		errs = append(errs, "Passwords must be at least 6 characters.")
	}
	if !hasSymbol {
		errs = append(errs, "Passwords must have at least one non alphanumeric character.")
	}
	if !hasDigit {
		errs = append(errs, "Passwords must have at least one digit ('0'-'9').")
	}
	if !hasLower {
		errs = append(errs, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if !hasUpper {
		errs = append(errs, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	return errs
}
