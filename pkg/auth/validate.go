package auth

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// ValidationError reports the first credential rule a registration
// request violates.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateCredentials checks registration input against the account
// rules. Rules are checked in a fixed order and the first violation is
// returned; nil means all rules passed.
func ValidateCredentials(username, password, email string) *ValidationError {
	// Lengths count code points, not bytes, so multibyte usernames and
	// passwords are measured the way users perceive them.
	if utf8.RuneCountInString(username) < 3 {
		return &ValidationError{Message: "username has to be longer than 2"}
	}

	if utf8.RuneCountInString(password) < 9 {
		return &ValidationError{Message: "password has to be longer than 8"}
	}

	hasDigit := false
	for _, c := range password {
		if unicode.IsDigit(c) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return &ValidationError{Message: "password has to contain at least one number"}
	}

	foundLower, foundUpper := false, false
	for _, c := range password {
		if foundLower && foundUpper {
			break
		}
		if unicode.IsLower(c) {
			foundLower = true
		} else if unicode.IsUpper(c) {
			foundUpper = true
		}
	}
	if !foundLower || !foundUpper {
		return &ValidationError{Message: "password has to contain lower and uppercase letters"}
	}

	if !emailPattern.MatchString(email) {
		return &ValidationError{Message: "invalid email address"}
	}

	return nil
}
