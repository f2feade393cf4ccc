package identity

import (
	"regexp"
	"strings"
	"unicode"
)

// Client-side field validation. Checked before any network call so obvious
// mistakes never cost a round trip; failures use the same error shape the
// server would produce.

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	minPasswordLen = 8
	maxPasswordLen = 128
)

// ValidateRegisterData checks registration input. Returns a *Error with
// CodeValidationError and per-field details, or nil when valid.
func ValidateRegisterData(data RegisterData) error {
	errs := make(map[string]string)

	validateEmail(errs, data.Email)
	validatePassword(errs, data.Password)

	if name := strings.TrimSpace(data.DisplayName); len(name) > 64 {
		errs["displayName"] = "too long (max 64)"
	}

	return validationResult(errs)
}

// ValidateLoginInput checks login input. Login only requires the fields to
// be present and the email well-formed; password strength is not
// re-checked against existing accounts.
func ValidateLoginInput(email, password string) error {
	errs := make(map[string]string)

	validateEmail(errs, email)
	if password == "" {
		errs["password"] = "required"
	}

	return validationResult(errs)
}

func validateEmail(errs map[string]string, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs["email"] = "required"
	case !reEmail.MatchString(email):
		errs["email"] = "must be a valid email address"
	}
}

func validatePassword(errs map[string]string, password string) {
	switch {
	case password == "":
		errs["password"] = "required"
		return
	case len(password) < minPasswordLen:
		errs["password"] = "too short (min 8)"
		return
	case len(password) > maxPasswordLen:
		errs["password"] = "too long (max 128)"
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		errs["password"] = "must contain upper case, lower case and a digit"
	}
}

func validationResult(errs map[string]string) error {
	if len(errs) == 0 {
		return nil
	}
	return &Error{
		Code:    CodeValidationError,
		Message: "validation failed",
		Details: errs,
	}
}
