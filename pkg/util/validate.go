package util

import (
	"regexp"
)

var (
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// ValidateEmail checks the email format. Returns ok plus a user-facing message.
func ValidateEmail(email string) (bool, string) {
	if email == "" {
		return false, "Email is required."
	}
	if !emailPattern.MatchString(email) {
		return false, "Invalid email format."
	}
	return true, "Email is valid."
}

// ValidatePassword applies the password strength rules in order; the first
// failing rule's message is returned.
func ValidatePassword(password string) (bool, string) {
	if password == "" {
		return false, "Password is required."
	}
	if len(password) < 8 {
		return false, "Password must be at least 8 characters long."
	}
	if !upperPattern.MatchString(password) {
		return false, "Password must contain uppercase letters."
	}
	if !lowerPattern.MatchString(password) {
		return false, "Password must contain at least one lowercase letter."
	}
	if !digitPattern.MatchString(password) {
		return false, "Password must contain at least one digit."
	}
	if !specialPattern.MatchString(password) {
		return false, "Password must contain at least one special character."
	}
	return true, "Valid password."
}

// ValidatePhone checks an optional phone number.
func ValidatePhone(phone string) (bool, string) {
	if phone == "" {
		return true, "Phone number is optional."
	}
	if !phonePattern.MatchString(phone) {
		return false, "Invalid phone number format."
	}
	return true, "Phone number is valid."
}
