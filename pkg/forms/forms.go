// Package forms validates login and registration input before it is sent.
package forms

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Field names, in display order.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
	FieldBirthdate       = "birthdate"
)

// BirthdateLayout is the accepted birthdate format.
const BirthdateLayout = "2006-01-02"

const (
	minNameLen     = 2
	maxNameLen     = 100
	minPasswordLen = 8
)

// FieldError is a validation failure on a single field.
type FieldError struct {
	Field   string
	Message string
}

// Errors collects field failures in field order.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Get returns the message for field, or "".
func (e Errors) Get(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

func (e *Errors) add(field, msg string) {
	*e = append(*e, FieldError{Field: field, Message: msg})
}

func (e Errors) err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// AsErrors extracts field errors from err.
func AsErrors(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Login is the login form.
type Login struct {
	Email    string
	Password string
}

// Register is the registration form.
type Register struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Birthdate       string
}

// ValidateLogin returns Errors when the form cannot be submitted.
func ValidateLogin(f Login) error {
	var errs Errors
	if !validEmail(f.Email) {
		errs.add(FieldEmail, "Invalid email")
	}
	if f.Password == "" {
		errs.add(FieldPassword, "Password is required")
	}
	return errs.err()
}

// ValidateRegister returns Errors when the form cannot be submitted. now
// bounds the birthdate.
func ValidateRegister(f Register, now time.Time) error {
	var errs Errors

	name := strings.TrimSpace(f.Name)
	switch n := utf8.RuneCountInString(name); {
	case n < minNameLen:
		errs.add(FieldName, "Name must be at least 2 characters")
	case n > maxNameLen:
		errs.add(FieldName, "Name must be at most 100 characters")
	}

	if !validEmail(f.Email) {
		errs.add(FieldEmail, "Invalid email")
	}

	if msg := passwordProblem(f.Password); msg != "" {
		errs.add(FieldPassword, msg)
	}

	if f.ConfirmPassword != f.Password {
		errs.add(FieldConfirmPassword, "Passwords do not match")
	}

	birth, err := time.ParseInLocation(BirthdateLayout, strings.TrimSpace(f.Birthdate), now.Location())
	if err != nil {
		errs.add(FieldBirthdate, "Birthdate must be YYYY-MM-DD")
	} else {
		y, m, d := now.Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		if birth.After(today) {
			errs.add(FieldBirthdate, "Birthdate cannot be in the future")
		}
	}

	return errs.err()
}

func passwordProblem(pw string) string {
	if utf8.RuneCountInString(pw) < minPasswordLen {
		return "Password must be at least 8 characters"
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return "Password must contain an uppercase letter"
	case !lower:
		return "Password must contain a lowercase letter"
	case !digit:
		return "Password must contain a digit"
	}
	return ""
}

// validEmail accepts a bare address whose domain has a dot.
func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}
