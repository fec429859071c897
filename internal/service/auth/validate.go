package auth

import (
	"net/mail"
	"strings"
)

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// validateRegister runs before any store access. Email stays exactly as
// supplied; matching against stored accounts is case-sensitive.
func (s *AuthService) validateRegister(in RegisterInput) error {
	verr := &ValidationError{}
	if in.Email == "" {
		verr.add("email", "is required")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		verr.add("email", "is not a valid address")
	}
	if len(in.Password) < s.MinPasswordLen {
		verr.add("password", "is too short")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		verr.add("first_name", "is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		verr.add("last_name", "is required")
	}
	return verr.orNil()
}
