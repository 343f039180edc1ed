package validate

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/iliyamo/equipment-inventory/internal/model"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// UserInput is the untrusted request body for user create/update.
type UserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// UserFields is the sanitized output. Password stays plain here; the
// handler hashes it before it reaches the repository. A nil Password
// in update mode means "leave the stored hash alone".
type UserFields struct {
	Username string
	Password *string
	Role     string
	FullName string
	Email    string
}

// User validates a user payload. In update mode the password becomes
// optional; every other rule applies in both modes.
func User(in UserInput, isUpdate bool) (UserFields, error) {
	var errs []string

	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		errs = append(errs, "username is required.")
	case len(username) > 64:
		errs = append(errs, "username must be ≤ 64 characters.")
	case !usernameRe.MatchString(username):
		errs = append(errs, "username may only contain letters, digits, and underscores.")
	}

	// password: required for creation, optional for update
	if !isUpdate && in.Password == "" {
		errs = append(errs, "password is required.")
	} else if in.Password != "" && len(in.Password) < 6 {
		errs = append(errs, "password must be at least 6 characters.")
	}

	role := in.Role
	if role == "" {
		role = model.RoleClient
	}
	if role != model.RoleAdmin && role != model.RoleClient {
		errs = append(errs, `role must be either "admin" or "client".`)
	}

	fullName := strings.TrimSpace(in.FullName)
	if len(fullName) > 150 {
		errs = append(errs, "full_name must be ≤ 150 characters.")
	}

	email := strings.TrimSpace(in.Email)
	if email != "" && !ValidEmail(email) {
		errs = append(errs, "email must be a valid email address.")
	} else if len(email) > 150 {
		errs = append(errs, "email must be ≤ 150 characters.")
	}

	if len(errs) > 0 {
		return UserFields{}, joinErrors(errs)
	}

	out := UserFields{
		Username: username,
		Role:     role,
		FullName: Escape(fullName),
		Email:    email,
	}
	if in.Password != "" {
		pw := in.Password
		out.Password = &pw
	}
	return out, nil
}

// ValidEmail accepts a bare RFC-shaped address (no display name).
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
