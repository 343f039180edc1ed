package validate

import "strings"

// CategoryInput is the untrusted request body for category create/update.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryFields is the sanitized output.
type CategoryFields struct {
	Name        string
	Description string
}

// Category validates a category payload. The same rules apply for
// create and update.
func Category(in CategoryInput) (CategoryFields, error) {
	var errs []string

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs = append(errs, "name is required.")
	} else if len(name) > 100 {
		errs = append(errs, "name must be ≤ 100 characters.")
	}

	description := strings.TrimSpace(in.Description)
	if len(description) > 1000 {
		errs = append(errs, "description must be ≤ 1000 characters.")
	}

	if len(errs) > 0 {
		return CategoryFields{}, joinErrors(errs)
	}

	return CategoryFields{
		Name:        Escape(name),
		Description: Escape(description),
	}, nil
}
