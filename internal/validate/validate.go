// Package validate holds the per-entity input validation rules. Each
// entity exposes one function taking the untrusted input and an update
// flag, returning either a sanitized, typed field set or an error whose
// message joins every individual problem. Handlers map that error to a
// 422 response.
//
// Validation never touches the database; uniqueness probes are a
// separate repository step so validation failures (422) and conflicts
// (409) stay distinct.
//
// Free-text output fields are HTML-escaped here, at validation time,
// so stored values are already neutral when rendered.
package validate

import (
	"errors"
	"html"
	"strings"
)

// joinErrors collapses the collected messages into one error, matching
// the single human-readable string the API returns.
func joinErrors(errs []string) error {
	return errors.New(strings.Join(errs, " "))
}

// Escape neutralizes HTML metacharacters (&, <, >, " and ') in
// free-text fields.
func Escape(s string) string {
	return html.EscapeString(s)
}
