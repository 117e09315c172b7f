// Package validation valida identificadores de registro (sintaxis, no
// unicidad: eso lo decide el store).
package validation

import "regexp"

var (
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{3,50}$`)
)

func ValidEmail(s string) bool {
	return s != "" && len(s) <= 100 && emailRe.MatchString(s)
}

// ValidUsername: 3-50 chars, alfanumérico más ._-
func ValidUsername(s string) bool {
	return usernameRe.MatchString(s)
}
