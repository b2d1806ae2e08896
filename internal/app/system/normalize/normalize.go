// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address so the unique index on email
// compares apples to apples.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name collapses internal whitespace runs and trims the ends.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
