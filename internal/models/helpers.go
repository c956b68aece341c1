package models

import "strings"

// Slugify turns a chat title into a filesystem-friendly slug: lowercase,
// spaces and underscores become dashes, everything but ASCII letters,
// digits and dashes is dropped.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '_':
			b.WriteByte('-')
		}
	}
	return b.String()
}
