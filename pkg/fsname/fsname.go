// Package fsname derives filesystem-safe names from display names.
package fsname

import (
	"strings"
	"unicode"
)

// Normalize turns a display name into a filesystem-safe directory or file
// name: lowercase, "&" spelled "and", characters other than letters, digits,
// "_", "-" and whitespace dropped, separator runs collapsed to one underscore.
// It returns "" when nothing survives.
func Normalize(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "&", " and "))
	name = strings.Map(func(r rune) rune {
		if isWordRune(r) || isSeparator(r) {
			return r
		}
		return -1
	}, name)
	return strings.Join(strings.FieldsFunc(name, isSeparator), "_")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}
