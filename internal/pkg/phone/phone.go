package phone

import "regexp"

var (
	separators = regexp.MustCompile(`[\s\-()]`)
	uzPattern  = regexp.MustCompile(`^(\+998|998)?[0-9]{9}$`)
)

// Normalize removes spaces, dashes and parentheses from a phone number.
func Normalize(raw string) string {
	return separators.ReplaceAllString(raw, "")
}

// Valid reports whether raw is an Uzbek mobile number, with or without the
// 998 country code.
func Valid(raw string) bool {
	return uzPattern.MatchString(Normalize(raw))
}
