package advice

import "regexp"

var emphasisPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

// StripEmphasis removes well-formed **bold** markers and keeps the enclosed
// text. Unterminated markers are left alone. Replacement repeats until the
// text stops changing, so nested or stacked markers ("****x****") end up
// fully stripped and the function is idempotent.
func StripEmphasis(s string) string {
	for {
		stripped := emphasisPattern.ReplaceAllString(s, "${1}")
		if stripped == s {
			return s
		}
		s = stripped
	}
}
