package autocomplete

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Control sequence introducers, in 7-bit (ESC [) and 8-bit (U+009B) form.
// Labels reach ansiRE after ValidateUTF8, so a lone 0x9b byte has already
// become U+FFFD and only the encoded code point needs matching.
const (
	csi = `(?:\x1b\[|\x{9b})[0-?]*[ -/]*[@-~]`
	osc = `(?:\x1b\]|\x{9d}).*?(?:\x1b\\|\x07|\x{9c})`
	esc = `\x1b[ -/]*[0-~]`
)

// ansiRE matches CSI (with private and intermediate bytes), OSC and
// the remaining two-byte escapes such as charset selection.
var ansiRE = regexp.MustCompile(csi + `|` + osc + `|` + esc)

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// ValidateUTF8 replaces invalid byte sequences with U+FFFD.
func ValidateUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

// cleanLabel makes catalog text safe to draw on a single terminal row.
func cleanLabel(s string) string {
	s = StripANSI(ValidateUTF8(s))
	return strings.Map(func(r rune) rune {
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			return ' '
		}
		return r
	}, s)
}

// Truncate shortens s to maxWidth display columns, ending in an ellipsis
// when anything was cut. Wide runes (CJK, emoji) count as two columns.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "…")
}
