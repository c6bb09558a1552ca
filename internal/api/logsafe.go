package api

import (
	"strings"
	"unicode/utf8"
)

const maxLogLen = 256

// logSafe escapes line breaks and drops other control characters so a
// client-supplied value cannot forge extra log lines. Output is capped at
// maxLogLen runes.
func logSafe(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if n == maxLogLen {
			b.WriteString("...")
			break
		}
		switch {
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7F || r == utf8.RuneError:
			continue
		default:
			b.WriteRune(r)
		}
		n++
	}
	return b.String()
}
