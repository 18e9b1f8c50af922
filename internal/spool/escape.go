package spool

import "strings"

// The job file is line-oriented with "key = value" entries, so values
// must never carry raw newlines and keys must never carry a raw "=".
// A hostile commit message could otherwise inject extra entries.

var valueEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
)

var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	"=", `\=`,
	" ", `\s`,
)

func escapeValue(s string) string { return valueEscaper.Replace(s) }

func escapeKey(s string) string { return keyEscaper.Replace(s) }

// unescape reverses both escapers; unknown escape sequences keep the
// backslash verbatim.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '=':
			b.WriteByte('=')
		case 's':
			b.WriteByte(' ')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// indexUnescaped returns the index of the first unescaped occurrence
// of sep in s, or -1.
func indexUnescaped(s string, sep byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			return i
		}
	}
	return -1
}
