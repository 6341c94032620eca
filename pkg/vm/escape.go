package vm

import (
	"strconv"
	"strings"
)

// unescape decodes backslash escapes (\n, \t, \\, \', \", \ooo, \xhh, \uXXXX, ...)
// the way puts prints text. Unknown escapes are kept verbatim.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for len(s) > 0 {
		if s[0] != '\\' {
			i := strings.IndexByte(s, '\\')
			if i < 0 {
				i = len(s)
			}
			sb.WriteString(s[:i])
			s = s[i:]
			continue
		}
		if len(s) >= 2 && (s[1] == '\'' || s[1] == '"') {
			sb.WriteByte(s[1])
			s = s[2:]
			continue
		}
		if len(s) >= 2 && isOctal(s[1]) {
			// One to three octal digits.
			n, r := 1, rune(0)
			for ; n <= 3 && n < len(s) && isOctal(s[n]); n++ {
				r = r*8 + rune(s[n]-'0')
			}
			sb.WriteRune(r)
			s = s[n:]
			continue
		}
		r, _, tail, err := strconv.UnquoteChar(s, 0)
		if err != nil {
			sb.WriteByte('\\')
			s = s[1:]
			continue
		}
		// \xhh escapes name code points, not raw bytes.
		sb.WriteRune(r)
		s = tail
	}
	return sb.String()
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }
