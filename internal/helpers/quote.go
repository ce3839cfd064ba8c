package helpers

import (
	"fmt"
	"strings"
)

// QuoteJS renders text as a double-quoted JavaScript string literal
func QuoteJS(text string) string {
	sb := strings.Builder{}
	sb.WriteByte('"')

	for _, c := range text {
		switch c {
		case '\\':
			sb.WriteString("\\\\")
		case '"':
			sb.WriteString("\\\"")
		case '\n':
			sb.WriteString("\\n")
		case '\r':
			sb.WriteString("\\r")
		case '\t':
			sb.WriteString("\\t")
		case '\b':
			sb.WriteString("\\b")
		case '\f':
			sb.WriteString("\\f")
		case '\v':
			sb.WriteString("\\v")
		case ' ':
			sb.WriteString("\\u2028")
		case ' ':
			sb.WriteString("\\u2029")
		default:
			if c < 0x20 {
				sb.WriteString(fmt.Sprintf("\\x%02X", c))
			} else {
				sb.WriteRune(c)
			}
		}
	}

	sb.WriteByte('"')
	return sb.String()
}
