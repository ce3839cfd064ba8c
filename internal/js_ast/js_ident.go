package js_ast

import (
	"strings"
	"unicode"
)

func IsIdentifierStart(codePoint rune) bool {
	switch codePoint {
	case '_', '$',
		'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
		'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
		'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M',
		'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z':
		return true
	}

	if codePoint < 0x80 {
		return false
	}
	return unicode.Is(unicode.L, codePoint)
}

func IsIdentifierContinue(codePoint rune) bool {
	switch codePoint {
	case '_', '$', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9',
		'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm',
		'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z',
		'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M',
		'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z':
		return true
	}

	if codePoint < 0x80 {
		return false
	}
	return unicode.Is(unicode.L, codePoint) || unicode.Is(unicode.Nd, codePoint)
}

func IsIdentifier(text string) bool {
	if len(text) == 0 {
		return false
	}
	for i, codePoint := range text {
		if i == 0 {
			if !IsIdentifierStart(codePoint) {
				return false
			}
		} else {
			if !IsIdentifierContinue(codePoint) {
				return false
			}
		}
	}
	return true
}

// ForceValidIdentifier rewrites text so it's a valid identifier, replacing
// each invalid code point with "$". Generated module-scoped names are built
// from asset ids and module specifiers, which may contain slashes, dots, and
// dashes.
func ForceValidIdentifier(text string) string {
	if IsIdentifier(text) {
		return text
	}

	sb := strings.Builder{}
	for i, codePoint := range text {
		if i == 0 {
			if IsIdentifierStart(codePoint) {
				sb.WriteRune(codePoint)
				continue
			}
		} else {
			if IsIdentifierContinue(codePoint) {
				sb.WriteRune(codePoint)
				continue
			}
		}
		sb.WriteByte('$')
	}
	if sb.Len() == 0 {
		return "$"
	}
	return sb.String()
}
