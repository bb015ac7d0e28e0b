package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IndexWord returns the byte offset of the first occurrence of phrase in s at
// or after from, or -1. Matching ignores ASCII case and requires that the
// runes on either side of the occurrence are not letters or digits. Phrases
// are expected to be ASCII.
func IndexWord(s, phrase string, from int) int {
	n := len(phrase)
	if n == 0 || from < 0 {
		return -1
	}
	for i := from; i+n <= len(s); i++ {
		if !equalFoldASCII(s[i:i+n], phrase) {
			continue
		}
		if i > 0 {
			if r, _ := utf8.DecodeLastRuneInString(s[:i]); isWordRune(r) {
				continue
			}
		}
		if i+n < len(s) {
			if r, _ := utf8.DecodeRuneInString(s[i+n:]); isWordRune(r) {
				continue
			}
		}
		return i
	}
	return -1
}

// ContainsWord reports whether phrase occurs in s as a whole word.
func ContainsWord(s, phrase string) bool {
	return IndexWord(s, phrase, 0) >= 0
}

// ContainsAny reports whether the lower-cased text contains any of the
// lower-case terms as a substring.
func ContainsAny(lowerText string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lowerText, t) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		x, y := a[i], b[i]
		if 'A' <= x && x <= 'Z' {
			x += 'a' - 'A'
		}
		if 'A' <= y && y <= 'Z' {
			y += 'a' - 'A'
		}
		if x != y {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
