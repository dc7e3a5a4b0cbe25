// Package isbn validates ISBN-10 and ISBN-13 identifiers by checksum.
package isbn

import "strings"

// Valid reports whether s is a well-formed ISBN-10 or ISBN-13.
// Separators (dashes, spaces) are ignored; a lowercase x check digit is
// accepted.
func Valid(s string) bool {
	normalized := normalize(s)
	switch len(normalized) {
	case 10:
		return validISBN10(normalized)
	case 13:
		return validISBN13(normalized)
	default:
		return false
	}
}

// normalize strips everything but digits and the X check digit
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validISBN10(s string) bool {
	check := 0
	for i := 0; i < 9; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		check += int(s[i]-'0') * (10 - i)
	}
	check = (11 - check%11) % 11

	if check == 10 {
		return s[9] == 'X'
	}
	return s[9] == byte('0'+check)
}

func validISBN13(s string) bool {
	check := 0
	for i := 0; i < 12; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		check += int(s[i]-'0') * weight
	}
	check = (10 - check%10) % 10

	return s[12] >= '0' && s[12] <= '9' && int(s[12]-'0') == check
}
