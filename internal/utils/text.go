package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinProseLength is the rune count a description or biography has to exceed
// before it is taken as real content rather than page chrome.
const MinProseLength = 20

var yearRun = regexp.MustCompile(`\d{4}`)

// Clean strips bidi and other invisible control marks, collapses whitespace
// runs to a single space and trims colons and whitespace from both ends.
// Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r), r == utf8.RuneError:
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}

	return strings.TrimFunc(b.String(), isEdgeRune)
}

func isEdgeRune(r rune) bool {
	return r == ':' || r == '：' || unicode.IsSpace(r)
}

// ExtractYear returns the first run of four digits in s, or "" when there is none.
// Any month/day continuation ("2012年5月", "1999-03") is dropped. No calendar
// validation is done: "9999" is a year as far as this is concerned.
func ExtractYear(s string) string {
	return yearRun.FindString(s)
}

// NormalizeISBN keeps digits and X and accepts the result only if it is a
// 10 or 13 character ISBN with X, if present, in the final position.
// Anything else yields "".
func NormalizeISBN(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == 'X' || r == 'x' {
			b.WriteRune(unicode.ToUpper(r))
		}
	}

	isbn := b.String()
	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	if strings.ContainsRune(isbn[:len(isbn)-1], 'X') {
		return ""
	}
	return isbn
}

// IsProse reports whether s, once trimmed, is long enough to be real prose.
func IsProse(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) > MinProseLength
}

// CJKRatio returns the fraction of runes in the trimmed string that are Han ideographs.
func CJKRatio(s string) float64 {
	s = strings.TrimSpace(s)
	total := utf8.RuneCountInString(s)
	if total == 0 {
		return 0
	}

	han := 0
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			han++
		}
	}
	return float64(han) / float64(total)
}

// IsChinese treats a string as Chinese when at least 30% of it is Han script.
func IsChinese(s string) bool {
	return CJKRatio(s) >= 0.3
}

// FirstNonEmpty returns the first argument that is not blank, trimmed.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
