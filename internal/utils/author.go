package utils

import (
	"regexp"
	"strings"
)

// authorDenylist holds edition, format, series and publisher boilerplate that
// retailer markup puts next to (or in place of) contributor names.
var authorDenylist = []string{
	// editions
	"Chinese Edition", "English Edition", "Paperback", "Kindle Edition",
	"Hardcover", "Mass Market", "Library Binding",
	"中文版", "平装", "精装", "简体中文", "繁体中文", "中英文版",
	"简体", "繁体", "中文", "英文",
	// markers
	"by", "By", "作者", "author", "Author",
	// series
	"Book", "Series", "Volume", "Vol", "系列", "丛书",
	// publishers
	"Publisher", "Publications", "Press", "Publishing",
	"出版社", "出版",
	// misc
	"Edition", "Revised", "Updated", "New",
	"版本", "修订版", "增订版", "新版",
	// punctuation
	"|", ",", ":", "：",
}

var (
	punctuationOnly = regexp.MustCompile(`^[\s.,;:，。；：、]+$`)
	anyDigit        = regexp.MustCompile(`\d`)
)

// IsValidAuthor rejects candidate author strings that are empty, contain a
// denylisted term (case-insensitive), are only punctuation, or contain a digit
// (series and volume markers such as "Book 3 of 5").
func IsValidAuthor(text string) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)
	for _, term := range authorDenylist {
		if strings.Contains(lower, strings.ToLower(term)) {
			return false
		}
	}

	if punctuationOnly.MatchString(text) {
		return false
	}
	if anyDigit.MatchString(text) {
		return false
	}
	return true
}

// JoinAuthors joins the valid, distinct names with ", ".
func JoinAuthors(names []string) string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = Clean(n)
		if !IsValidAuthor(n) {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return strings.Join(out, ", ")
}
