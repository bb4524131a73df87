// Package extract holds the ordered-fallback helpers the scrapers build their
// field rules from: try each candidate in turn, keep the first one that
// produces a usable value, and never let a broken candidate take down the
// rest of the record.
package extract

import (
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mrlokans/bookfetch/internal/utils"
)

// Candidate produces one attempt at a field value.
type Candidate func() string

// Validator accepts or rejects a cleaned candidate value.
type Validator func(string) bool

// Guard runs fn and turns a panic into "".
func Guard(fn func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[extract] recovered: %v", r)
			out = ""
		}
	}()
	return fn()
}

// FirstValid returns the first candidate producing a non-blank value.
func FirstValid(candidates ...Candidate) string {
	for _, c := range candidates {
		if v := strings.TrimSpace(Guard(c)); v != "" {
			return v
		}
	}
	return ""
}

// Pattern is one regex rule. The first capture group (or the whole match
// when the expression has none) is cleaned and handed to Validate.
type Pattern struct {
	Re       *regexp.Regexp
	Validate Validator
	// Transform, if set, post-processes the cleaned value before validation.
	Transform func(string) string
}

// P builds a Pattern with no validation from a regex source.
func P(expr string) Pattern {
	return Pattern{Re: regexp.MustCompile(expr)}
}

// PV builds a Pattern with a validator.
func PV(expr string, validate Validator) Pattern {
	return Pattern{Re: regexp.MustCompile(expr), Validate: validate}
}

func (p Pattern) match(text string) string {
	m := p.Re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	v := m[0]
	if len(m) > 1 {
		v = m[1]
	}
	v = utils.Clean(v)
	if p.Transform != nil {
		v = p.Transform(v)
	}
	if v == "" {
		return ""
	}
	if p.Validate != nil && !p.Validate(v) {
		return ""
	}
	return v
}

// Patterns is an ordered regex table for a single field.
type Patterns []Pattern

// Match returns the first validated value any pattern yields on text.
func (ps Patterns) Match(text string) string {
	for _, p := range ps {
		p := p
		if v := Guard(func() string { return p.match(text) }); v != "" {
			return v
		}
	}
	return ""
}

// Candidate adapts the table into a FirstValid candidate over text.
func (ps Patterns) Candidate(text string) Candidate {
	return func() string { return ps.Match(text) }
}

// Selectors is an ordered list of CSS selectors for a single field.
type Selectors []string

// Text returns the cleaned text of the first selector that matches a
// non-empty element and passes validate (nil accepts anything).
func (ss Selectors) Text(doc *goquery.Selection, validate Validator) string {
	for _, sel := range ss {
		sel := sel
		v := Guard(func() string {
			return utils.Clean(doc.Find(sel).First().Text())
		})
		if v == "" {
			continue
		}
		if validate != nil && !validate(v) {
			continue
		}
		return v
	}
	return ""
}

// Attr returns the first non-empty attribute, trying each attribute name on
// each selector in order.
func (ss Selectors) Attr(doc *goquery.Selection, attrs ...string) string {
	for _, sel := range ss {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		for _, a := range attrs {
			if v, ok := node.Attr(a); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// All returns the cleaned text of every element matched by every selector,
// in document order per selector.
func (ss Selectors) All(doc *goquery.Selection) []string {
	var out []string
	for _, sel := range ss {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if v := utils.Clean(s.Text()); v != "" {
				out = append(out, v)
			}
		})
	}
	return out
}
