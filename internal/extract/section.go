package extract

import (
	"regexp"
	"strings"

	"github.com/mrlokans/bookfetch/internal/utils"
)

// Section captures the text that follows Start, up to the earliest of Stops
// (or the end of the text).
type Section struct {
	Start *regexp.Regexp
	Stops []string
}

// S builds a Section from a regex source.
func S(start string, stops ...string) Section {
	return Section{Start: regexp.MustCompile(start), Stops: stops}
}

// Extract returns the cleaned section body, or "" if Start never matches.
func (s Section) Extract(text string) string {
	loc := s.Start.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	return utils.Clean(CutAt(text[loc[1]:], s.Stops...))
}

// Sections is an ordered list of alternatives for one prose field.
type Sections []Section

// Prose returns the first section that is still long enough to be prose
// after everything from the earliest boilerplate marker onward is cut off.
func (ss Sections) Prose(text string, boilerplate ...string) string {
	for _, s := range ss {
		s := s
		v := Guard(func() string {
			body := s.Extract(text)
			if !utils.IsProse(body) {
				return ""
			}
			body = utils.Clean(CutAt(body, boilerplate...))
			if !utils.IsProse(body) {
				return ""
			}
			return body
		})
		if v != "" {
			return v
		}
	}
	return ""
}

// CutAt truncates text at the earliest occurrence of any marker.
func CutAt(text string, markers ...string) string {
	end := len(text)
	for _, m := range markers {
		if m == "" {
			continue
		}
		if i := strings.Index(text, m); i >= 0 && i < end {
			end = i
		}
	}
	return text[:end]
}

// Between returns the text after the first start marker, cut at the earliest
// end marker. It returns "" when start is absent.
func Between(text, start string, ends ...string) string {
	i := strings.Index(text, start)
	if i < 0 {
		return ""
	}
	return utils.Clean(CutAt(text[i+len(start):], ends...))
}
