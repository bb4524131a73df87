package amazon

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mrlokans/bookfetch/internal/extract"
	"github.com/mrlokans/bookfetch/internal/utils"
)

var (
	titleSelectors = extract.Selectors{"#productTitle", "#title"}

	authorSelectors = extract.Selectors{
		"#bylineInfo .author a",
		"#bylineInfo .contributorNameID",
		"#bylineInfo a[data-asin]",
		".author .a-link-normal",
		"#byline_secondary_view_div .a-link-normal",
		"#contributorLinkContainer a",
	}

	detailBulletSelectors = extract.Selectors{
		"#detailBullets_feature_div li",
		"#productDetailsTable .content li",
		"#detailBulletsWrapper_feature_div li",
		"#productDetails_detailBullets_sections1 tr",
		"#productDetails_techSpec_section_1 tr",
		".detail-bullet-list span",
		".a-expander-content table tr",
	}

	priceSelectors = extract.Selectors{
		".a-price .a-offscreen",
		"#price",
		".kindle-price #digital-list-price",
		".swatchElement.selected .a-color-price",
	}

	descriptionSelectors = extract.Selectors{
		"#bookDescription_feature_div noscript",
		"#bookDescription_feature_div .a-expander-content",
		"#productDescription .content",
		"#bookDescription_feature_div",
		"#book_description",
		".book-description",
	}

	coverSelectors = []string{"#imgBlkFront", "#main-image", "#ebooksImgBlkFront", "#img-canvas img"}
)

var (
	publisherKeys = []string{"出版社", "Publisher", "出版商", "Published by"}
	pageKeys      = []string{"页数", "Pages", "页", "Print length"}

	// Press name must carry at least one letter or ideograph.
	publisherPatterns = extract.Patterns{
		extract.PV(`(?:出版社|出版商)\s*[:：]?\s*([^;(（]+?(?:出版社|出版|Publishers?|Press|Publishing(?:\s+House)?|Books|Media))`, validPress),
		extract.PV(`(?:Publisher|Published by)\s*[:：]?\s*([^;(（]+?(?:Publishers?|Press|Publishing(?:\s+House)?|Books|Media))`, validPress),
		extract.PV(`(?:出版社|Publisher|出版商|Published by)\s*[:：]?\s*([^;(（]+)`, validPress),
	}
	parenthesised = regexp.MustCompile(`[(（]([^)）]+)[)）]`)

	// The search-result byline carries "Publisher: X (date)" inline.
	summaryPressRe = regexp.MustCompile(`(?:出版社|Publisher)\s*[:：]\s*([^(（]+)(?:\s*[(（]([^)）]+)[)）])?`)

	datePatterns = extract.Patterns{
		{Re: regexp.MustCompile(`(\d{4}年\d{1,2}月\d{1,2}日)`), Transform: utils.ExtractYear},
		{Re: regexp.MustCompile(`(\d{4}[-/]\d{1,2}[-/]\d{1,2})`), Transform: utils.ExtractYear},
		{Re: regexp.MustCompile(`([A-Z][a-z]+ \d{1,2}, \d{4})`), Transform: utils.ExtractYear},
		{Re: regexp.MustCompile(`(\d{4})`), Transform: utils.ExtractYear},
	}

	isbnPatterns = extract.Patterns{
		{Re: regexp.MustCompile(`ISBN[-‐]?(?:13|10)?\s*[:：]?\s*(\d[0-9X‐-]*)`), Transform: utils.NormalizeISBN},
		{Re: regexp.MustCompile(`(\d{13}|\d{10})`), Transform: utils.NormalizeISBN},
		{Re: regexp.MustCompile(`ISBN[-‐]?(?:13|10)?\s*[:：]?\s*([0-9X‐-]+)`), Transform: utils.NormalizeISBN},
	}

	pagesPatterns = extract.Patterns{
		extract.P(`(?:页数|Pages|页|Print length)\s*[:：]?\s*(\d+)`),
		extract.P(`(\d+)\s*(?:页|pages)`),
	}

	hasWordRune = regexp.MustCompile(`[\p{Han}\w]`)
)

func validPress(press string) bool {
	if len([]rune(press)) < 2 || !hasWordRune.MatchString(press) {
		return false
	}
	switch press {
	case "Publisher", "出版社", ":", "：":
		return false
	}
	return true
}

var (
	bylineAuthorRe = regexp.MustCompile(`作者[:\s：]\s*(.+?)(?:\s*\||$)`)
	spanAuthorRe   = regexp.MustCompile(`(?i)(?:作者[:\s：]|by\s+)(.+?)(?:\s*\||$)`)

	seriesSuffix  = regexp.MustCompile(`(?i)Book\s+\d+\s+of\s+\d+.*$`)
	leadingBy     = regexp.MustCompile(`(?i)^by\s+`)
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	bracketed     = regexp.MustCompile(`\[[^\]]*\]`)
	separatorRun  = regexp.MustCompile(`[,;，；]+`)
)

// searchAuthor pulls the byline out of a search-result card. Amazon renders
// it several different ways, so each layout is tried in turn.
func searchAuthor(item *goquery.Selection) string {
	raw := extract.FirstValid(
		func() string { return primaryByline(item) },
		func() string { return secondaryBylineLinks(item) },
		func() string { return secondaryBylineSpans(item) },
	)
	return tidyAuthor(raw)
}

func primaryByline(item *goquery.Selection) string {
	text := utils.Clean(item.Find("div.a-row .a-size-base:not(.a-color-secondary)").First().Text())
	if text == "" {
		return ""
	}
	if m := bylineAuthorRe.FindStringSubmatch(text); m != nil {
		return utils.Clean(m[1])
	}
	if strings.HasPrefix(strings.ToLower(text), "by") {
		return utils.Clean(text[2:])
	}
	return text
}

func secondaryBylineLinks(item *goquery.Selection) string {
	container := item.Find("div.a-row.a-size-base.a-color-secondary").First()
	var names []string
	container.Find("a:not(.a-text-normal)").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Text())
	})
	return utils.JoinAuthors(names)
}

func secondaryBylineSpans(item *goquery.Selection) string {
	container := item.Find("div.a-row.a-size-base.a-color-secondary").First()
	spans := container.Find("span")

	var found string
	spans.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := spanAuthorRe.FindStringSubmatch(utils.Clean(s.Text())); m != nil {
			found = utils.Clean(m[1])
		}
		return found == ""
	})
	if found != "" {
		return found
	}

	spans.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := utils.Clean(s.Text()); utils.IsValidAuthor(text) {
			found = text
		}
		return found == ""
	})
	return found
}

// tidyAuthor strips series markers, roles and stray punctuation, then keeps
// only the comma-separated parts that look like names.
func tidyAuthor(author string) string {
	if author == "" {
		return ""
	}
	author = seriesSuffix.ReplaceAllString(author, "")
	author = leadingBy.ReplaceAllString(author, "")
	author = parenthetical.ReplaceAllString(author, "")
	author = bracketed.ReplaceAllString(author, "")
	author = separatorRun.ReplaceAllString(author, ",")
	author = strings.Trim(author, ".,;:，。；：、 ")

	return utils.JoinAuthors(strings.Split(author, ","))
}

// coverURL prefers the largest rendition listed in data-a-dynamic-image,
// then data-src, then src.
func coverURL(root *goquery.Selection) string {
	for _, sel := range coverSelectors {
		img := root.Find(sel).First()
		if img.Length() == 0 {
			continue
		}
		if raw, ok := img.Attr("data-a-dynamic-image"); ok {
			if u := largestImage(raw); u != "" {
				return u
			}
		}
		for _, attr := range []string{"data-src", "src"} {
			if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// description reads the first description block long enough to be prose;
// shorter blocks ("Read more") are page chrome. Amazon wraps the
// richest copy in <noscript>, whose contents the HTML parser keeps as raw
// markup, so those are parsed a second time.
func description(root *goquery.Selection) string {
	for _, sel := range descriptionSelectors {
		node := root.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		text := node.Text()
		if goquery.NodeName(node) == "noscript" {
			if inner, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
				text = inner.Text()
			}
		}
		if text = utils.Clean(text); utils.IsProse(text) {
			return text
		}
	}
	return ""
}

// largestImage decodes {"url": [width, height], ...} and returns the url with
// the biggest area.
func largestImage(raw string) string {
	var renditions map[string][]float64
	if err := json.Unmarshal([]byte(raw), &renditions); err != nil {
		return ""
	}
	best, bestArea := "", -1.0
	for u, dims := range renditions {
		if len(dims) < 2 {
			continue
		}
		area := dims[0] * dims[1]
		if area > bestArea || (area == bestArea && u < best) {
			best, bestArea = u, area
		}
	}
	return best
}
