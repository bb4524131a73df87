// Package megbook scrapes the megbook storefronts (Hong Kong and Taiwan),
// which share one shop engine and differ only in the details held by Site.
package megbook

import (
	"context"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/mrlokans/bookfetch/internal/extract"
	"github.com/mrlokans/bookfetch/internal/fetch"
	"github.com/mrlokans/bookfetch/internal/sources"
	"github.com/mrlokans/bookfetch/internal/utils"
)

const (
	simplifiedMarker = "『簡體書』"
	editorsPick      = "編輯推薦"
	shopCode         = "書城自編碼"
	titleLabel       = "書名："
	detailsPrefix    = "詳情"
)

// The storefront text is flattened to a single line before matching, so each
// pattern either runs up to the next field label or stops at whitespace.
var (
	authorPatterns = extract.Patterns{
		extract.P(`作者[：:]\s*([^出版\n]+?)(?:出版|$)`),
		extract.P(`作者[：:]\s*(\S+)`),
		extract.P(`作者[：:]\s*([^國際書號]+)國際書號`),
	}
	pressPatterns = extract.Patterns{
		extract.P(`出版社[：:]\s*([^出版日期\n]+?)(?:出版日期|$)`),
		extract.P(`出版社[：:]\s*(\S+)`),
	}
	// "2012-8" and "2012年8月" both reduce to the bare year.
	yearPatterns = extract.Patterns{
		{Re: regexp.MustCompile(`出版日期[：:]\s*(\d{4})`), Transform: utils.ExtractYear},
	}
	isbnPatterns = extract.Patterns{
		{Re: regexp.MustCompile(`ISBN[：:]\s*(\d{13}|\d{10})`), Transform: utils.NormalizeISBN},
		{Re: regexp.MustCompile(`國際書號[（(]ISBN[）)][：:]\s*(\d{13}|\d{10})`), Transform: utils.NormalizeISBN},
		{Re: regexp.MustCompile(`國際書號[：:]\s*(\d{13}|\d{10})`), Transform: utils.NormalizeISBN},
	}
	pagesPatterns = extract.Patterns{
		extract.P(`頁數[：:]\s*(\d+)`),
		extract.P(`頁數/字數[：:]\s*(\d+)`),
	}
	// Page-wide title patterns, tried first on the Taiwan site.
	titlePatterns = extract.Patterns{
		extract.P(`『簡體書』\s*([^書城自編碼\n]+?)(?:書城自編碼|$)`),
		extract.P(`書名[：:]\s*(\S+)`),
		extract.P(`書名[：:]\s*([^作者]+?)作者`),
	}

	coverSelectors = extract.Selectors{
		`img[src*="cover"]`,
		`img[src*="book"]`,
		`img[alt*="封面"]`,
		`img[src*="prod"]`,
	}
)

// Adapter implements sources.Adapter for one megbook site.
type Adapter struct {
	deps sources.Deps
	site Site
}

func New(deps sources.Deps, site Site) *Adapter {
	return &Adapter{deps: deps, site: site}
}

func (a *Adapter) Name() string  { return string(a.site.ID) }
func (a *Adapter) Label() string { return a.site.Label }

func (a *Adapter) headers() map[string]string {
	return fetch.MegbookHeaders(a.site.Referer)
}

func (a *Adapter) Search(ctx context.Context, keyword string) []entities.BookSummary {
	kw, ok := sources.Keyword(keyword)
	if !ok {
		return []entities.BookSummary{}
	}

	results := fetch.Retry(ctx, a.deps.Policy, func(ctx context.Context) ([]entities.BookSummary, error) {
		resp, err := a.deps.Fetcher.Get(ctx, a.site.SearchURL, fetch.Request{
			Headers: a.headers(),
			Params: url.Values{
				"range":      {""},
				"keywords":   {kw},
				"searchType": {"2"},
				"Submit":     {"搜寻.."},
			},
		})
		if err != nil {
			return nil, err
		}
		doc, err := resp.Document()
		if err != nil {
			return nil, err
		}
		return a.parseResults(doc.Selection), nil
	}, nil)

	return sources.Cap(results)
}

func (a *Adapter) parseResults(root *goquery.Selection) []entities.BookSummary {
	seen := make(map[string]struct{})
	var out []entities.BookSummary

	root.Find("table td").Each(func(_ int, cell *goquery.Selection) {
		var summary *entities.BookSummary
		extract.Guard(func() string {
			summary = a.parseCell(cell)
			return ""
		})
		if summary == nil {
			return
		}
		if _, dup := seen[summary.Locator]; dup {
			return
		}
		seen[summary.Locator] = struct{}{}

		if summary.Author == "" || strings.HasPrefix(summary.Title, detailsPrefix) {
			return
		}
		out = append(out, *summary)
	})
	return out
}

// parseCell reads one result cell: a product link followed by
// "作者：… 出版：… 日期：…『簡體書』" text.
func (a *Adapter) parseCell(cell *goquery.Selection) *entities.BookSummary {
	text := utils.Clean(cell.Text())
	if text == "" {
		return nil
	}

	link := cell.Find("a").First()
	href, _ := link.Attr("href")
	if href == "" || !strings.HasPrefix(href, a.site.DetailPrefix) {
		return nil
	}

	title := utils.Clean(link.Text())
	if title == "" {
		title = utils.Clean(strings.SplitN(text, "『", 2)[0])
	}
	title = cleanTitle(strings.ReplaceAll(title, editorsPick+"：", ""))

	s := &entities.BookSummary{
		Locator: href,
		Title:   title,
		Author:  extract.Between(text, "作者：", "出版："),
		Press:   extract.Between(text, "出版：", "日期："),
		Year:    utils.ExtractYear(extract.Between(text, "日期：", "『")),
	}
	if src, ok := cell.Find("img").First().Attr("src"); ok && src != "" {
		s.CoverURL = resolve(a.site.SearchURL, src)
	}

	if s.Title == "" || (s.Author == "" && s.Press == "") {
		return nil
	}
	return s
}

// Details scrapes a product page. The locator is the product URL.
func (a *Adapter) Details(ctx context.Context, locator string) *entities.BookDetail {
	if strings.TrimSpace(locator) == "" {
		return nil
	}

	doc := fetch.Retry(ctx, a.deps.Policy, func(ctx context.Context) (*goquery.Document, error) {
		resp, err := a.deps.Fetcher.Get(ctx, locator, fetch.Request{Headers: a.headers()})
		if err != nil {
			return nil, err
		}
		return resp.Document()
	}, nil)
	if doc == nil {
		return nil
	}

	detail := a.parseDetail(doc.Selection, locator)
	if !detail.HasTitle() {
		log.Printf("[%s] no title on %s", a.site.ID, locator)
		return nil
	}
	return detail
}

func (a *Adapter) parseDetail(root *goquery.Selection, locator string) *entities.BookDetail {
	text := utils.Clean(root.Text())

	d := &entities.BookDetail{URL: locator}
	d.Locator = locator
	d.Title = a.title(root, text, locator)
	d.Author = authorPatterns.Match(text)
	d.Press = pressPatterns.Match(text)
	d.Year = yearPatterns.Match(text)
	d.ISBN = isbnPatterns.Match(text)
	d.Pages = pagesPatterns.Match(text)
	d.Price = a.site.price.Match(text)
	d.Description = a.site.descriptionSections.Prose(text, a.site.descriptionCut...)
	d.AuthorIntro = a.site.introSections.Prose(text, a.site.introCut...)

	if src := coverSelectors.Attr(root, "src"); src != "" {
		d.CoverURL = resolve(locator, src)
	}
	if a.site.LinkDouban && d.ISBN != "" {
		d.DoubanURL = "https://book.douban.com/isbn/" + d.ISBN
	}
	return d
}

func (a *Adapter) title(root *goquery.Selection, text, locator string) string {
	fromPatterns := titlePatterns.Candidate(text)
	fromTable := func() string { return tableTitle(root, productID(locator)) }
	fromDescCells := func() string { return descCellTitle(root) }

	if a.site.PatternTitleFirst {
		return cleanTitle(extract.FirstValid(fromPatterns, fromTable))
	}
	return cleanTitle(extract.FirstValid(fromTable, fromDescCells))
}

// tableTitle scans table cells for the first one that names the book.
func tableTitle(root *goquery.Selection, proID string) string {
	var title string
	root.Find("table td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		text := utils.Clean(cell.Text())
		switch {
		case strings.Contains(text, simplifiedMarker):
			title = extract.Between(text, simplifiedMarker, shopCode)
		case strings.Contains(text, titleLabel):
			title = extract.Between(text, titleLabel, "作者")
		case proID != "" && strings.Contains(text, proID) && strings.Contains(text, "："):
			parts := strings.Split(text, "：")
			title = utils.Clean(parts[1])
		default:
			return true
		}
		return title == ""
	})
	return title
}

func descCellTitle(root *goquery.Selection) string {
	cells := root.Find("td.desc")
	if cells.Length() == 0 {
		cells = root.Find(`td[bgcolor="#FFFFFF"]`)
	}
	var title string
	cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		text := utils.Clean(cell.Text())
		if strings.Contains(text, simplifiedMarker) {
			title = extract.Between(text, simplifiedMarker, shopCode)
		}
		return title == ""
	})
	return title
}

func cleanTitle(title string) string {
	title = strings.ReplaceAll(title, editorsPick, "")
	title = strings.ReplaceAll(title, simplifiedMarker, "")
	return utils.Clean(title)
}

func productID(locator string) string {
	u, err := url.Parse(locator)
	if err != nil {
		return ""
	}
	return u.Query().Get("proID")
}

func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

var _ sources.Adapter = (*Adapter)(nil)
