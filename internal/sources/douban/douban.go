// Package douban searches Douban Books through its suggest endpoint and
// scrapes subject pages for details.
package douban

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

const DefaultBaseURL = "https://book.douban.com"

// bookType marks books in the suggest feed (as opposed to authors, series...).
const bookType = "b"

var (
	// #info is a run of "label: value" lines separated by <br>.
	infoAuthor = extract.Patterns{extract.PV(`作者\s*[:：]?\s*([^\n]+)`, utils.IsValidAuthor)}
	infoPress  = extract.Patterns{extract.P(`出版社:\s*([^\n]+)`)}
	infoYear   = extract.Patterns{{Re: regexp.MustCompile(`出版年:\s*([^\n]+)`), Transform: utils.ExtractYear}}
	infoISBN   = extract.Patterns{{Re: regexp.MustCompile(`ISBN:\s*([^\n]+)`), Transform: utils.NormalizeISBN}}
	infoPages  = extract.Patterns{extract.P(`页数:\s*(\d+)`)}
	infoPrice  = extract.Patterns{extract.P(`定价:\s*([^\n]+)`)}

	titleSelectors       = extract.Selectors{"#wrapper > h1 > span", "#wrapper h1"}
	authorSelectors      = extract.Selectors{`#info .pl:contains("作者") + a`, `#info span:contains("作者") a`}
	descriptionSelectors = extract.Selectors{"#link-report .all .intro", "#link-report .intro"}
	coverSelectors       = extract.Selectors{"#mainpic img"}

	lineBreak  = regexp.MustCompile(`(?i)<br\s*/?>`)
	whitespace = regexp.MustCompile(`\s+`)
)

type suggestItem struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Author    string `json:"author_name"`
	Year      string `json:"year"`
	Pic       string `json:"pic"`
	Publisher string `json:"publisher_name"`
}

// Adapter implements sources.Adapter for Douban.
type Adapter struct {
	deps    sources.Deps
	baseURL string
}

func New(deps sources.Deps) *Adapter {
	return NewWithBaseURL(deps, DefaultBaseURL)
}

// NewWithBaseURL points the suggest endpoint somewhere other than book.douban.com.
func NewWithBaseURL(deps sources.Deps, baseURL string) *Adapter {
	return &Adapter{deps: deps, baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *Adapter) Name() string  { return string(entities.SourceDouban) }
func (a *Adapter) Label() string { return "豆瓣图书" }

func (a *Adapter) Search(ctx context.Context, keyword string) []entities.BookSummary {
	kw, ok := sources.Keyword(keyword)
	if !ok {
		return []entities.BookSummary{}
	}

	results := fetch.Retry(ctx, a.deps.Policy, func(ctx context.Context) ([]entities.BookSummary, error) {
		resp, err := a.deps.Fetcher.Get(ctx, a.baseURL+"/j/subject_suggest", fetch.Request{
			Headers: fetch.DoubanHeaders,
			Params:  url.Values{"q": {kw}},
		})
		if err != nil {
			return nil, err
		}

		var items []suggestItem
		if err := resp.JSON(&items); err != nil {
			return nil, err
		}
		return toSummaries(items), nil
	}, nil)

	return sources.Cap(results)
}

func toSummaries(items []suggestItem) []entities.BookSummary {
	out := make([]entities.BookSummary, 0, len(items))
	for _, it := range items {
		if it.Type != bookType {
			continue
		}
		title := utils.Clean(it.Title)
		if title == "" || it.URL == "" {
			continue
		}
		out = append(out, entities.BookSummary{
			Locator:  it.URL,
			Title:    title,
			Author:   utils.Clean(it.Author),
			Press:    utils.Clean(it.Publisher),
			Year:     utils.ExtractYear(it.Year),
			CoverURL: it.Pic,
		})
	}
	return out
}

// Details scrapes a subject page. The locator is the page URL from Search.
func (a *Adapter) Details(ctx context.Context, locator string) *entities.BookDetail {
	if strings.TrimSpace(locator) == "" {
		return nil
	}

	doc := fetch.Retry(ctx, a.deps.Policy, func(ctx context.Context) (*goquery.Document, error) {
		resp, err := a.deps.Fetcher.Get(ctx, locator, fetch.Request{Headers: fetch.DoubanHeaders})
		if err != nil {
			return nil, err
		}
		return resp.Document()
	}, nil)
	if doc == nil {
		return nil
	}

	detail := parseSubject(doc.Selection)
	if !detail.HasTitle() {
		log.Printf("[douban] no title on %s", locator)
		return nil
	}
	detail.Locator = locator
	detail.URL = locator
	return detail
}

func parseSubject(root *goquery.Selection) *entities.BookDetail {
	info := infoText(root)

	d := &entities.BookDetail{}
	d.Title = titleSelectors.Text(root, nil)
	d.Author = extract.FirstValid(
		func() string { return authorSelectors.Text(root, utils.IsValidAuthor) },
		infoAuthor.Candidate(info),
	)
	d.Press = infoPress.Match(info)
	d.Year = infoYear.Match(info)
	d.ISBN = infoISBN.Match(info)
	d.Pages = infoPages.Match(info)
	d.Price = infoPrice.Match(info)
	d.Description = descriptionSelectors.Text(root, nil)
	d.AuthorIntro = extract.Guard(func() string { return authorIntro(root) })
	d.CoverURL = coverSelectors.Attr(root, "src")
	return d
}

// infoText flattens #info to one "label: value" per line.
func infoText(root *goquery.Selection) string {
	info := root.Find("#info").First()
	if info.Length() == 0 {
		return ""
	}
	html, err := info.Html()
	if err != nil {
		return info.Text()
	}
	html = whitespace.ReplaceAllString(html, " ")
	html = lineBreak.ReplaceAllString(html, "\n")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return info.Text()
	}

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// authorIntro finds the intro block whose nearest preceding heading mentions 作者.
func authorIntro(root *goquery.Selection) string {
	var found string
	root.Find("div.indent").EachWithBreak(func(_ int, indent *goquery.Selection) bool {
		heading := indent.PrevAllFiltered("h2").First()
		if !strings.Contains(heading.Text(), "作者") {
			return true
		}
		intro := indent.Find("div.all div.intro").First()
		if intro.Length() == 0 {
			intro = indent.Find("div.intro").First()
		}
		found = utils.Clean(intro.Text())
		return found == ""
	})
	return found
}

var _ sources.Adapter = (*Adapter)(nil)
