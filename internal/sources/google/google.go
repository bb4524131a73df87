// Package google queries the Google Books volumes API, keeping only
// Chinese-titled volumes.
package google

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/mrlokans/bookfetch/internal/extract"
	"github.com/mrlokans/bookfetch/internal/fetch"
	"github.com/mrlokans/bookfetch/internal/sources"
	"github.com/mrlokans/bookfetch/internal/utils"
)

const (
	DefaultAPIURL = "https://www.googleapis.com/books/v1/volumes"
	DefaultWebURL = "https://books.google.com/books"

	// The API is asked for more than MaxResults since most hits for a
	// Chinese keyword are foreign-language editions that get filtered out.
	rawResults = 40
)

var bracketed = regexp.MustCompile(`\[.*?\]`)

// Adapter implements sources.Adapter for Google Books.
type Adapter struct {
	deps   sources.Deps
	apiURL string
	webURL string
}

func New(deps sources.Deps) *Adapter {
	return NewWithURLs(deps, DefaultAPIURL, DefaultWebURL)
}

// NewWithURLs points the adapter at alternative API and web endpoints.
func NewWithURLs(deps sources.Deps, apiURL, webURL string) *Adapter {
	return &Adapter{
		deps:   deps,
		apiURL: strings.TrimRight(apiURL, "/"),
		webURL: webURL,
	}
}

func (a *Adapter) Name() string  { return string(entities.SourceGoogle) }
func (a *Adapter) Label() string { return "Google Books" }

func (a *Adapter) Search(ctx context.Context, keyword string) []entities.BookSummary {
	kw, ok := sources.Keyword(keyword)
	if !ok {
		return []entities.BookSummary{}
	}

	list := fetch.Retry(ctx, a.deps.Policy, func(ctx context.Context) (*volumeList, error) {
		resp, err := a.deps.Fetcher.Get(ctx, a.apiURL, fetch.Request{
			Params: url.Values{
				"q":          {"intitle:" + kw},
				"maxResults": {strconv.Itoa(rawResults)},
				"orderBy":    {"relevance"},
				"printType":  {"books"},
			},
		})
		if err != nil {
			return nil, err
		}
		var out volumeList
		if err := resp.JSON(&out); err != nil {
			return nil, err
		}
		return &out, nil
	}, nil)
	if list == nil {
		return []entities.BookSummary{}
	}

	return sources.Cap(summarize(list.Items))
}

// summarize keeps Chinese-titled volumes with an author or publisher, one per
// distinct title, stopping once MaxResults are collected.
func summarize(items []volume) []entities.BookSummary {
	var out []entities.BookSummary
	seen := make(map[string]struct{})

	for _, item := range items {
		info := item.VolumeInfo
		title := cleanText(info.Title)
		if !utils.IsChinese(title) {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}

		s := entities.BookSummary{
			Locator: item.ID,
			Title:   title,
			Author:  cleanText(strings.Join(info.Authors, ", ")),
			Press:   cleanText(info.Publisher),
			Year:    info.year(),
		}
		if s.Author == "" && s.Press == "" {
			continue
		}

		out = append(out, s)
		seen[title] = struct{}{}
		if len(out) >= sources.MaxResults {
			break
		}
	}
	return out
}

// Details looks up a volume by id. Description and cover fall back to the
// public book page when the API has neither.
func (a *Adapter) Details(ctx context.Context, locator string) *entities.BookDetail {
	id := strings.TrimSpace(locator)
	if id == "" {
		return nil
	}

	vol := fetch.Retry(ctx, a.deps.Policy, func(ctx context.Context) (*volume, error) {
		resp, err := a.deps.Fetcher.Get(ctx, a.apiURL+"/"+url.PathEscape(id), fetch.Request{})
		if err != nil {
			return nil, err
		}
		var out volume
		if err := resp.JSON(&out); err != nil {
			return nil, err
		}
		return &out, nil
	}, nil)
	if vol == nil {
		return nil
	}

	d := buildDetail(vol.VolumeInfo)
	d.Locator = id
	d.URL = DefaultWebURL + "?id=" + url.QueryEscape(id)

	if d.Description == "" || d.CoverURL == "" {
		web := a.webInfo(ctx, id)
		if d.Description == "" {
			d.Description = web.description
		}
		if d.CoverURL == "" {
			d.CoverURL = web.coverURL
		}
	}
	if d.Description == "" {
		d.Description = synthesizeDescription(d)
	}
	d.AuthorIntro = knownAuthorIntro(d.Author)

	if !valid(d) {
		log.Printf("[google] volume %s rejected: title %q", id, d.Title)
		return nil
	}
	return d
}

func buildDetail(info volumeInfo) *entities.BookDetail {
	d := &entities.BookDetail{}
	d.Title = cleanText(info.Title)
	d.Author = cleanText(strings.Join(info.Authors, ", "))
	d.Press = cleanText(info.Publisher)
	d.Year = info.year()
	d.Description = cleanText(info.Description)
	d.ISBN = info.isbn()
	d.CoverURL = info.ImageLinks.best()
	if info.PageCount > 0 {
		d.Pages = strconv.Itoa(info.PageCount)
	}
	return d
}

type webPage struct {
	description string
	coverURL    string
}

// webInfo scrapes the synopsis and front cover from the public book page.
// Failures are logged and yield an empty result.
func (a *Adapter) webInfo(ctx context.Context, id string) webPage {
	doc := fetch.Retry(ctx, a.deps.Policy, func(ctx context.Context) (*goquery.Document, error) {
		resp, err := a.deps.Fetcher.Get(ctx, a.webURL, fetch.Request{
			Headers: fetch.DefaultHeaders,
			Params:  url.Values{"id": {id}},
		})
		if err != nil {
			return nil, err
		}
		return resp.Document()
	}, nil)
	if doc == nil {
		log.Printf("[google] no web page for volume %s", id)
		return webPage{}
	}

	root := doc.Selection
	info := webPage{
		description: cleanText(webDescriptionSelectors.Text(root, nil)),
	}
	if src := webCoverSelectors.Attr(root, "src"); src != "" {
		src = strings.ReplaceAll(src, "&edge=curl", "")
		if !strings.HasPrefix(src, "http") {
			src = "https:" + src
		}
		info.coverURL = src
	}
	return info
}

var (
	webDescriptionSelectors = extract.Selectors{"#synopsistext", "div.description"}
	webCoverSelectors       = extract.Selectors{"img#summary-frontcover"}
)

// synthesizeDescription writes a one-line blurb from the bibliographic fields
// when neither the API nor the web page has a description.
func synthesizeDescription(d *entities.BookDetail) string {
	press := d.Press
	if !strings.HasSuffix(press, "出版社") {
		press += "出版社"
	}
	return fmt.Sprintf("《%s》是由%s创作的一部文学作品，由%s于%s年出版。", d.Title, d.Author, press, d.Year)
}

// valid requires a Chinese title plus at least one descriptive field.
func valid(d *entities.BookDetail) bool {
	if !d.HasTitle() || !utils.IsChinese(d.Title) {
		return false
	}
	return d.Author != "" || d.Press != "" || d.Year != "" || d.Description != ""
}

// cleanText collapses whitespace and drops bracketed format notes such as
// "[Paperback]".
func cleanText(s string) string {
	return utils.Clean(bracketed.ReplaceAllString(utils.Clean(s), ""))
}

var _ sources.Adapter = (*Adapter)(nil)
