// Package amazon scrapes book search results and product pages from the
// Amazon US storefront.
package amazon

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/mrlokans/bookfetch/internal/extract"
	"github.com/mrlokans/bookfetch/internal/fetch"
	"github.com/mrlokans/bookfetch/internal/sources"
	"github.com/mrlokans/bookfetch/internal/utils"
)

const DefaultBaseURL = "https://www.amazon.com"

// Adapter implements sources.Adapter for Amazon.
type Adapter struct {
	deps    sources.Deps
	baseURL string
}

func New(deps sources.Deps) *Adapter {
	return NewWithBaseURL(deps, DefaultBaseURL)
}

func NewWithBaseURL(deps sources.Deps, baseURL string) *Adapter {
	return &Adapter{deps: deps, baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *Adapter) Name() string  { return string(entities.SourceAmazon) }
func (a *Adapter) Label() string { return "亚马逊图书" }

func (a *Adapter) Search(ctx context.Context, keyword string) []entities.BookSummary {
	kw, ok := sources.Keyword(keyword)
	if !ok {
		return []entities.BookSummary{}
	}

	results := fetch.Retry(ctx, a.deps.Policy, func(ctx context.Context) ([]entities.BookSummary, error) {
		resp, err := a.deps.Fetcher.Get(ctx, a.baseURL+"/s", fetch.Request{
			Headers: fetch.AmazonHeaders,
			Params: url.Values{
				"k":          {kw},
				"i":          {"stripbooks-intl-ship"},
				"__mk_zh_CN": {"亚马逊网站"},
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
	var out []entities.BookSummary
	root.Find(`div[data-component-type="s-search-result"]`).Each(func(_ int, item *goquery.Selection) {
		var summary *entities.BookSummary
		extract.Guard(func() string {
			summary = a.parseItem(item)
			return ""
		})
		if summary != nil {
			out = append(out, *summary)
		}
	})
	return out
}

func (a *Adapter) parseItem(item *goquery.Selection) *entities.BookSummary {
	link := item.Find("h2 a.a-link-normal").First()
	if link.Length() == 0 {
		link = item.Find("a.a-link-normal:has(h2)").First()
	}
	title := utils.Clean(link.Text())
	if title == "" {
		return nil
	}
	href, _ := link.Attr("href")

	s := &entities.BookSummary{
		Locator: a.resolve(href),
		Title:   title,
		Author:  searchAuthor(item),
	}
	if src, ok := item.Find("img.s-image").First().Attr("src"); ok {
		s.CoverURL = src
	}

	secondary := utils.Clean(item.Find(".a-size-base.a-color-secondary").First().Text())
	if secondary != "" {
		if m := summaryPressRe.FindStringSubmatch(secondary); m != nil {
			s.Press = utils.Clean(m[1])
			s.Year = utils.ExtractYear(m[2])
		}
		if s.Year == "" {
			s.Year = datePatterns.Match(secondary)
		}
	}
	return s
}

// Details scrapes a product page. The locator is the absolute product URL.
func (a *Adapter) Details(ctx context.Context, locator string) *entities.BookDetail {
	if strings.TrimSpace(locator) == "" {
		return nil
	}

	doc := fetch.Retry(ctx, a.deps.Policy, func(ctx context.Context) (*goquery.Document, error) {
		resp, err := a.deps.Fetcher.Get(ctx, a.resolve(locator), fetch.Request{Headers: fetch.AmazonHeaders})
		if err != nil {
			return nil, err
		}
		return resp.Document()
	}, nil)
	if doc == nil {
		return nil
	}

	detail := parseProduct(doc.Selection)
	if !detail.HasTitle() {
		log.Printf("[amazon] no title on %s", locator)
		return nil
	}
	detail.Locator = locator
	detail.URL = a.resolve(locator)
	return detail
}

func parseProduct(root *goquery.Selection) *entities.BookDetail {
	d := &entities.BookDetail{}
	d.Title = titleSelectors.Text(root, nil)
	d.Author = extract.Guard(func() string {
		return utils.JoinAuthors(authorSelectors.All(root))
	})

	for _, bullet := range detailBulletSelectors.All(root) {
		bullet := bullet
		extract.Guard(func() string {
			applyBullet(d, bullet)
			return ""
		})
	}

	d.Price = priceSelectors.Text(root, nil)
	d.Description = extract.Guard(func() string { return description(root) })
	d.CoverURL = extract.Guard(func() string { return coverURL(root) })
	return d
}

// applyBullet reads one product-details line. Later lines overwrite earlier
// ones, so an ISBN-13 line following the ISBN-10 line wins.
func applyBullet(d *entities.BookDetail, text string) {
	if containsAny(text, publisherKeys...) && len([]rune(text)) >= 3 && text != "Publisher" && text != "出版社" {
		if press := publisherPatterns.Match(text); press != "" {
			d.Press = press
			if m := parenthesised.FindStringSubmatch(text); m != nil {
				if y := utils.ExtractYear(m[1]); y != "" {
					d.Year = y
				}
			}
		}
		if d.Year == "" {
			d.Year = datePatterns.Match(text)
		}
	}

	if strings.Contains(text, "ISBN") {
		if isbn := isbnPatterns.Match(text); isbn != "" {
			d.ISBN = isbn
		}
	}

	if containsAny(text, pageKeys...) {
		if pages := pagesPatterns.Match(text); pages != "" {
			d.Pages = pages
		}
	}
}

func (a *Adapter) resolve(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if ref != "" && !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return a.baseURL + ref
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var _ sources.Adapter = (*Adapter)(nil)
