// Package sources defines the contract every metadata source implements and
// the registry that orders them for the menu.
package sources

import (
	"context"
	"errors"
	"strings"

	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/mrlokans/bookfetch/internal/fetch"
)

// MaxResults caps every search.
const MaxResults = 10

var ErrUnknownSource = errors.New("unknown source")

// Adapter is a single metadata source. Neither operation returns an error:
// network and parse failures degrade to an empty list or a nil record.
type Adapter interface {
	Name() string
	Label() string
	// Search returns at most MaxResults summaries, never nil.
	Search(ctx context.Context, keyword string) []entities.BookSummary
	// Details returns nil when no title could be recovered.
	Details(ctx context.Context, locator string) *entities.BookDetail
}

// Getter is the subset of *fetch.Fetcher adapters depend on.
type Getter interface {
	Get(ctx context.Context, rawURL string, r fetch.Request) (*fetch.Response, error)
}

// Deps bundles what every adapter is constructed with.
type Deps struct {
	Fetcher Getter
	Policy  fetch.Policy
}

// Keyword trims kw and reports whether a search is worth issuing.
func Keyword(kw string) (string, bool) {
	kw = strings.TrimSpace(kw)
	return kw, kw != ""
}

// Cap truncates to MaxResults and turns nil into an empty slice.
func Cap(results []entities.BookSummary) []entities.BookSummary {
	if results == nil {
		return []entities.BookSummary{}
	}
	if len(results) > MaxResults {
		return results[:MaxResults]
	}
	return results
}
