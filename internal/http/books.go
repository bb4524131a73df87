package http

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/mrlokans/bookfetch/internal/sources"
)

// SourceRegistry is the read side of sources.Registry.
type SourceRegistry interface {
	All() []sources.Adapter
	Get(name string) (sources.Adapter, error)
}

// CoverProcessor rewrites a record's cover URL to a mirrored copy.
type CoverProcessor interface {
	Process(ctx context.Context, d *entities.BookDetail) bool
}

// SourceInfo describes one source in the listing.
type SourceInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type SearchResponse struct {
	Source  string                 `json:"source"`
	Keyword string                 `json:"keyword"`
	Results []entities.BookSummary `json:"results"`
}

type DetailsResponse struct {
	Source      string               `json:"source"`
	Book        *entities.BookDetail `json:"book"`
	CoverHosted bool                 `json:"cover_hosted"`
}

// BooksController serves searches and lookups. Calls are handled one at a
// time: the adapters and the token file assume a single sequential user.
type BooksController struct {
	registry SourceRegistry
	covers   CoverProcessor

	mu sync.Mutex
}

func NewBooksController(registry SourceRegistry, covers CoverProcessor) *BooksController {
	return &BooksController{registry: registry, covers: covers}
}

func (bc *BooksController) ListSources(c *gin.Context) {
	all := bc.registry.All()
	out := make([]SourceInfo, 0, len(all))
	for _, a := range all {
		out = append(out, SourceInfo{ID: a.Name(), Label: a.Label()})
	}
	c.JSON(http.StatusOK, ListResponse{Data: out, Total: len(out)})
}

func (bc *BooksController) Search(c *gin.Context) {
	adapter, ok := bc.adapter(c)
	if !ok {
		return
	}
	keyword, ok := requireQuery(c, "q")
	if !ok {
		return
	}

	results := bc.search(c.Request.Context(), adapter, keyword)

	c.JSON(http.StatusOK, SearchResponse{
		Source:  adapter.Name(),
		Keyword: keyword,
		Results: results,
	})
}

func (bc *BooksController) search(ctx context.Context, adapter sources.Adapter, keyword string) []entities.BookSummary {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return adapter.Search(ctx, keyword)
}

// Details looks a record up and, unless covers=false, mirrors its cover.
func (bc *BooksController) Details(c *gin.Context) {
	adapter, ok := bc.adapter(c)
	if !ok {
		return
	}
	locator, ok := requireQuery(c, "locator")
	if !ok {
		return
	}
	mirror, ok := parseOptionalBool(c, "covers", true)
	if !ok {
		return
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	detail := adapter.Details(c.Request.Context(), locator)
	if detail == nil {
		respondNotFound(c, "book")
		return
	}

	hosted := false
	if mirror && bc.covers != nil {
		hosted = bc.covers.Process(c.Request.Context(), detail)
	}

	c.JSON(http.StatusOK, DetailsResponse{
		Source:      adapter.Name(),
		Book:        detail,
		CoverHosted: hosted,
	})
}

func (bc *BooksController) adapter(c *gin.Context) (sources.Adapter, bool) {
	adapter, err := bc.registry.Get(c.Param("source"))
	if errors.Is(err, sources.ErrUnknownSource) {
		respondNotFound(c, "source")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "lookup source")
		return nil, false
	}
	return adapter, true
}
