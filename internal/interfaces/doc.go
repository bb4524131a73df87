// Package interfaces documents the abstractions bookfetch is assembled from.
//
// # Interfaces
//
//   - sources.Adapter: one metadata source, Search and Details (internal/sources/source.go)
//   - sources.Getter: outbound GET used by the adapters (internal/sources/source.go)
//   - covers.Uploader: stores a local image and returns its URL (internal/covers/pipeline.go)
//   - imagehost.TokenStore: persisted upload token (internal/imagehost/imagehost.go)
//   - http.SourceRegistry, http.CoverProcessor: what the JSON API needs (internal/http/books.go)
//   - cli.Registry, cli.CoverProcessor, cli.Authenticator: what the commands need (internal/cli/app.go)
//
// # Adding a New Source
//
//  1. Create a package under internal/sources/ with an Adapter built from sources.Deps:
//
//     type Adapter struct { deps sources.Deps }
//
//     func New(deps sources.Deps) *Adapter
//     func (a *Adapter) Name() string
//     func (a *Adapter) Label() string
//     func (a *Adapter) Search(ctx context.Context, keyword string) []entities.BookSummary
//     func (a *Adapter) Details(ctx context.Context, locator string) *entities.BookDetail
//
//     Search returns an empty slice and Details returns nil on any failure;
//     errors are logged, never returned. Wrap fetches in fetch.Retry and
//     field rules in extract.FirstValid / extract.Patterns.
//
//  2. Add an id to entities.SourceID.
//
//  3. Register it in entrypoint.NewRegistry. Registration order is menu order.
//
//  4. Add a compile-time check to checks.go:
//
//     var _ sources.Adapter = (*mysource.Adapter)(nil)
package interfaces
