package interfaces

// Compile-time interface implementation checks. A concrete type that stops
// satisfying one of these breaks the build here rather than at the call site.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookfetch/internal/cli"
	"github.com/mrlokans/bookfetch/internal/covers"
	"github.com/mrlokans/bookfetch/internal/fetch"
	"github.com/mrlokans/bookfetch/internal/http"
	"github.com/mrlokans/bookfetch/internal/imagehost"
	"github.com/mrlokans/bookfetch/internal/sources"
	"github.com/mrlokans/bookfetch/internal/sources/amazon"
	"github.com/mrlokans/bookfetch/internal/sources/douban"
	"github.com/mrlokans/bookfetch/internal/sources/google"
	"github.com/mrlokans/bookfetch/internal/sources/megbook"
	"github.com/mrlokans/bookfetch/internal/tokenstore"
)

// =============================================================================
// Sources
// =============================================================================

var _ sources.Adapter = (*douban.Adapter)(nil)
var _ sources.Adapter = (*megbook.Adapter)(nil)
var _ sources.Adapter = (*amazon.Adapter)(nil)
var _ sources.Adapter = (*google.Adapter)(nil)

var _ sources.Getter = (*fetch.Fetcher)(nil)

var _ http.SourceRegistry = (*sources.Registry)(nil)
var _ cli.Registry = (*sources.Registry)(nil)

// =============================================================================
// Cover pipeline
// =============================================================================

var _ covers.Uploader = (*imagehost.Client)(nil)
var _ imagehost.TokenStore = (*tokenstore.Store)(nil)

var _ http.CoverProcessor = (*covers.Pipeline)(nil)
var _ cli.CoverProcessor = (*covers.Pipeline)(nil)
var _ cli.Authenticator = (*imagehost.Client)(nil)
