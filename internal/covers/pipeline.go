// Package covers mirrors a book's cover image onto the configured image host
// and rewrites the record's cover URL to point at the hosted copy.
package covers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mrlokans/bookfetch/internal/config"
	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/mrlokans/bookfetch/internal/fetch"
	"github.com/mrlokans/bookfetch/internal/imagehost"
	"github.com/mrlokans/bookfetch/internal/utils"
)

// Uploader stores a local image file and returns where it can be reached.
type Uploader interface {
	Upload(ctx context.Context, path string) (*imagehost.UploadResult, error)
}

// Pipeline downloads a cover to a scratch file and re-uploads it.
type Pipeline struct {
	enabled    bool
	uploader   Uploader
	scratchDir string
	policy     fetch.Policy
	httpClient *http.Client
}

// NewPipeline builds a pipeline. It is a no-op unless hosting is switched on
// and base URL, email and password are all configured.
func NewPipeline(cfg config.ImageHost, scratchDir string, timeout time.Duration, policy fetch.Policy, uploader Uploader) *Pipeline {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	if timeout <= 0 {
		timeout = fetch.DefaultTimeout
	}
	return &Pipeline{
		enabled:    cfg.CoverMirroringEnabled() && uploader != nil,
		uploader:   uploader,
		scratchDir: scratchDir,
		policy:     policy,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether Process will do anything.
func (p *Pipeline) Enabled() bool {
	return p != nil && p.enabled
}

// Process replaces d.CoverURL with the hosted copy. Any failure leaves the
// original URL in place; the scratch file is removed either way. It reports
// whether the URL was rewritten.
func (p *Pipeline) Process(ctx context.Context, d *entities.BookDetail) bool {
	if !p.Enabled() || d == nil || d.CoverURL == "" {
		return false
	}

	if err := os.MkdirAll(p.scratchDir, 0755); err != nil {
		log.Printf("[covers] create scratch dir: %v", err)
		return false
	}
	scratch := filepath.Join(p.scratchDir, scratchName(d.Title))
	defer os.Remove(scratch)

	downloaded := fetch.Retry(ctx, p.policy, func(ctx context.Context) (bool, error) {
		if err := p.download(ctx, d.CoverURL, scratch); err != nil {
			return false, err
		}
		return true, nil
	}, false)
	if !downloaded {
		log.Printf("[covers] download failed, keeping %s", d.CoverURL)
		return false
	}

	result, err := p.uploader.Upload(ctx, scratch)
	if err != nil {
		log.Printf("[covers] upload failed, keeping %s: %v", d.CoverURL, err)
		return false
	}
	if result == nil || result.URL == "" {
		return false
	}

	log.Printf("[covers] %s -> %s", d.CoverURL, result.URL)
	d.CoverURL = result.URL
	return true
}

// scratchName gives every attempt its own file so that two lookups of the
// same title never share one.
func scratchName(title string) string {
	return fmt.Sprintf("%s_%s_cover.jpg", uuid.NewString(), utils.SanitizeFilename(title))
}

// download streams url into path. A partially written file is removed.
func (p *Pipeline) download(ctx context.Context, url, path string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", fetch.DefaultHeaders["User-Agent"])
	req.Header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &fetch.TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &fetch.StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close scratch file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return &fetch.TransportError{URL: url, Err: err}
	}
	return nil
}
