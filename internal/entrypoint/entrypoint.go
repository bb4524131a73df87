package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/bookfetch/internal/config"
	"github.com/mrlokans/bookfetch/internal/covers"
	"github.com/mrlokans/bookfetch/internal/fetch"
	http_controllers "github.com/mrlokans/bookfetch/internal/http"
	"github.com/mrlokans/bookfetch/internal/imagehost"
	"github.com/mrlokans/bookfetch/internal/sources"
	"github.com/mrlokans/bookfetch/internal/sources/amazon"
	"github.com/mrlokans/bookfetch/internal/sources/douban"
	"github.com/mrlokans/bookfetch/internal/sources/google"
	"github.com/mrlokans/bookfetch/internal/sources/megbook"
	"github.com/mrlokans/bookfetch/internal/tokenstore"
)

// Components is everything the CLI and the HTTP API are built from.
type Components struct {
	Registry  *sources.Registry
	ImageHost *imagehost.Client
	Covers    *covers.Pipeline
}

// Build wires the sources and the cover pipeline from cfg.
func Build(cfg *config.Config) *Components {
	policy := fetch.PolicyFromConfig(cfg.Request)
	deps := sources.Deps{
		Fetcher: fetch.New(cfg.Request.Timeout),
		Policy:  policy,
	}

	host := imagehost.New(cfg.ImageHost, cfg.Request.Timeout, tokenstore.New(cfg.Storage.TokenFile))
	pipeline := covers.NewPipeline(cfg.ImageHost, cfg.Storage.ScratchDir, cfg.Request.Timeout, policy, host)

	if cfg.ImageHost.Enabled && !pipeline.Enabled() {
		log.Printf("WARNING: IMGHOST_ENABLED is set but IMGHOST_BASE_URL, IMGHOST_EMAIL or IMGHOST_PASSWORD is missing. Covers will not be mirrored.")
	}

	return &Components{
		Registry:  NewRegistry(deps),
		ImageHost: host,
		Covers:    pipeline,
	}
}

// NewRegistry registers the sources in menu order.
func NewRegistry(deps sources.Deps) *sources.Registry {
	return sources.NewRegistry(
		douban.New(deps),
		megbook.New(deps, megbook.HK),
		megbook.New(deps, megbook.TW),
		amazon.New(deps),
		google.New(deps),
	)
}

func Serve(router *gin.Engine, cfg *config.Config) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -2 is SIGINT, plain kill is SIGTERM; SIGKILL cannot be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Router builds the JSON API over already wired components.
func Router(c *Components, version string) *gin.Engine {
	return http_controllers.NewRouter(http_controllers.RouterConfig{
		Registry:     c.Registry,
		Covers:       c.Covers,
		CoversActive: c.Covers.Enabled(),
		Version:      version,
	})
}

// Run wires the components from cfg, starts the JSON API and blocks until
// interrupted.
func Run(cfg *config.Config, version string) {
	RunWith(Build(cfg), cfg, version)
}

// RunWith is Run over components the caller has already built.
func RunWith(c *Components, cfg *config.Config, version string) {
	log.Printf("Starting bookfetch v%s", version)
	for _, a := range c.Registry.All() {
		log.Printf("Source registered: %s (%s)", a.Name(), a.Label())
	}

	Serve(Router(c, version), cfg)
}
