// Package cli holds the bookfetch command line: the interactive search loop,
// one-shot lookups, image host login and the HTTP server.
package cli

import (
	"context"

	"github.com/mrlokans/bookfetch/internal/config"
	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/mrlokans/bookfetch/internal/entrypoint"
	"github.com/mrlokans/bookfetch/internal/sources"
	"github.com/spf13/cobra"
)

// Registry is the part of sources.Registry the commands use.
type Registry interface {
	All() []sources.Adapter
	Get(name string) (sources.Adapter, error)
	At(n int) (sources.Adapter, bool)
}

type CoverProcessor interface {
	Process(ctx context.Context, d *entities.BookDetail) bool
}

type Authenticator interface {
	LoginWith(ctx context.Context, email, password string) (string, error)
}

// App is what the commands run against.
type App struct {
	Registry Registry
	Covers   CoverProcessor
	Auth     Authenticator

	// Email and Password are the configured image host credentials, used by
	// login when no flags are given and the prompt is left blank.
	Email    string
	Password string

	// Serve blocks running the HTTP API.
	Serve func()
}

// NewApp wires an App from configuration.
func NewApp(cfg *config.Config, version string) *App {
	return NewAppWith(entrypoint.Build(cfg), cfg, version)
}

// NewAppWith builds an App over existing components. The interactive commands
// and serve share them, so nothing is wired twice.
func NewAppWith(c *entrypoint.Components, cfg *config.Config, version string) *App {
	return &App{
		Registry: c.Registry,
		Covers:   c.Covers,
		Auth:     c.ImageHost,
		Email:    cfg.ImageHost.Email,
		Password: cfg.ImageHost.Password,
		Serve:    func() { entrypoint.RunWith(c, cfg, version) },
	}
}

// NewRootCommand builds the bookfetch command tree. Running it without a
// subcommand starts the interactive search.
func NewRootCommand(app *App, version string) *cobra.Command {
	search := newSearchCmd(app)

	root := &cobra.Command{
		Use:           "bookfetch",
		Short:         "Look up Chinese book metadata across Douban, Megbook, Amazon and Google Books",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          search.RunE,
	}
	root.AddCommand(search)
	root.AddCommand(newLookupCmd(app))
	root.AddCommand(newLoginCmd(app))
	root.AddCommand(newServeCmd(app))
	return root
}

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Serve()
			return nil
		},
	}
}
