package cli

import (
	"fmt"
	"strings"

	"github.com/mrlokans/bookfetch/internal/entities"
	"github.com/spf13/cobra"
)

func newLookupCmd(app *App) *cobra.Command {
	var source string
	var pick int
	var asJSON, noCover bool

	cmd := &cobra.Command{
		Use:   "lookup <keyword>",
		Short: "Search one source without prompting; --pick N fetches the details of result N",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			out := NewFormatter(cmd.OutOrStdout())

			adapter, err := app.Registry.Get(source)
			if err != nil {
				return err
			}

			keyword := strings.Join(args, " ")
			results := adapter.Search(ctx, keyword)
			if len(results) == 0 {
				return fmt.Errorf("no results for %q on %s", keyword, adapter.Name())
			}

			if pick == 0 {
				if asJSON {
					return out.JSON(results)
				}
				out.Results(results)
				return nil
			}
			if pick < 1 || pick > len(results) {
				return fmt.Errorf("--pick %d out of range, %d results", pick, len(results))
			}

			detail := adapter.Details(ctx, results[pick-1].Locator)
			if detail == nil {
				return fmt.Errorf("no details for %q on %s", results[pick-1].Title, adapter.Name())
			}
			if !noCover && app.Covers != nil {
				app.Covers.Process(ctx, detail)
			}

			if asJSON {
				return out.JSON(struct {
					Source string `json:"source"`
					*entities.BookDetail
				}{adapter.Name(), detail})
			}
			out.Detail(detail)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "douban", "source id: douban, megbookhk, megbooktw, amazon or google")
	cmd.Flags().IntVar(&pick, "pick", 0, "fetch the details of this 1-based result")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	cmd.Flags().BoolVar(&noCover, "no-cover", false, "keep the source cover URL even when image hosting is on")
	return cmd
}
