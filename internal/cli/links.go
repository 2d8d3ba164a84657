package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/memweave/memweave/internal/config"
	"github.com/memweave/memweave/internal/item"
	"github.com/memweave/memweave/internal/link"
)

func newLinksCmd() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "links [id]",
		Short: "Compute relationship links between stored items",
		Long: `Score every pair of stored items and print the discovered links.
With an item ID, print only that item's links.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findRoot()
			if err != nil {
				return err
			}
			database, store, err := openStore(root)
			if err != nil {
				return err
			}
			defer database.Close()

			items, err := store.List(item.Filter{Project: project})
			if err != nil {
				return err
			}
			if len(items) < 2 {
				fmt.Println("Need at least two items to link.")
				return nil
			}

			gcfg, _ := config.LoadGlobal()
			builder := link.NewBuilder(link.NewScorer(link.Options{
				SimilarityThreshold: gcfg.Linker.SimilarityThreshold,
				MinSharedWords:      gcfg.Linker.MinSharedWords,
				TemporalWindow:      gcfg.Linker.TemporalWindow(),
				SourceTokenCap:      gcfg.Linker.SourceTokenCap,
			}))

			// Pair scoring is quadratic; show progress on a terminal.
			if term.IsTerminal(int(os.Stderr.Fd())) {
				bar := progressbar.NewOptions(len(items),
					progressbar.OptionSetDescription("  Scoring pairs"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
				builder.Progress = func(done, total int) {
					_ = bar.Set(done)
				}
			}

			graph := builder.Build(items)

			if len(args) == 1 {
				edges := graph.EdgesFor(args[0])
				if len(edges) == 0 {
					fmt.Println("No links found.")
					return nil
				}
				for _, e := range edges {
					other := e.TargetID
					if other == args[0] {
						other = e.SourceID
					}
					fmt.Printf("%s  %s\n", shortID(other), e.Label())
				}
				return nil
			}

			fmt.Printf("%d items, %d links\n", len(items), len(graph.Edges))
			for _, e := range graph.Edges {
				fmt.Printf("%s <-> %s  %s\n", shortID(e.SourceID), shortID(e.TargetID), e.Label())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Restrict linking to one project")

	return cmd
}
