package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/memweave/memweave/internal/adapter"
	"github.com/memweave/memweave/internal/config"
	"github.com/memweave/memweave/internal/enrich"
	"github.com/memweave/memweave/internal/item"
)

func newEnrichCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Generate titles for untitled items using an LLM",
		Long: `Run a best-effort title pass over items lacking a title: tag. Requires
an API key (or a local Ollama instance for --provider ollama).`,
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

			gcfg, _ := config.LoadGlobal()
			if provider == "" {
				provider = gcfg.Enrichment.Provider
			}
			apiKey := gcfg.Keys.Anthropic
			if provider == adapter.ProviderOpenAI {
				apiKey = gcfg.Keys.OpenAI
			}

			llm, err := adapter.New(provider, apiKey, gcfg.Enrichment.Host)
			if err != nil {
				return err
			}
			enricher, err := enrich.New(llm, store, gcfg.Enrichment.Model)
			if err != nil {
				return err
			}

			items, err := store.List(item.Filter{})
			if err != nil {
				return err
			}

			var untitled []item.Item
			for _, it := range items {
				if !enrich.HasTitle(it) {
					untitled = append(untitled, it)
				}
			}
			if len(untitled) == 0 {
				fmt.Println("All items already have titles.")
				return nil
			}

			ctx := context.Background()
			if term.IsTerminal(int(os.Stderr.Fd())) {
				bar := progressbar.NewOptions(len(untitled),
					progressbar.OptionSetDescription("  Titling items"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
				var n int
				for _, it := range untitled {
					if _, err := enricher.EnrichItem(ctx, it); err != nil {
						fmt.Fprintf(os.Stderr, "  Warning: %v\n", err)
					} else {
						n++
					}
					_ = bar.Add(1)
				}
				fmt.Printf("%d of %d items titled.\n", n, len(untitled))
				return nil
			}

			n, err := enricher.EnrichAll(ctx, untitled)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  Warning: %v\n", err)
			}
			fmt.Printf("%d of %d items titled.\n", n, len(untitled))
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: claude, openai, ollama (default from config)")

	return cmd
}
