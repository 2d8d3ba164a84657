package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memweave/memweave/internal/enrich"
	"github.com/memweave/memweave/internal/item"
)

func newListCmd() *cobra.Command {
	var kind, project, tag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored items, newest first",
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

			items, err := store.List(item.Filter{
				Kind:    item.Kind(kind),
				Project: project,
				Tag:     tag,
			})
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("No items stored.")
				return nil
			}

			for _, it := range items {
				label := firstLine(it.Content)
				if title := enrich.Title(it); title != "" {
					label = title
				}
				fmt.Printf("%s  [%s] %s\n", shortID(it.ID), it.Kind, label)
				if len(it.Tags) > 0 {
					fmt.Printf("          tags: %s\n", strings.Join(it.Tags, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Filter by kind: memory, task")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Filter by project")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Filter by tag")

	return cmd
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
