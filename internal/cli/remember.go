package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memweave/memweave/internal/item"
)

func newRememberCmd() *cobra.Command {
	var tags []string
	var project, category string

	cmd := &cobra.Command{
		Use:   "remember <content>",
		Short: "Store a memory",
		Long: `Save something Memweave should remember.

Examples:
  memweave remember "We switched from Devise to custom JWT auth"
  memweave remember "Fixed the websocket reconnect loop" --tags react,bug`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")

			root, err := findRoot()
			if err != nil {
				return err
			}
			database, store, err := openStore(root)
			if err != nil {
				return err
			}
			defer database.Close()

			id, err := store.Insert(item.Item{
				Kind:     item.KindMemory,
				Content:  content,
				Tags:     tags,
				Project:  project,
				Category: category,
			})
			if err != nil {
				return fmt.Errorf("store memory: %w", err)
			}

			fmt.Printf("Remembered.\n  %q\n  id: %s\n", content, id)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "Comma-separated tags")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project the memory belongs to")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Free-form category")

	return cmd
}

func newTaskCmd() *cobra.Command {
	var tags, related []string
	var project string

	cmd := &cobra.Command{
		Use:   "task <content>",
		Short: "Store a task",
		Long: `Save a task item. Tasks link to memories automatically; use --related
to declare explicit relationships.

Examples:
  memweave task "Add rate limiting to the upload endpoint"
  memweave task "Retry the flaky migration" --related 3f2a91c0`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")

			root, err := findRoot()
			if err != nil {
				return err
			}
			database, store, err := openStore(root)
			if err != nil {
				return err
			}
			defer database.Close()

			id, err := store.Insert(item.Item{
				Kind:       item.KindTask,
				Content:    content,
				Tags:       tags,
				Project:    project,
				RelatedIDs: related,
			})
			if err != nil {
				return fmt.Errorf("store task: %w", err)
			}

			fmt.Printf("Task added.\n  %q\n  id: %s\n", content, id)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "Comma-separated tags")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project the task belongs to")
	cmd.Flags().StringSliceVar(&related, "related", nil, "IDs of explicitly related items")

	return cmd
}
