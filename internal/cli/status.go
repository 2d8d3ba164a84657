package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/memweave/memweave/internal/config"
	"github.com/memweave/memweave/internal/item"
	"github.com/memweave/memweave/internal/session"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current Memweave state for the project",
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

			counts, err := store.CountByKind()
			if err != nil {
				return err
			}

			gcfg, _ := config.LoadGlobal()
			pcfg, _ := config.LoadProject(root)

			historyPath := filepath.Join(config.DataDirPath(root, gcfg.Session), "session-history.json")
			tracker := session.NewTracker(session.Config{HistoryPath: historyPath}, nil)
			sessions := len(tracker.History())

			var dbSize int64
			if fi, err := os.Stat(config.ProjectDBPath(root)); err == nil {
				dbSize = fi.Size()
			}

			name := pcfg.Project.Name
			if name == "" {
				name = filepath.Base(root)
			}

			fmt.Printf("\nProject:  %s\n", name)
			fmt.Printf("Items:    %d memories, %d tasks\n", counts[item.KindMemory], counts[item.KindTask])
			fmt.Printf("Sessions: %d archived\n", sessions)
			fmt.Printf("DB size:  %s\n", formatBytes(dbSize))
			fmt.Println()
			return nil
		},
	}
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
