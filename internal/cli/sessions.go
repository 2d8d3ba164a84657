package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memweave/memweave/internal/config"
	"github.com/memweave/memweave/internal/session"
)

func newSessionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List archived work sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findRoot()
			if err != nil {
				return err
			}

			gcfg, _ := config.LoadGlobal()
			historyPath := filepath.Join(config.DataDirPath(root, gcfg.Session), "session-history.json")

			// A store-less tracker is enough to read history.
			tracker := session.NewTracker(session.Config{HistoryPath: historyPath}, nil)
			records := tracker.History()
			if len(records) == 0 {
				fmt.Println("No sessions recorded.")
				return nil
			}

			shown := 0
			for i := len(records) - 1; i >= 0 && shown < limit; i-- {
				r := records[i]
				fmt.Printf("%s  %s  %s\n", shortID(r.Session.ID), r.EndedAt.Format("2006-01-02 15:04"), r.Reason)
				if r.Summary != nil {
					fmt.Printf("          %s", strings.Join(r.Summary.SessionTypes, ", "))
					if r.Summary.IsSignificant {
						fmt.Print("  (significant)")
					}
					fmt.Println()
				}
				shown++
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum sessions to show")

	return cmd
}
