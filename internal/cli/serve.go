package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/memweave/memweave/internal/config"
	"github.com/memweave/memweave/internal/mcp"
	"github.com/memweave/memweave/internal/session"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Long: `Expose memweave over the Model Context Protocol. AI tools connect on
stdio and use the remember, add_task, get_links, and session tools.`,
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

			gcfg, err := config.LoadGlobal()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}

			tracker := session.NewTracker(session.Config{
				SessionTimeout:     gcfg.Session.SessionTimeout(),
				MinSessionDuration: gcfg.Session.MinSessionDuration(),
				AutoSaveInterval:   gcfg.Session.AutoSaveInterval(),
				MaxBufferSize:      gcfg.Session.MaxBufferSize,
				HistoryPath:        filepath.Join(config.DataDirPath(root, gcfg.Session), "session-history.json"),
			}, store)
			go tracker.Run()
			defer tracker.Close()

			srv := mcp.NewServer(root, version, gcfg, store, tracker)
			return srv.Serve()
		},
	}
}
