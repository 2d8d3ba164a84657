package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memweave/memweave/internal/config"
	"github.com/memweave/memweave/internal/db"
)

func newInitCmd() *cobra.Command {
	var projectRoot string
	var projectName string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize Memweave in the current project",
		Long: `Set up the .memweave/ directory with a SQLite database, a project
config, and a session data directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := projectRoot
			if root == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				root = cwd
			}
			root, _ = filepath.Abs(root)

			if err := os.MkdirAll(filepath.Join(root, ".memweave"), 0o755); err != nil {
				return fmt.Errorf("create .memweave: %w", err)
			}

			// Open creates the database and applies migrations.
			database, err := db.Open(config.ProjectDBPath(root))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer database.Close()

			name := projectName
			if name == "" {
				name = filepath.Base(root)
			}
			pcfg := config.ProjectConfig{Project: config.ProjectMeta{Name: name}}
			if err := config.SaveProject(root, pcfg); err != nil {
				return fmt.Errorf("write project config: %w", err)
			}

			gcfg, _ := config.LoadGlobal()
			if err := os.MkdirAll(config.DataDirPath(root, gcfg.Session), 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}

			ensureGitignore(root)

			fmt.Printf("Memweave initialized for %s. State saved to .memweave/\n", name)
			fmt.Println(`Tip: Run "memweave remember <note>" to store your first memory.`)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRoot, "root", "r", "", "Project root directory (default: cwd)")
	cmd.Flags().StringVarP(&projectName, "name", "n", "", "Project name (default: directory name)")

	return cmd
}

// ensureGitignore appends .memweave/ to .gitignore if not already present.
func ensureGitignore(root string) {
	path := filepath.Join(root, ".gitignore")
	content, err := os.ReadFile(path)
	if err == nil && strings.Contains(string(content), ".memweave/") {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		_, _ = f.WriteString("\n")
	}
	_, _ = f.WriteString(".memweave/\n")
}
