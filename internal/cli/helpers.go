package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/memweave/memweave/internal/config"
	"github.com/memweave/memweave/internal/db"
	"github.com/memweave/memweave/internal/item"
)

// findRoot locates the project root by walking up from the working
// directory until a .memweave/ directory is found.
func findRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	dir, _ := filepath.Abs(cwd)
	for {
		if _, err := os.Stat(filepath.Join(dir, ".memweave")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("memweave not initialized. Run `memweave init` first")
}

// openStore opens the project database and wraps it in an item store.
// Callers must Close the returned DB.
func openStore(root string) (*db.DB, *item.Store, error) {
	dbPath := config.ProjectDBPath(root)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("memweave not initialized. Run `memweave init` first")
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return database, item.NewStore(database), nil
}
