// root.go - cache directory resolution (spec.md §6.5's "<cache> resolves
// to $XDG_CACHE_HOME/texpresso or $HOME/.cache/texpresso"), in the same
// env-var-then-fallback shape as teacher's resolveSocketPath.
package cache

import (
	"os"
	"path/filepath"
)

// Root returns the base cache directory, creating it if necessary.
func Root() (string, error) {
	dir, err := rootDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func rootDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "texpresso"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "texpresso"), nil
}

// subdir returns Root()/name, creating it if necessary (cache_path_'s
// folder argument).
func subdir(name string) (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
