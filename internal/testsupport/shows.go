package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"soundcheck/internal/config"
)

// WriteShowFile drops a scraped show JSON file into the config's data
// directory and returns its path.
func WriteShowFile(t testing.TB, cfg *config.Config, name, content string) string {
	t.Helper()

	path := filepath.Join(cfg.Paths.DataDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write show file %s: %v", name, err)
	}
	return path
}
