package testsupport

import (
	"testing"

	"soundcheck/internal/config"
	"soundcheck/internal/logging"
	"soundcheck/internal/state"
)

// MustLoadStore loads the verification state store for tests.
func MustLoadStore(t testing.TB, cfg *config.Config) *state.Store {
	t.Helper()

	store, err := state.Load(cfg.StatePath(), logging.NewNop())
	if err != nil {
		t.Fatalf("state.Load: %v", err)
	}
	return store
}

// SeedStore loads the store, applies seed, and saves it back to disk.
func SeedStore(t testing.TB, cfg *config.Config, seed func(*state.Store)) {
	t.Helper()

	store := MustLoadStore(t, cfg)
	seed(store)
	if err := store.Save(); err != nil {
		t.Fatalf("save store: %v", err)
	}
}
