package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for pipeline state and output.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	ReportDir string `toml:"report_dir"`
	QADir     string `toml:"qa_dir"`
	CacheDir  string `toml:"cache_dir"`
	LogDir    string `toml:"log_dir"`
}

// YouTube contains configuration for the YouTube Data API and the
// key-less fallback endpoints used when the API is unavailable.
type YouTube struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	ResultsBaseURL  string `toml:"results_base_url"`
	OEmbedBaseURL   string `toml:"oembed_base_url"`
	SearchLimit     int    `toml:"search_limit"`
	MusicCategoryID string `toml:"music_category_id"`
	RequestTimeout  int    `toml:"request_timeout"`
}

// Spotify contains credentials and cache settings for artist enrichment.
// Enrichment is skipped entirely when no credentials are configured.
type Spotify struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	BaseURL      string `toml:"base_url"`
	TokenURL     string `toml:"token_url"`
	CacheTTLDays int    `toml:"cache_ttl_days"`
}

// Matching contains confidence thresholds and search budget settings.
type Matching struct {
	AcceptThreshold   int `toml:"accept_threshold"`
	FlagThreshold     int `toml:"flag_threshold"`
	CategoryBonus     int `toml:"category_bonus"`
	RetryCooldownDays int `toml:"retry_cooldown_days"`
}

// Verification contains thresholds for the video verification checks.
type Verification struct {
	DefaultViewCap    int64    `toml:"default_view_cap"`
	TrustedViewCap    int64    `toml:"trusted_view_cap"`
	SubscriberFloor   int64    `toml:"subscriber_floor"`
	MaxAgeYears       int      `toml:"max_age_years"`
	TrustedChannels   []string `toml:"trusted_channels"`
	PlaceholderImages map[string]string `toml:"placeholder_images"`
}

// Workflow contains pacing and retry configuration for nightly runs.
type Workflow struct {
	RequestDelayMS  int `toml:"request_delay_ms"`
	MetadataRetries int `toml:"metadata_retries"`
	RetryBackoffMS  int `toml:"retry_backoff_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Soundcheck.
//
// Configuration sections by subsystem:
//   - Paths: state, report, QA, cache, and log directories
//   - YouTube: Data API key and fallback endpoint URLs
//   - Spotify: enrichment credentials and cache TTL
//   - Matching: confidence thresholds and search budget knobs
//   - Verification: view caps, subscriber floor, trusted channels
//   - Workflow: request pacing and metadata retry settings
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	YouTube      YouTube      `toml:"youtube"`
	Spotify      Spotify      `toml:"spotify"`
	Matching     Matching     `toml:"matching"`
	Verification Verification `toml:"verification"`
	Workflow     Workflow     `toml:"workflow"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/soundcheck/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/soundcheck/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("soundcheck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a pipeline run writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ReportDir, c.Paths.QADir, c.Paths.CacheDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StatePath returns the location of the video state document.
func (c *Config) StatePath() string {
	return filepath.Join(c.Paths.DataDir, "video_states.json")
}

// MatchLogPath returns the location of the append-only match log.
func (c *Config) MatchLogPath() string {
	return filepath.Join(c.Paths.DataDir, "match_log.jsonl")
}

// OverridesPath returns the location of the manual override table.
func (c *Config) OverridesPath() string {
	return filepath.Join(c.Paths.DataDir, "overrides.json")
}

// AccuracyHistoryPath returns the location of the accuracy trend document.
func (c *Config) AccuracyHistoryPath() string {
	return filepath.Join(c.Paths.QADir, "accuracy_history.json")
}

// EnrichmentCachePath returns the location of the Spotify enrichment cache.
func (c *Config) EnrichmentCachePath() string {
	return filepath.Join(c.Paths.CacheDir, "enrichment.db")
}

// LockPath returns the location of the run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, ".soundcheck.lock")
}

// SpotifyEnabled reports whether enrichment credentials are configured.
func (c *Config) SpotifyEnabled() bool {
	return strings.TrimSpace(c.Spotify.ClientID) != "" && strings.TrimSpace(c.Spotify.ClientSecret) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
