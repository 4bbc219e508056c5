package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeSpotify()
	c.normalizeVerification()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		c.Paths.ReportDir = defaultReportDir
	}
	if c.Paths.ReportDir, err = expandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.QADir) == "" {
		c.Paths.QADir = defaultQADir
	}
	if c.Paths.QADir, err = expandPath(c.Paths.QADir); err != nil {
		return fmt.Errorf("paths.qa_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	if c.YouTube.APIKey == "" {
		if value, ok := os.LookupEnv("YOUTUBE_API_KEY"); ok {
			c.YouTube.APIKey = strings.TrimSpace(value)
		}
	}
	c.YouTube.BaseURL = strings.TrimSpace(c.YouTube.BaseURL)
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	c.YouTube.ResultsBaseURL = strings.TrimSpace(c.YouTube.ResultsBaseURL)
	if c.YouTube.ResultsBaseURL == "" {
		c.YouTube.ResultsBaseURL = defaultResultsBaseURL
	}
	c.YouTube.OEmbedBaseURL = strings.TrimSpace(c.YouTube.OEmbedBaseURL)
	if c.YouTube.OEmbedBaseURL == "" {
		c.YouTube.OEmbedBaseURL = defaultOEmbedBaseURL
	}
	if c.YouTube.SearchLimit <= 0 {
		c.YouTube.SearchLimit = defaultSearchLimit
	}
	c.YouTube.MusicCategoryID = strings.TrimSpace(c.YouTube.MusicCategoryID)
	if c.YouTube.MusicCategoryID == "" {
		c.YouTube.MusicCategoryID = defaultMusicCategoryID
	}
	if c.YouTube.RequestTimeout <= 0 {
		c.YouTube.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeSpotify() {
	if c.Spotify.ClientID == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_ID"); ok {
			c.Spotify.ClientID = strings.TrimSpace(value)
		}
	}
	if c.Spotify.ClientSecret == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_SECRET"); ok {
			c.Spotify.ClientSecret = strings.TrimSpace(value)
		}
	}
	c.Spotify.BaseURL = strings.TrimSpace(c.Spotify.BaseURL)
	if c.Spotify.BaseURL == "" {
		c.Spotify.BaseURL = defaultSpotifyBaseURL
	}
	c.Spotify.TokenURL = strings.TrimSpace(c.Spotify.TokenURL)
	if c.Spotify.TokenURL == "" {
		c.Spotify.TokenURL = defaultSpotifyTokenURL
	}
	if c.Spotify.CacheTTLDays <= 0 {
		c.Spotify.CacheTTLDays = defaultCacheTTLDays
	}
}

func (c *Config) normalizeVerification() {
	if c.Verification.DefaultViewCap <= 0 {
		c.Verification.DefaultViewCap = defaultViewCap
	}
	if c.Verification.TrustedViewCap <= 0 {
		c.Verification.TrustedViewCap = defaultTrustedViewCap
	}
	if c.Verification.SubscriberFloor <= 0 {
		c.Verification.SubscriberFloor = defaultSubscriberFloor
	}
	if c.Verification.MaxAgeYears <= 0 {
		c.Verification.MaxAgeYears = defaultMaxAgeYears
	}
	channels := make([]string, 0, len(c.Verification.TrustedChannels))
	seen := make(map[string]struct{}, len(c.Verification.TrustedChannels))
	for _, name := range c.Verification.TrustedChannels {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		channels = append(channels, trimmed)
	}
	c.Verification.TrustedChannels = channels
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.RequestDelayMS < 0 {
		c.Workflow.RequestDelayMS = defaultRequestDelayMS
	}
	if c.Workflow.MetadataRetries < 0 {
		c.Workflow.MetadataRetries = defaultMetadataRetries
	}
	if c.Workflow.RetryBackoffMS <= 0 {
		c.Workflow.RetryBackoffMS = defaultRetryBackoffMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
