package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateSpotify(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateVerification(); err != nil {
		return err
	}
	return c.validateWorkflow()
}

func (c *Config) validateYouTube() error {
	if strings.TrimSpace(c.YouTube.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/soundcheck/config.toml"
		}
		return fmt.Errorf("youtube.api_key is required. Set YOUTUBE_API_KEY env var or edit %s (create with 'soundcheck config init')", defaultPath)
	}
	if err := ensurePositiveMap(map[string]int{
		"youtube.search_limit":    c.YouTube.SearchLimit,
		"youtube.request_timeout": c.YouTube.RequestTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSpotify() error {
	hasID := strings.TrimSpace(c.Spotify.ClientID) != ""
	hasSecret := strings.TrimSpace(c.Spotify.ClientSecret) != ""
	if hasID != hasSecret {
		return errors.New("spotify.client_id and spotify.client_secret must be set together")
	}
	if c.Spotify.CacheTTLDays <= 0 {
		return errors.New("spotify.cache_ttl_days must be positive")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.AcceptThreshold < 0 || c.Matching.AcceptThreshold > 100 {
		return errors.New("matching.accept_threshold must be between 0 and 100")
	}
	if c.Matching.FlagThreshold < 0 || c.Matching.FlagThreshold > 100 {
		return errors.New("matching.flag_threshold must be between 0 and 100")
	}
	if c.Matching.FlagThreshold >= c.Matching.AcceptThreshold {
		return errors.New("matching.flag_threshold must be less than matching.accept_threshold")
	}
	if c.Matching.CategoryBonus < 0 {
		return errors.New("matching.category_bonus must be >= 0")
	}
	if c.Matching.RetryCooldownDays < 0 {
		return errors.New("matching.retry_cooldown_days must be >= 0")
	}
	return nil
}

func (c *Config) validateVerification() error {
	if c.Verification.DefaultViewCap <= 0 {
		return errors.New("verification.default_view_cap must be positive")
	}
	if c.Verification.TrustedViewCap < c.Verification.DefaultViewCap {
		return errors.New("verification.trusted_view_cap must be at least verification.default_view_cap")
	}
	if c.Verification.SubscriberFloor <= 0 {
		return errors.New("verification.subscriber_floor must be positive")
	}
	if c.Verification.MaxAgeYears <= 0 {
		return errors.New("verification.max_age_years must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.RequestDelayMS < 0 {
		return errors.New("workflow.request_delay_ms must be >= 0")
	}
	if c.Workflow.MetadataRetries < 0 {
		return errors.New("workflow.metadata_retries must be >= 0")
	}
	if c.Workflow.RetryBackoffMS <= 0 {
		return errors.New("workflow.retry_backoff_ms must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
