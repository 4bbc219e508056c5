package config

const (
	defaultDataDir           = "~/.local/share/soundcheck/data"
	defaultReportDir         = "~/.local/share/soundcheck/reports"
	defaultQADir             = "~/.local/share/soundcheck/qa"
	defaultCacheDir          = "~/.cache/soundcheck"
	defaultLogDir            = "~/.local/share/soundcheck/logs"
	defaultYouTubeBaseURL    = "https://www.googleapis.com/youtube/v3"
	defaultResultsBaseURL    = "https://www.youtube.com"
	defaultOEmbedBaseURL     = "https://www.youtube.com/oembed"
	defaultSearchLimit       = 5
	defaultMusicCategoryID   = "10"
	defaultRequestTimeout    = 15
	defaultSpotifyBaseURL    = "https://api.spotify.com/v1"
	defaultSpotifyTokenURL   = "https://accounts.spotify.com/api/token"
	defaultCacheTTLDays      = 30
	defaultAcceptThreshold   = 70
	defaultFlagThreshold     = 40
	defaultCategoryBonus     = 5
	defaultViewCap           = 5_000_000
	defaultTrustedViewCap    = 50_000_000
	defaultSubscriberFloor   = 2_000_000
	defaultMaxAgeYears       = 15
	defaultRequestDelayMS    = 500
	defaultMetadataRetries   = 2
	defaultRetryBackoffMS    = 1500
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultRetryCooldownDays = 0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ReportDir: defaultReportDir,
			QADir:     defaultQADir,
			CacheDir:  defaultCacheDir,
			LogDir:    defaultLogDir,
		},
		YouTube: YouTube{
			BaseURL:         defaultYouTubeBaseURL,
			ResultsBaseURL:  defaultResultsBaseURL,
			OEmbedBaseURL:   defaultOEmbedBaseURL,
			SearchLimit:     defaultSearchLimit,
			MusicCategoryID: defaultMusicCategoryID,
			RequestTimeout:  defaultRequestTimeout,
		},
		Spotify: Spotify{
			BaseURL:      defaultSpotifyBaseURL,
			TokenURL:     defaultSpotifyTokenURL,
			CacheTTLDays: defaultCacheTTLDays,
		},
		Matching: Matching{
			AcceptThreshold:   defaultAcceptThreshold,
			FlagThreshold:     defaultFlagThreshold,
			CategoryBonus:     defaultCategoryBonus,
			RetryCooldownDays: defaultRetryCooldownDays,
		},
		Verification: Verification{
			DefaultViewCap:  defaultViewCap,
			TrustedViewCap:  defaultTrustedViewCap,
			SubscriberFloor: defaultSubscriberFloor,
			MaxAgeYears:     defaultMaxAgeYears,
		},
		Workflow: Workflow{
			RequestDelayMS:  defaultRequestDelayMS,
			MetadataRetries: defaultMetadataRetries,
			RetryBackoffMS:  defaultRetryBackoffMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
