package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"soundcheck/internal/enrich"
	"soundcheck/internal/logging"
	"soundcheck/internal/namenorm"
	"soundcheck/internal/services"
	"soundcheck/internal/state"
	"soundcheck/internal/youtube"
)

// topicSuffix marks platform auto-generated artist channels.
const topicSuffix = "- Topic"

// aggregatorSuffix marks major-label aggregator channels, which are
// trusted alongside the explicit allowlist.
const aggregatorSuffix = "vevo"

// MetadataSource fetches video and channel metadata.
type MetadataSource interface {
	Video(ctx context.Context, id string) (*youtube.VideoMetadata, error)
	Channel(ctx context.Context, id string) (*youtube.ChannelMetadata, error)
}

// Config carries the verification thresholds.
type Config struct {
	DefaultViewCap  int64
	TrustedViewCap  int64
	SubscriberFloor int64
	MaxAgeYears     int
	TrustedChannels []string

	// PlaceholderImages maps venue name to a poster filename fragment
	// that marks the venue's generic artwork.
	PlaceholderImages map[string]string

	MetadataRetries int
	RetryBackoff    time.Duration
}

func (c *Config) applyDefaults() {
	if c.DefaultViewCap <= 0 {
		c.DefaultViewCap = 5_000_000
	}
	if c.TrustedViewCap <= 0 {
		c.TrustedViewCap = 50_000_000
	}
	if c.SubscriberFloor <= 0 {
		c.SubscriberFloor = 2_000_000
	}
	if c.MaxAgeYears <= 0 {
		c.MaxAgeYears = 15
	}
	if c.MetadataRetries < 0 {
		c.MetadataRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 1500 * time.Millisecond
	}
}

// Request identifies one assigned video to verify.
type Request struct {
	Artist   string
	VideoID  string
	Venue    string
	ImageURL string

	// Profile is the enrichment record for the artist, nil when the
	// artist was never enriched.
	Profile *enrich.ArtistProfile
}

// Outcome is the verdict for one video.
type Outcome struct {
	Passed     bool
	Reasons    []string
	Warnings   []string
	Confidence string
	Metadata   *state.Metadata
}

// Reason returns the concatenated rejection reasons.
func (o Outcome) Reason() string {
	return strings.Join(o.Reasons, "; ")
}

// Engine runs the verification checks.
type Engine struct {
	source  MetadataSource
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
	trusted map[string]struct{}
}

// NewEngine builds an engine over the given metadata source.
func NewEngine(source MetadataSource, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	cfg.applyDefaults()

	trusted := make(map[string]struct{}, len(cfg.TrustedChannels))
	for _, name := range cfg.TrustedChannels {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			trusted[name] = struct{}{}
		}
	}

	return &Engine{
		source:  source,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "verify"),
		now:     time.Now,
		trusted: trusted,
	}
}

// Verify runs every check against the video. The error is non-nil only
// on context cancellation; an unreachable video is a rejection, not an
// error.
func (e *Engine) Verify(ctx context.Context, req Request) (Outcome, error) {
	var outcome Outcome

	if req.Artist == "" || req.VideoID == "" {
		outcome.Reasons = append(outcome.Reasons, "missing artist or video id")
		return outcome, nil
	}

	if placeholder := e.cfg.PlaceholderImages[req.Venue]; placeholder != "" && req.ImageURL != "" &&
		strings.Contains(req.ImageURL, placeholder) {
		outcome.Reasons = append(outcome.Reasons,
			fmt.Sprintf("venue placeholder image (%s)", placeholder))
	}

	video, err := e.fetchVideo(ctx, req.VideoID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome, ctxErr
		}
		e.logger.Warn("video metadata unavailable",
			logging.String(logging.FieldArtist, req.Artist),
			logging.String(logging.FieldVideoID, req.VideoID),
			logging.Error(err))
		outcome.Reasons = append(outcome.Reasons, "metadata unavailable")
		return outcome, nil
	}

	channel := e.fetchChannel(ctx, video.ChannelID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return outcome, ctxErr
	}

	topic := isTopicChannel(video.ChannelName)
	channelMatch := channelMatchesArtist(video.ChannelName, req.Artist)
	trusted := e.isTrusted(video.ChannelName)

	meta := &state.Metadata{
		Title:        video.Title,
		ChannelName:  video.ChannelName,
		ChannelID:    video.ChannelID,
		ViewCount:    video.ViewCount,
		Published:    video.Published,
		ChannelMatch: channelMatch,
		IsTopic:      topic,
		Trusted:      trusted,
	}
	if channel != nil {
		meta.SubscriberCount = channel.SubscriberCount
	}
	outcome.Metadata = meta

	e.checkViewCount(&outcome, req, video.ViewCount, topic, channelMatch, trusted)
	e.checkChannelIdentity(&outcome, video.ChannelName, channel, topic, channelMatch, trusted)
	e.checkAge(&outcome, video.Published, channelMatch, trusted)
	e.checkIdentity(&outcome, req, video.ChannelName, topic, channelMatch, trusted)

	outcome.Passed = len(outcome.Reasons) == 0
	if outcome.Passed {
		outcome.Confidence = e.confidenceSummary(video.ViewCount, topic, channelMatch, trusted)
	}
	return outcome, nil
}

func (e *Engine) fetchVideo(ctx context.Context, id string) (*youtube.VideoMetadata, error) {
	var video *youtube.VideoMetadata
	err := services.Retry(ctx, e.cfg.MetadataRetries, e.cfg.RetryBackoff, func(ctx context.Context) error {
		fetched, err := e.source.Video(ctx, id)
		if err != nil {
			if errors.Is(err, youtube.ErrNotFound) {
				return services.Wrap(services.ErrNotFound, "verify", "video_metadata", "video missing", err)
			}
			return err
		}
		video = fetched
		return nil
	})
	return video, err
}

// fetchChannel tolerates failure; the subscriber gate simply loses its
// signal and the identity check falls back to a warning.
func (e *Engine) fetchChannel(ctx context.Context, channelID string) *youtube.ChannelMetadata {
	if channelID == "" {
		return nil
	}
	var channel *youtube.ChannelMetadata
	err := services.Retry(ctx, e.cfg.MetadataRetries, e.cfg.RetryBackoff, func(ctx context.Context) error {
		fetched, err := e.source.Channel(ctx, channelID)
		if err != nil {
			if errors.Is(err, youtube.ErrNotFound) {
				return services.Wrap(services.ErrNotFound, "verify", "channel_metadata", "channel missing", err)
			}
			return err
		}
		channel = fetched
		return nil
	})
	if err != nil {
		e.logger.Debug("channel metadata unavailable",
			logging.String("channel_id", channelID),
			logging.Error(err))
		return nil
	}
	return channel
}

// checkViewCount applies the tiered ceiling. A Topic channel matching
// the artist is fully exempt; trusted channels use a fixed elevated
// cap; otherwise the cap scales with confirmed popularity.
func (e *Engine) checkViewCount(outcome *Outcome, req Request, views int64, topic, channelMatch, trusted bool) {
	if topic && channelMatch {
		return
	}

	ceiling := e.cfg.DefaultViewCap
	switch {
	case trusted:
		ceiling = e.cfg.TrustedViewCap
	case req.Profile != nil:
		confirmed := req.Profile.MatchConfidence == enrich.ConfidenceExact ||
			req.Profile.MatchConfidence == enrich.ConfidenceClose
		switch {
		case req.Profile.Popularity >= 70 && confirmed:
			return
		case req.Profile.Popularity >= 50:
			ceiling = 50_000_000
		case req.Profile.Popularity >= 30:
			ceiling = 10_000_000
		}
	}

	if views > ceiling {
		outcome.Reasons = append(outcome.Reasons,
			fmt.Sprintf("view count %s exceeds %s cap", formatCount(views), formatCount(ceiling)))
	}
}

func (e *Engine) checkChannelIdentity(outcome *Outcome, channelName string, channel *youtube.ChannelMetadata, topic, channelMatch, trusted bool) {
	if channelMatch || topic || trusted {
		return
	}
	if channel != nil && channel.SubscriberCount > e.cfg.SubscriberFloor {
		outcome.Reasons = append(outcome.Reasons,
			fmt.Sprintf("non-matching channel %q with %s subscribers",
				channelName, formatCount(channel.SubscriberCount)))
		return
	}
	// Small unknown channels are legitimate for independent artists.
	outcome.Warnings = append(outcome.Warnings,
		fmt.Sprintf("channel %q doesn't match artist", channelName))
}

func (e *Engine) checkAge(outcome *Outcome, published time.Time, channelMatch, trusted bool) {
	if published.IsZero() || channelMatch || trusted {
		return
	}
	ageYears := e.now().Sub(published).Hours() / 24 / 365.25
	if ageYears > float64(e.cfg.MaxAgeYears) {
		outcome.Reasons = append(outcome.Reasons,
			fmt.Sprintf("video is %.0f years old with no channel match", ageYears))
	}
}

// checkIdentity cross-checks the enrichment profile. An artist the
// enrichment source has confirmed absent, on a non-matching channel,
// is almost certainly the wrong video.
func (e *Engine) checkIdentity(outcome *Outcome, req Request, channelName string, topic, channelMatch, trusted bool) {
	if req.Profile == nil || channelMatch || topic || trusted {
		return
	}
	switch req.Profile.MatchConfidence {
	case enrich.ConfidenceNoMatch:
		outcome.Reasons = append(outcome.Reasons,
			fmt.Sprintf("artist not found on enrichment source and channel %q doesn't match", channelName))
	case enrich.ConfidencePartial:
		outcome.Warnings = append(outcome.Warnings,
			"ambiguous enrichment match with non-matching channel")
	}
}

func (e *Engine) confidenceSummary(views int64, topic, channelMatch, trusted bool) string {
	var parts []string
	if channelMatch {
		parts = append(parts, "channel match")
	}
	if topic {
		parts = append(parts, "Topic channel")
	}
	if trusted {
		parts = append(parts, "trusted channel")
	}
	if views < 1_000_000 {
		parts = append(parts, formatCount(views)+" views")
	}
	if len(parts) == 0 {
		return "passed all checks"
	}
	return strings.Join(parts, ", ")
}

func (e *Engine) isTrusted(channelName string) bool {
	name := strings.ToLower(strings.TrimSpace(channelName))
	if name == "" {
		return false
	}
	if _, ok := e.trusted[name]; ok {
		return true
	}
	return strings.HasSuffix(name, aggregatorSuffix)
}

func isTopicChannel(channelName string) bool {
	return strings.HasSuffix(strings.TrimSpace(channelName), topicSuffix)
}

// channelMatchesArtist compares normalized names, counting containment
// in either direction as a match. The Topic suffix is stripped first so
// "Wednesday - Topic" matches "Wednesday".
func channelMatchesArtist(channelName, artistName string) bool {
	channel := namenorm.Normalize(strings.ReplaceAll(channelName, topicSuffix, ""))
	artist := namenorm.Normalize(artistName)
	if channel == "" || artist == "" {
		return false
	}
	return strings.Contains(channel, artist) || strings.Contains(artist, channel)
}

func formatCount(value int64) string {
	text := fmt.Sprintf("%d", value)
	if len(text) <= 3 {
		return text
	}
	var builder strings.Builder
	lead := len(text) % 3
	if lead > 0 {
		builder.WriteString(text[:lead])
	}
	for i := lead; i < len(text); i += 3 {
		if builder.Len() > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(text[i : i+3])
	}
	return builder.String()
}
