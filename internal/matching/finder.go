package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"soundcheck/internal/logging"
	"soundcheck/internal/namenorm"
	"soundcheck/internal/overrides"
	"soundcheck/internal/scoring"
	"soundcheck/internal/state"
	"soundcheck/internal/youtube"
)

// Searcher is the structured search capability.
type Searcher interface {
	Search(ctx context.Context, query string, opts youtube.SearchOptions) ([]youtube.Candidate, error)
}

// PageSearcher is the unauthenticated results-page fallback.
type PageSearcher interface {
	Search(ctx context.Context, query string) ([]youtube.Candidate, error)
}

// TitleLookup resolves a bare video id to its title and channel.
// Page-scraped candidates carry only ids and cannot be scored without it.
type TitleLookup interface {
	Lookup(ctx context.Context, videoID string) (*youtube.OEmbedInfo, error)
}

// MatchLog receives one entry per finder decision.
type MatchLog interface {
	Append(entry state.LogEntry) error
}

// FinderConfig carries the tunable matching knobs.
type FinderConfig struct {
	CategoryID      string
	CategoryBonus   int
	AcceptThreshold int
	FlagThreshold   int
}

// Finder locates the best candidate video for an artist.
type Finder struct {
	searcher Searcher
	pages    PageSearcher
	titles   TitleLookup
	catalog  *overrides.Catalog
	log      MatchLog
	logger   *slog.Logger
	cfg      FinderConfig
	runID    string
	throttle func(ctx context.Context)
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithRunID stamps every logged decision with the run id.
func WithRunID(runID string) FinderOption {
	return func(f *Finder) { f.runID = runID }
}

// WithThrottle installs a delay hook invoked after every external call.
func WithThrottle(throttle func(ctx context.Context)) FinderOption {
	return func(f *Finder) {
		if throttle != nil {
			f.throttle = throttle
		}
	}
}

// NewFinder wires the search strategies, override catalog, and match log.
func NewFinder(searcher Searcher, pages PageSearcher, titles TitleLookup, catalog *overrides.Catalog, log MatchLog, cfg FinderConfig, logger *slog.Logger, opts ...FinderOption) *Finder {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.CategoryBonus <= 0 {
		cfg.CategoryBonus = 5
	}
	if cfg.AcceptThreshold <= 0 {
		cfg.AcceptThreshold = 70
	}
	if cfg.FlagThreshold <= 0 {
		cfg.FlagThreshold = 40
	}
	finder := &Finder{
		searcher: searcher,
		pages:    pages,
		titles:   titles,
		catalog:  catalog,
		log:      log,
		logger:   logging.NewComponentLogger(logger, "matcher"),
		cfg:      cfg,
		throttle: func(context.Context) {},
	}
	for _, opt := range opts {
		opt(finder)
	}
	return finder
}

// Decision is the outcome of one FindVideo call. An empty VideoID means
// no video was assigned (skip, not bookable, or an explicit no-video
// override).
type Decision struct {
	VideoID     string
	Score       int
	Tier        scoring.Tier
	Source      string
	Explanation string
}

// Request identifies the artist slot being matched.
type Request struct {
	Artist   string
	IsOpener bool
	Venue    string
}

// FindVideo resolves a video for the artist: override table first, then
// title cleaning, then the search strategies. The returned error is
// non-nil only when every strategy failed outright; a clean "no match"
// is a Decision with an empty id.
func (f *Finder) FindVideo(ctx context.Context, req Request) (Decision, error) {
	if req.Artist == "" {
		return Decision{}, errors.New("artist must not be empty")
	}

	if entry, found, err := f.lookupOverride(req); err != nil {
		return Decision{}, err
	} else if found {
		decision := Decision{
			VideoID:     entry.VideoID,
			Tier:        scoring.TierOverride,
			Source:      state.SourceOverride,
			Explanation: "manual override",
		}
		if entry.NoVideo {
			decision.Explanation = "manual override: no video"
		}
		f.record(req, decision)
		return decision, nil
	}

	cleaned, bookable := namenorm.CleanTitle(req.Artist)
	if !bookable {
		decision := Decision{
			Tier:        scoring.TierSkip,
			Explanation: "not a bookable act",
		}
		f.record(req, decision)
		return decision, nil
	}

	candidates, source, err := f.search(ctx, cleaned)
	if err != nil {
		return Decision{}, err
	}

	decision := f.pick(cleaned, candidates, source)
	f.record(req, decision)
	return decision, nil
}

func (f *Finder) lookupOverride(req Request) (overrides.Override, bool, error) {
	if f.catalog == nil {
		return overrides.Override{}, false, nil
	}
	return f.catalog.Lookup(req.Artist, req.IsOpener)
}

// search runs the strategy list in order: structured category search,
// results-page scrape when the API is out of quota or down, then an
// unconstrained re-query when the constrained search came back empty.
func (f *Finder) search(ctx context.Context, artist string) ([]youtube.Candidate, string, error) {
	candidates, err := f.searcher.Search(ctx, artist, youtube.SearchOptions{CategoryID: f.cfg.CategoryID})
	f.throttle(ctx)
	switch {
	case err == nil:
		if len(candidates) > 0 {
			return candidates, state.SourceStructured, nil
		}
	case errors.Is(err, youtube.ErrQuotaExceeded) || errors.Is(err, youtube.ErrUnavailable):
		f.logger.Warn("structured search unavailable, falling back to page scrape",
			logging.String(logging.FieldArtist, artist),
			logging.Error(err))
		return f.scrape(ctx, artist)
	default:
		return nil, "", fmt.Errorf("structured search: %w", err)
	}

	candidates, err = f.searcher.Search(ctx, artist, youtube.SearchOptions{})
	f.throttle(ctx)
	if err != nil {
		if errors.Is(err, youtube.ErrQuotaExceeded) || errors.Is(err, youtube.ErrUnavailable) {
			return f.scrape(ctx, artist)
		}
		return nil, "", fmt.Errorf("unconstrained search: %w", err)
	}
	return candidates, state.SourceUnconstrained, nil
}

// scrapeQueries mirror the original results-page fallback phrasing.
func scrapeQueries(artist string) []string {
	return []string{
		artist + " band official video",
		artist + " band music",
		artist + " official music video",
	}
}

func (f *Finder) scrape(ctx context.Context, artist string) ([]youtube.Candidate, string, error) {
	if f.pages == nil {
		return nil, "", errors.New("no page searcher configured for quota fallback")
	}

	var lastErr error
	for _, query := range scrapeQueries(artist) {
		candidates, err := f.pages.Search(ctx, query)
		f.throttle(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if len(candidates) > 0 {
			return f.fillTitles(ctx, candidates), state.SourceScrape, nil
		}
	}
	if lastErr != nil {
		return nil, "", fmt.Errorf("page scrape: %w", lastErr)
	}
	return nil, state.SourceScrape, nil
}

// fillTitles resolves titles and channels for scraped ids so they can
// be scored. Candidates whose lookup fails are scored bare and land in
// the skip tier on their own.
func (f *Finder) fillTitles(ctx context.Context, candidates []youtube.Candidate) []youtube.Candidate {
	if f.titles == nil {
		return candidates
	}
	for i, candidate := range candidates {
		if candidate.Title != "" || candidate.ChannelName != "" {
			continue
		}
		info, err := f.titles.Lookup(ctx, candidate.ID)
		f.throttle(ctx)
		if err != nil {
			f.logger.Debug("title lookup failed for scraped candidate",
				logging.String(logging.FieldVideoID, candidate.ID),
				logging.Error(err))
			continue
		}
		candidates[i].Title = info.Title
		candidates[i].ChannelName = info.ChannelName
	}
	return candidates
}

// pick scores every candidate and classifies the best one. Structured
// category results earn a small bonus, capped so it can never lift a
// score past 100.
func (f *Finder) pick(artist string, candidates []youtube.Candidate, source string) Decision {
	if len(candidates) == 0 {
		return Decision{
			Tier:        scoring.TierSkip,
			Source:      source,
			Explanation: "no candidates returned",
		}
	}

	var (
		best      youtube.Candidate
		bestMatch scoring.Match
		found     bool
	)
	for _, candidate := range candidates {
		match := scoring.Score(artist, candidate.Title, candidate.ChannelName)
		if !found || match.Score > bestMatch.Score {
			best = candidate
			bestMatch = match
			found = true
		}
	}

	score := bestMatch.Score
	if source == state.SourceStructured && f.cfg.CategoryID != "" {
		score += f.cfg.CategoryBonus
		if score > 100 {
			score = 100
		}
	}

	decision := Decision{
		Score:       score,
		Tier:        f.classify(score),
		Source:      source,
		Explanation: bestMatch.Explanation,
	}
	if decision.Tier != scoring.TierSkip {
		decision.VideoID = best.ID
	}
	return decision
}

func (f *Finder) classify(score int) scoring.Tier {
	switch {
	case score >= f.cfg.AcceptThreshold:
		return scoring.TierAccept
	case score >= f.cfg.FlagThreshold:
		return scoring.TierFlag
	default:
		return scoring.TierSkip
	}
}

func (f *Finder) record(req Request, decision Decision) {
	role := state.RoleHeadliner
	if req.IsOpener {
		role = state.RoleOpener
	}
	entry := state.LogEntry{
		RunID:       f.runID,
		Artist:      req.Artist,
		Role:        role,
		Venue:       req.Venue,
		VideoID:     decision.VideoID,
		Score:       decision.Score,
		Tier:        string(decision.Tier),
		Source:      decision.Source,
		Explanation: decision.Explanation,
	}
	if f.log == nil {
		return
	}
	if err := f.log.Append(entry); err != nil {
		f.logger.Warn("match log append failed",
			logging.String(logging.FieldArtist, req.Artist),
			logging.Error(err))
	}

	f.logger.Info("match decision",
		logging.String(logging.FieldArtist, req.Artist),
		logging.String("role", role),
		logging.String(logging.FieldVideoID, decision.VideoID),
		logging.Int("score", decision.Score),
		logging.String("tier", string(decision.Tier)),
		logging.String("source", decision.Source))
}
