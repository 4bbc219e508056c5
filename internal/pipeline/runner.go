package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"soundcheck/internal/config"
	"soundcheck/internal/enrich"
	"soundcheck/internal/logging"
	"soundcheck/internal/matching"
	"soundcheck/internal/overrides"
	"soundcheck/internal/report"
	"soundcheck/internal/services"
	"soundcheck/internal/shows"
	"soundcheck/internal/state"
	"soundcheck/internal/verify"
)

// VideoFinder resolves one artist slot to a match decision.
type VideoFinder interface {
	FindVideo(ctx context.Context, req matching.Request) (matching.Decision, error)
}

// Verifier runs the verification checks on one assigned video.
type Verifier interface {
	Verify(ctx context.Context, req verify.Request) (verify.Outcome, error)
}

// ArtistEnricher is the enrichment surface a run reads and refreshes.
type ArtistEnricher interface {
	EnrichAll(ctx context.Context, artistNames []string, force bool) (enrich.Stats, error)
	Profile(ctx context.Context, artistName string) (enrich.ArtistProfile, bool, error)
	All(ctx context.Context) ([]enrich.Record, error)
}

// Deps are the collaborators a Runner drives.
type Deps struct {
	Finder   VideoFinder
	Verifier Verifier
	// Enricher may be nil when enrichment is not configured.
	Enricher ArtistEnricher
	Catalog  *overrides.Catalog
	RunID    string
	// Throttle paces external calls between verifications. Defaults to
	// a sleep of workflow.request_delay_ms.
	Throttle func(ctx context.Context)
}

// Options select which stages a run executes.
type Options struct {
	SkipMatch   bool
	SkipVerify  bool
	ForceEnrich bool
	// DryRun computes every decision but persists nothing: no show
	// rewrites, no state changes, no reports.
	DryRun bool
}

// Result summarizes one run.
type Result struct {
	RunID      string
	Delta      report.Delta
	Enrichment enrich.Stats
	Queue      []report.QueueRow
	Searched   int
	Kept       int
	Blocked    int
	ReportPath string
	CSVPath    string
}

// Runner executes the nightly pipeline against the configured data
// directories.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	finder   VideoFinder
	verifier Verifier
	enricher ArtistEnricher
	catalog  *overrides.Catalog
	lock     *flock.Flock
	runID    string
	throttle func(ctx context.Context)
	now      func() time.Time
}

// NewRunner builds a runner over the given collaborators.
func NewRunner(cfg *config.Config, deps Deps, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	throttle := deps.Throttle
	if throttle == nil {
		delay := time.Duration(cfg.Workflow.RequestDelayMS) * time.Millisecond
		throttle = func(ctx context.Context) { sleepContext(ctx, delay) }
	}
	return &Runner{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		finder:   deps.Finder,
		verifier: deps.Verifier,
		enricher: deps.Enricher,
		catalog:  deps.Catalog,
		lock:     flock.New(cfg.LockPath()),
		runID:    deps.RunID,
		throttle: throttle,
		now:      time.Now,
	}
}

func sleepContext(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Run executes the configured stages under the run lock.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	locked, err := r.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another run holds the lock at %s", r.cfg.LockPath())
	}
	defer r.lock.Unlock()

	if r.runID != "" {
		ctx = services.WithRunID(ctx, r.runID)
	}

	store, err := state.Load(r.cfg.StatePath(), r.logger)
	if err != nil {
		return nil, err
	}
	files, err := shows.LoadDir(r.cfg.Paths.DataDir, r.logger)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: r.runID}
	r.logger.Info("run started",
		logging.String(logging.FieldRunID, r.runID),
		logging.Int("show_files", len(files)))

	r.enrichStage(ctx, files, opts, result)

	if !opts.SkipMatch {
		if err := r.matchStage(ctx, files, store, opts, result); err != nil {
			return nil, err
		}
	}
	if !opts.SkipVerify {
		if err := r.verifyStage(ctx, files, store, opts, result); err != nil {
			return nil, err
		}
	}

	result.Queue = report.NoPreviewQueue(files, store)

	if !opts.DryRun {
		for _, file := range files {
			if err := file.Save(); err != nil {
				return nil, err
			}
		}
		if err := store.Save(); err != nil {
			return nil, err
		}
		if err := r.writeReports(ctx, files, store, result); err != nil {
			return nil, err
		}
	}

	r.logger.Info("run finished",
		logging.String(logging.FieldRunID, r.runID),
		logging.Int("verified", len(result.Delta.Verified)),
		logging.Int("rejected", len(result.Delta.Rejected)),
		logging.Int("no_preview", len(result.Queue)))
	return result, nil
}

func (r *Runner) enrichStage(ctx context.Context, files []*shows.File, opts Options, result *Result) {
	if r.enricher == nil || !r.cfg.SpotifyEnabled() {
		return
	}
	var names []string
	for _, file := range files {
		for _, show := range file.Shows {
			for _, slot := range show.Slots() {
				names = append(names, slot.Artist)
			}
		}
	}
	stats, err := r.enricher.EnrichAll(ctx, names, opts.ForceEnrich)
	result.Enrichment = stats
	if err != nil {
		// Matching and verification degrade gracefully without
		// enrichment, so a Spotify outage must not abort the night.
		r.logger.Warn("enrichment pass failed", logging.Error(err))
	}
}

func (r *Runner) matchStage(ctx context.Context, files []*shows.File, store *state.Store, opts Options, result *Result) error {
	filter := r.buildFilter(store, files)
	for _, file := range files {
		for _, show := range file.Shows {
			if show.Expired() {
				continue
			}
			for _, slot := range show.Slots() {
				if err := ctx.Err(); err != nil {
					return err
				}
				r.matchSlot(ctx, file, show, slot, filter, store, opts, result)
			}
		}
		if !opts.DryRun {
			if err := file.Save(); err != nil {
				return err
			}
		}
	}
	return nil
}

// matchSlot runs the budget filter and, when it allows, the finder for
// one artist slot. Overridden artists bypass the budget entirely; the
// override table is the operator's remedy for a terminal rejection.
func (r *Runner) matchSlot(ctx context.Context, file *shows.File, show shows.Show, slot shows.Slot, filter *matching.BudgetFilter, store *state.Store, opts Options, result *Result) {
	_, overridden, err := r.catalog.Lookup(slot.Artist, slot.IsOpener)
	if err != nil {
		r.logger.Warn("override lookup failed",
			logging.String(logging.FieldArtist, slot.Artist),
			logging.Error(err))
		overridden = false
	}

	if !overridden {
		decision := filter.ShouldSearch(slot.Artist)
		if !decision.Search {
			if decision.ExistingID != "" {
				result.Kept++
			} else {
				result.Blocked++
			}
			r.logger.Debug("search skipped",
				logging.String(logging.FieldArtist, slot.Artist),
				logging.String("reason", decision.Reason))
			return
		}
	}

	decision, err := r.finder.FindVideo(ctx, matching.Request{
		Artist:   slot.Artist,
		IsOpener: slot.IsOpener,
		Venue:    show.Venue(),
	})
	if err != nil {
		r.logger.Warn("matching failed",
			logging.String(logging.FieldArtist, slot.Artist),
			logging.Error(err))
		return
	}
	result.Searched++

	current, _ := show.VideoID(slot.IDKey)
	switch {
	case decision.Source == state.SourceOverride && decision.VideoID == "":
		if !opts.DryRun {
			show.ClearVideoID(slot.IDKey)
			file.MarkDirty()
			store.MarkOverrideNull(slot.Artist)
		}
	case decision.VideoID != "" && decision.VideoID != current:
		if !opts.DryRun {
			show.SetVideoID(slot.IDKey, decision.VideoID)
			file.MarkDirty()
		}
	}
}

// buildFilter snapshots the inputs the budget rules read: current
// assignments, the latest logged scores, and the rejection set with the
// retry cooldown already applied.
func (r *Runner) buildFilter(store *state.Store, files []*shows.File) *matching.BudgetFilter {
	existing := make(map[string]string)
	for _, file := range files {
		for _, show := range file.Shows {
			for _, slot := range show.Slots() {
				if id, _ := show.VideoID(slot.IDKey); id != "" {
					existing[slot.Artist] = id
				}
			}
		}
	}

	entries, err := state.ReadLog(r.cfg.MatchLogPath())
	if err != nil {
		r.logger.Warn("match log unreadable, treating existing matches as unscored",
			logging.Error(err))
	}

	var cutoff time.Time
	if days := r.cfg.Matching.RetryCooldownDays; days > 0 {
		cutoff = r.now().AddDate(0, 0, -days)
	}
	rejected := make(map[string]struct{})
	for artist := range store.Rejected() {
		if store.RejectedSince(artist, cutoff) {
			rejected[artist] = struct{}{}
		}
	}

	return &matching.BudgetFilter{
		AcceptThreshold: r.cfg.Matching.AcceptThreshold,
		Existing:        existing,
		Scores:          state.LatestScores(entries),
		Rejected:        rejected,
	}
}

func (r *Runner) verifyStage(ctx context.Context, files []*shows.File, store *state.Store, opts Options, result *Result) error {
	seen := make(map[string]struct{})
	for _, file := range files {
		for _, show := range file.Shows {
			for _, slot := range show.Slots() {
				videoID, _ := show.VideoID(slot.IDKey)
				if videoID == "" {
					continue
				}
				// The same artist can hold different ids at different
				// venues, so dedup on the pair, not the artist.
				pair := slot.Artist + "\x00" + videoID
				if _, done := seen[pair]; done {
					continue
				}
				seen[pair] = struct{}{}
				if err := ctx.Err(); err != nil {
					return err
				}

				if _, overridden, err := r.catalog.Lookup(slot.Artist, slot.IsOpener); err == nil && overridden {
					result.Delta.Overrides++
					continue
				}
				if record, found := store.Get(slot.Artist); found &&
					record.Status == state.StatusVerified && record.VideoID == videoID {
					result.Delta.AlreadyVerified++
					continue
				}

				outcome, err := r.verifier.Verify(ctx, verify.Request{
					Artist:   slot.Artist,
					VideoID:  videoID,
					Venue:    show.Venue(),
					ImageURL: show.Image(),
					Profile:  r.profileFor(ctx, slot.Artist),
				})
				if err != nil {
					return err
				}
				r.applyOutcome(files, store, show, slot, videoID, outcome, opts, result)
				r.throttle(ctx)
			}
		}
	}
	return nil
}

func (r *Runner) applyOutcome(files []*shows.File, store *state.Store, show shows.Show, slot shows.Slot, videoID string, outcome verify.Outcome, opts Options, result *Result) {
	change := report.Change{
		Artist:  slot.Artist,
		Venue:   show.Venue(),
		Date:    show.Date(),
		VideoID: videoID,
	}
	if outcome.Passed {
		prior, had := store.Get(slot.Artist)
		change.Recovered = had && prior.Status == state.StatusRejected
		change.Detail = outcome.Confidence
		if !opts.DryRun {
			store.SetVerified(slot.Artist, videoID, outcome.Confidence, outcome.Metadata)
		}
		result.Delta.Verified = append(result.Delta.Verified, change)
		return
	}

	change.Detail = outcome.Reason()
	if !opts.DryRun {
		store.SetRejected(slot.Artist, videoID, outcome.Reason(), outcome.Metadata)
		r.clearAssignments(files, slot.Artist, videoID)
	}
	result.Delta.Rejected = append(result.Delta.Rejected, change)
}

// clearAssignments removes a rejected video from every show slot that
// carries it, writing an explicit null so the scraper does not refill
// the same id.
func (r *Runner) clearAssignments(files []*shows.File, artist, videoID string) {
	for _, file := range files {
		for _, show := range file.Shows {
			for _, slot := range show.Slots() {
				if slot.Artist != artist {
					continue
				}
				if id, _ := show.VideoID(slot.IDKey); id == videoID {
					show.ClearVideoID(slot.IDKey)
					file.MarkDirty()
				}
			}
		}
	}
}

func (r *Runner) profileFor(ctx context.Context, artist string) *enrich.ArtistProfile {
	if r.enricher == nil {
		return nil
	}
	profile, _, err := r.enricher.Profile(ctx, artist)
	if err != nil {
		r.logger.Warn("profile lookup failed",
			logging.String(logging.FieldArtist, artist),
			logging.Error(err))
		return nil
	}
	if profile.MatchConfidence == "" {
		return nil
	}
	return &profile
}

func (r *Runner) writeReports(ctx context.Context, files []*shows.File, store *state.Store, result *Result) error {
	profiles := report.Profiles{}
	if r.enricher != nil {
		if records, err := r.enricher.All(ctx); err == nil {
			profiles = report.NewProfiles(records)
		} else {
			r.logger.Warn("enrichment cache unreadable for report", logging.Error(err))
		}
	}

	now := r.now()
	day := now.Format("2006-01-02")

	text := report.Daily(result.Delta, result.Queue, profiles, now)
	result.ReportPath = filepath.Join(r.cfg.Paths.ReportDir, "video-report-"+day+".txt")
	if err := os.WriteFile(result.ReportPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write daily report: %w", err)
	}

	csvText, err := report.CSV(result.Delta, result.Queue, profiles)
	if err != nil {
		return err
	}
	result.CSVPath = filepath.Join(r.cfg.Paths.QADir, "video-report-"+day+".csv")
	if err := os.WriteFile(result.CSVPath, []byte(csvText), 0o644); err != nil {
		return fmt.Errorf("write report csv: %w", err)
	}

	entry := r.historyEntry(day, files, store, len(result.Queue))
	if err := report.AppendHistory(r.cfg.AccuracyHistoryPath(), entry); err != nil {
		return err
	}
	return nil
}

// historyEntry snapshots tonight's standing for the accuracy trend.
// Accuracy is the verified share of all decided artists; the role rates
// are the verified share of assigned slots per role.
func (r *Runner) historyEntry(day string, files []*shows.File, store *state.Store, noPreview int) report.HistoryEntry {
	var verified, rejected int
	for _, record := range store.All() {
		switch record.Status {
		case state.StatusVerified:
			verified++
		case state.StatusRejected:
			rejected++
		}
	}

	var totalSlots int
	role := map[bool]*struct{ assigned, verified int }{
		false: {},
		true:  {},
	}
	for _, file := range files {
		for _, show := range file.Shows {
			for _, slot := range show.Slots() {
				totalSlots++
				id, _ := show.VideoID(slot.IDKey)
				if id == "" {
					continue
				}
				role[slot.IsOpener].assigned++
				if record, found := store.Get(slot.Artist); found &&
					record.Status == state.StatusVerified && record.VideoID == id {
					role[slot.IsOpener].verified++
				}
			}
		}
	}

	entries, err := state.ReadLog(r.cfg.MatchLogPath())
	if err != nil {
		r.logger.Warn("match log unreadable for accuracy snapshot", logging.Error(err))
	}
	scores := state.LatestScores(entries)
	var avgConfidence float64
	if len(scores) > 0 {
		var sum int
		for _, score := range scores {
			sum += score
		}
		avgConfidence = roundRate(float64(sum) / float64(len(scores)))
	}

	return report.HistoryEntry{
		Date:              day,
		AccuracyRate:      shareOf(verified, verified+rejected),
		HeadlinerAccuracy: shareOf(role[false].verified, role[false].assigned),
		OpenerAccuracy:    shareOf(role[true].verified, role[true].assigned),
		AvgConfidence:     avgConfidence,
		Verified:          verified,
		Rejected:          rejected,
		NoPreview:         noPreview,
		TotalShows:        totalSlots,
	}
}

func shareOf(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return roundRate(float64(part) / float64(whole) * 100)
}

func roundRate(value float64) float64 {
	return math.Round(value*10) / 10
}
