package matching

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soundcheck/internal/logging"
	"soundcheck/internal/overrides"
	"soundcheck/internal/scoring"
	"soundcheck/internal/state"
	"soundcheck/internal/youtube"
)

type fakeSearcher struct {
	structured      []youtube.Candidate
	unconstrained   []youtube.Candidate
	err             error
	structuredCalls int
	lastOpts        []youtube.SearchOptions
}

func (s *fakeSearcher) Search(_ context.Context, _ string, opts youtube.SearchOptions) ([]youtube.Candidate, error) {
	s.structuredCalls++
	s.lastOpts = append(s.lastOpts, opts)
	if s.err != nil {
		return nil, s.err
	}
	if opts.CategoryID != "" {
		return s.structured, nil
	}
	return s.unconstrained, nil
}

type fakePages struct {
	candidates []youtube.Candidate
	calls      int
}

func (p *fakePages) Search(context.Context, string) ([]youtube.Candidate, error) {
	p.calls++
	return p.candidates, nil
}

type fakeTitles struct {
	infos map[string]*youtube.OEmbedInfo
}

func (l *fakeTitles) Lookup(_ context.Context, id string) (*youtube.OEmbedInfo, error) {
	info, ok := l.infos[id]
	if !ok {
		return nil, youtube.ErrNotFound
	}
	return info, nil
}

type captureLog struct {
	entries []state.LogEntry
}

func (c *captureLog) Append(entry state.LogEntry) error {
	c.entries = append(c.entries, entry)
	return nil
}

func testConfig() FinderConfig {
	return FinderConfig{CategoryID: "10", CategoryBonus: 5, AcceptThreshold: 70, FlagThreshold: 40}
}

func TestFindVideoStructuredAccept(t *testing.T) {
	searcher := &fakeSearcher{structured: []youtube.Candidate{
		{ID: "low123low45", Title: "Unrelated Vlog", ChannelName: "Somebody Else"},
		{ID: "top123top45", Title: "Wednesday - Bull Believer", ChannelName: "Wednesday"},
	}}
	log := &captureLog{}
	finder := NewFinder(searcher, nil, nil, nil, log, testConfig(), logging.NewNop())

	decision, err := finder.FindVideo(context.Background(), Request{Artist: "Wednesday", Venue: "catscradle"})
	if err != nil {
		t.Fatalf("FindVideo: %v", err)
	}
	if decision.VideoID != "top123top45" {
		t.Fatalf("picked %q", decision.VideoID)
	}
	// Channel containment scores 95; the category bonus caps at 100.
	if decision.Score != 100 || decision.Tier != scoring.TierAccept {
		t.Fatalf("decision = %+v", decision)
	}
	if decision.Source != state.SourceStructured {
		t.Fatalf("source = %q", decision.Source)
	}

	if len(log.entries) != 1 {
		t.Fatalf("logged %d entries", len(log.entries))
	}
	entry := log.entries[0]
	if entry.Artist != "Wednesday" || entry.Role != state.RoleHeadliner || entry.Venue != "catscradle" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.Explanation == "" {
		t.Fatal("decision must carry an explanation")
	}
}

func TestFindVideoOverrideShortCircuits(t *testing.T) {
	dir := t.TempDir()
	overridePath := filepath.Join(dir, "overrides.json")
	if err := os.WriteFile(overridePath, []byte(`{
		"artist_youtube": {"Wednesday": "forced123ab", "Trivia Kings": null}
	}`), 0o644); err != nil {
		t.Fatalf("write overrides: %v", err)
	}
	catalog := overrides.NewCatalog(overridePath, logging.NewNop())
	searcher := &fakeSearcher{}
	log := &captureLog{}
	finder := NewFinder(searcher, nil, nil, catalog, log, testConfig(), logging.NewNop())

	decision, err := finder.FindVideo(context.Background(), Request{Artist: "Wednesday"})
	if err != nil {
		t.Fatalf("FindVideo: %v", err)
	}
	if decision.VideoID != "forced123ab" || decision.Tier != scoring.TierOverride {
		t.Fatalf("decision = %+v", decision)
	}
	if searcher.structuredCalls != 0 {
		t.Fatal("override must not trigger a search")
	}

	decision, err = finder.FindVideo(context.Background(), Request{Artist: "Trivia Kings"})
	if err != nil {
		t.Fatalf("FindVideo null override: %v", err)
	}
	if decision.VideoID != "" || decision.Tier != scoring.TierOverride {
		t.Fatalf("null override decision = %+v", decision)
	}
	if len(log.entries) != 2 || log.entries[1].Source != state.SourceOverride {
		t.Fatalf("override decisions not logged: %+v", log.entries)
	}
}

func TestFindVideoNotBookable(t *testing.T) {
	searcher := &fakeSearcher{}
	log := &captureLog{}
	finder := NewFinder(searcher, nil, nil, nil, log, testConfig(), logging.NewNop())

	decision, err := finder.FindVideo(context.Background(), Request{Artist: "Karaoke Night with DJ Spin"})
	if err != nil {
		t.Fatalf("FindVideo: %v", err)
	}
	if decision.VideoID != "" || decision.Tier != scoring.TierSkip {
		t.Fatalf("decision = %+v", decision)
	}
	if searcher.structuredCalls != 0 {
		t.Fatal("unbookable listings must not be searched")
	}
	if len(log.entries) != 1 || !strings.Contains(log.entries[0].Explanation, "bookable") {
		t.Fatalf("skip not logged: %+v", log.entries)
	}
}

func TestFindVideoQuotaFallsBackToScrape(t *testing.T) {
	searcher := &fakeSearcher{err: fmt.Errorf("search: %w", youtube.ErrQuotaExceeded)}
	pages := &fakePages{candidates: []youtube.Candidate{{ID: "scrape123ab"}}}
	titles := &fakeTitles{infos: map[string]*youtube.OEmbedInfo{
		"scrape123ab": {Title: "Pile - Dogs", ChannelName: "Pile"},
	}}
	log := &captureLog{}
	finder := NewFinder(searcher, pages, titles, nil, log, testConfig(), logging.NewNop())

	decision, err := finder.FindVideo(context.Background(), Request{Artist: "Pile"})
	if err != nil {
		t.Fatalf("FindVideo: %v", err)
	}
	if decision.Source != state.SourceScrape {
		t.Fatalf("source = %q", decision.Source)
	}
	if decision.VideoID != "scrape123ab" {
		t.Fatalf("decision = %+v", decision)
	}
	// Channel containment scores 95; scrape results get no category bonus.
	if decision.Score != 95 {
		t.Fatalf("score = %d", decision.Score)
	}
	if pages.calls == 0 {
		t.Fatal("page searcher never consulted")
	}
}

func TestFindVideoEmptyStructuredRetriesUnconstrained(t *testing.T) {
	searcher := &fakeSearcher{
		structured: nil,
		unconstrained: []youtube.Candidate{
			{ID: "uncon123ab4", Title: "Big Thief - Simulation Swarm", ChannelName: "Big Thief"},
		},
	}
	finder := NewFinder(searcher, nil, nil, nil, &captureLog{}, testConfig(), logging.NewNop())

	decision, err := finder.FindVideo(context.Background(), Request{Artist: "Big Thief"})
	if err != nil {
		t.Fatalf("FindVideo: %v", err)
	}
	if decision.Source != state.SourceUnconstrained {
		t.Fatalf("source = %q", decision.Source)
	}
	// No bonus outside the category-constrained strategy.
	if decision.Score != 95 {
		t.Fatalf("score = %d", decision.Score)
	}
	if len(searcher.lastOpts) != 2 || searcher.lastOpts[0].CategoryID != "10" || searcher.lastOpts[1].CategoryID != "" {
		t.Fatalf("strategy order wrong: %+v", searcher.lastOpts)
	}
}

func TestFindVideoSkipTierReturnsNoID(t *testing.T) {
	searcher := &fakeSearcher{structured: []youtube.Candidate{
		{ID: "bad123bad45", Title: "Cooking Stream Highlights", ChannelName: "Random Kitchen"},
	}}
	log := &captureLog{}
	finder := NewFinder(searcher, nil, nil, nil, log, testConfig(), logging.NewNop())

	decision, err := finder.FindVideo(context.Background(), Request{Artist: "Japanese Breakfast"})
	if err != nil {
		t.Fatalf("FindVideo: %v", err)
	}
	if decision.VideoID != "" || decision.Tier != scoring.TierSkip {
		t.Fatalf("decision = %+v", decision)
	}
	if len(log.entries) != 1 || log.entries[0].VideoID != "" {
		t.Fatalf("skip decision must log without a video id: %+v", log.entries)
	}
}

func TestFindVideoOpenerRoleLogged(t *testing.T) {
	searcher := &fakeSearcher{structured: []youtube.Candidate{
		{ID: "open123open", Title: "Heated live set", ChannelName: "Heated"},
	}}
	log := &captureLog{}
	finder := NewFinder(searcher, nil, nil, nil, log, testConfig(), logging.NewNop(), WithRunID("run-1"))

	if _, err := finder.FindVideo(context.Background(), Request{Artist: "Heated", IsOpener: true}); err != nil {
		t.Fatalf("FindVideo: %v", err)
	}
	entry := log.entries[0]
	if entry.Role != state.RoleOpener || entry.RunID != "run-1" {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestFindVideoStructuredHardErrorPropagates(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("boom")}
	finder := NewFinder(searcher, nil, nil, nil, &captureLog{}, testConfig(), logging.NewNop())

	if _, err := finder.FindVideo(context.Background(), Request{Artist: "Pile"}); err == nil {
		t.Fatal("non-quota search failures must propagate")
	}
}

func TestFindVideoNoCategoryConfiguredSkipsBonus(t *testing.T) {
	cfg := testConfig()
	cfg.CategoryID = ""
	searcher := &fakeSearcher{unconstrained: []youtube.Candidate{
		{ID: "top123top45", Title: "Wednesday - Bull Believer", ChannelName: "Wednesday"},
	}}
	finder := NewFinder(searcher, nil, nil, nil, &captureLog{}, cfg, logging.NewNop())

	decision, err := finder.FindVideo(context.Background(), Request{Artist: "Wednesday"})
	if err != nil {
		t.Fatalf("FindVideo: %v", err)
	}
	// Channel containment scores 95; without a category constraint the
	// first query earns no bonus.
	if decision.Score != 95 {
		t.Fatalf("score = %d, want 95", decision.Score)
	}
	if opts := searcher.lastOpts[0]; opts.CategoryID != "" {
		t.Fatalf("unexpected category constraint %q", opts.CategoryID)
	}
}
