package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	videoIDJSONPattern = regexp.MustCompile(`"videoId":"([a-zA-Z0-9_-]{11})"`)
	videoIDHrefPattern = regexp.MustCompile(`/watch\?v=([a-zA-Z0-9_-]{11})`)
)

const scrapeUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ScrapeSearcher extracts video ids from the public results page. It needs no
// API key, so it serves as the quota-exhaustion fallback. Results carry only
// ids; titles and channel names come from a later metadata fetch if needed.
type ScrapeSearcher struct {
	baseURL    string
	limit      int
	httpClient *http.Client
}

// NewScrapeSearcher creates a results-page searcher.
func NewScrapeSearcher(baseURL string, limit int, httpClient *http.Client) (*ScrapeSearcher, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("results base url required")
	}
	if limit <= 0 {
		limit = 5
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ScrapeSearcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		limit:      limit,
		httpClient: httpClient,
	}, nil
}

// Search fetches the results page for the query and scans it for video ids.
func (s *ScrapeSearcher) Search(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	endpoint := s.baseURL + "/results?search_query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results page returned %d: %w", resp.StatusCode, ErrUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read results page: %w", err)
	}

	return s.extractIDs(string(body)), nil
}

// extractIDs scans the page with the two id patterns. The first pattern that
// yields anything wins, matching the original fallback behavior.
func (s *ScrapeSearcher) extractIDs(page string) []Candidate {
	for _, pattern := range []*regexp.Regexp{videoIDJSONPattern, videoIDHrefPattern} {
		matches := pattern.FindAllStringSubmatch(page, -1)
		if len(matches) == 0 {
			continue
		}
		seen := make(map[string]struct{}, len(matches))
		candidates := make([]Candidate, 0, s.limit)
		for _, match := range matches {
			id := match[1]
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			candidates = append(candidates, Candidate{ID: id})
			if len(candidates) >= s.limit {
				break
			}
		}
		return candidates
	}
	return nil
}
