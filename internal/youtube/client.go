package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client provides access to the YouTube Data API for search and metadata.
type Client struct {
	apiKey     string
	baseURL    string
	limit      int
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSearchLimit caps the number of candidates a search returns.
func WithSearchLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// New creates a Data API client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("youtube api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("youtube base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limit:      5,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchOptions contains optional parameters for a structured search.
type SearchOptions struct {
	// CategoryID constrains results to a platform category; the music
	// category ("10") keeps concert listings from matching vlogs.
	CategoryID string
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelID    string `json:"channelId"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

// Search performs a structured video search.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(c.limit))
	params.Set("key", c.apiKey)
	if opts.CategoryID != "" {
		params.Set("videoCategoryId", opts.CategoryID)
	}

	var payload searchResponse
	if err := c.get(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			ID:          item.ID.VideoID,
			Title:       item.Snippet.Title,
			ChannelName: item.Snippet.ChannelTitle,
			ChannelID:   item.Snippet.ChannelID,
		})
	}
	return candidates, nil
}

type videoResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelID    string `json:"channelId"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Video fetches metadata for a single video id.
func (c *Client) Video(ctx context.Context, id string) (*VideoMetadata, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("video id must not be empty")
	}
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", id)
	params.Set("key", c.apiKey)

	var payload videoResponse
	if err := c.get(ctx, "/videos", params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}

	item := payload.Items[0]
	meta := &VideoMetadata{
		ID:          id,
		Title:       item.Snippet.Title,
		ChannelName: item.Snippet.ChannelTitle,
		ChannelID:   item.Snippet.ChannelID,
	}
	if item.Statistics.ViewCount != "" {
		views, err := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse view count %q: %w", item.Statistics.ViewCount, err)
		}
		meta.ViewCount = views
	}
	if item.Snippet.PublishedAt != "" {
		published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("parse publish timestamp %q: %w", item.Snippet.PublishedAt, err)
		}
		meta.Published = published
	}
	return meta, nil
}

type channelResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Channel fetches metadata for a single channel id.
func (c *Client) Channel(ctx context.Context, id string) (*ChannelMetadata, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("channel id must not be empty")
	}
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", id)
	params.Set("key", c.apiKey)

	var payload channelResponse
	if err := c.get(ctx, "/channels", params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("channel %s: %w", id, ErrNotFound)
	}

	item := payload.Items[0]
	meta := &ChannelMetadata{ID: id, Name: item.Snippet.Title}
	if item.Statistics.SubscriberCount != "" {
		subs, err := strconv.ParseInt(item.Statistics.SubscriberCount, 10, 64)
		if err == nil {
			meta.SubscriberCount = subs
		}
	}
	if item.Statistics.VideoCount != "" {
		videos, err := strconv.ParseInt(item.Statistics.VideoCount, 10, 64)
		if err == nil {
			meta.VideoCount = videos
		}
	}
	return meta, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, payload any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse youtube url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("youtube %s returned 403 (latency=%v): %w", path, latency, ErrQuotaExceeded)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("youtube %s returned %d (latency=%v): %w", path, resp.StatusCode, latency, ErrUnavailable)
	default:
		return fmt.Errorf("youtube %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(payload); err != nil {
		return fmt.Errorf("decode youtube response: %w", err)
	}
	return nil
}
