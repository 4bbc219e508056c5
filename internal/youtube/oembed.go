package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// OEmbedInfo is the minimal video identity available without an API key.
type OEmbedInfo struct {
	Title       string `json:"title"`
	ChannelName string `json:"author_name"`
}

// OEmbedClient resolves a video id to its current title and channel via the
// public oEmbed endpoint. The offline audit uses it to re-check assigned
// videos without spending API quota.
type OEmbedClient struct {
	baseURL    string
	watchBase  string
	httpClient *http.Client
}

// NewOEmbedClient creates an oEmbed lookup client. watchBase is the public
// site root used to build the watch URL the endpoint expects.
func NewOEmbedClient(baseURL, watchBase string, httpClient *http.Client) (*OEmbedClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("oembed base url required")
	}
	watchBase = strings.TrimSpace(watchBase)
	if watchBase == "" {
		return nil, errors.New("watch base url required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OEmbedClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		watchBase:  strings.TrimRight(watchBase, "/"),
		httpClient: httpClient,
	}, nil
}

// Lookup fetches the oEmbed document for a video id. A 404 maps to
// ErrNotFound so callers can distinguish deleted videos from outages.
func (c *OEmbedClient) Lookup(ctx context.Context, videoID string) (*OEmbedInfo, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, errors.New("video id must not be empty")
	}

	watchURL := c.watchBase + "/watch?v=" + url.QueryEscape(videoID)
	endpoint := c.baseURL + "?url=" + url.QueryEscape(watchURL) + "&format=json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Soundcheck-Audit/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	default:
		return nil, fmt.Errorf("oembed returned %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var info OEmbedInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode oembed response: %w", err)
	}
	return &info, nil
}
