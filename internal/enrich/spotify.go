package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"soundcheck/internal/namenorm"
)

// ErrNoMatch indicates Spotify returned no artist close enough to the
// queried name.
var ErrNoMatch = errors.New("no spotify artist matched")

// Match confidence labels recorded alongside each profile.
const (
	ConfidenceExact   = "exact"
	ConfidenceClose   = "close"
	ConfidencePartial = "partial"
	ConfidenceNoMatch = "no_match"
)

// ArtistProfile is the Spotify view of an artist.
type ArtistProfile struct {
	SpotifyID       string
	SpotifyName     string
	Popularity      int
	Followers       int64
	Genres          []string
	MatchConfidence string
	MatchScore      float64
}

// SpotifyClient talks to the Spotify Web API using the client
// credentials flow. Tokens are fetched lazily and reused until expiry.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// SpotifyOption configures a SpotifyClient.
type SpotifyOption func(*SpotifyClient)

// WithSpotifyHTTPClient overrides the default HTTP client.
func WithSpotifyHTTPClient(client *http.Client) SpotifyOption {
	return func(c *SpotifyClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewSpotifyClient creates a client for the given application credentials.
func NewSpotifyClient(clientID, clientSecret, baseURL, tokenURL string, opts ...SpotifyOption) (*SpotifyClient, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("spotify client credentials required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("spotify base url required")
	}
	tokenURL = strings.TrimSpace(tokenURL)
	if tokenURL == "" {
		return nil, errors.New("spotify token url required")
	}
	client := &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenURL:     tokenURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *SpotifyClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request spotify token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token endpoint returned %d", resp.StatusCode)
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("spotify token response missing access_token")
	}

	c.accessToken = payload.AccessToken
	ttl := time.Duration(payload.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	// Refresh a minute early so in-flight requests never carry a token
	// that expires mid-request.
	c.tokenExpiry = time.Now().Add(ttl - time.Minute)
	return c.accessToken, nil
}

type artistSearchResponse struct {
	Artists struct {
		Items []struct {
			ID         string   `json:"id"`
			Name       string   `json:"name"`
			Popularity int      `json:"popularity"`
			Genres     []string `json:"genres"`
			Followers  struct {
				Total int64 `json:"total"`
			} `json:"followers"`
		} `json:"items"`
	} `json:"artists"`
}

// SearchArtist looks up an artist by name and returns the best match,
// or ErrNoMatch when no candidate clears the similarity floor.
func (c *SpotifyClient) SearchArtist(ctx context.Context, artistName string) (*ArtistProfile, error) {
	artistName = strings.TrimSpace(artistName)
	if artistName == "" {
		return nil, errors.New("artist name must not be empty")
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", artistName)
	params.Set("type", "artist")
	params.Set("limit", "5")

	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse spotify url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute search (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload artistSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	var best *ArtistProfile
	bestScore := 0.0
	for _, item := range payload.Artists.Items {
		score := namenorm.Similarity(artistName, item.Name)
		// Nudge close name matches toward the more popular act; the
		// boost tops out at +0.1 so it never outranks a better name.
		if score >= 0.8 {
			score += float64(item.Popularity) / 1000
		}
		if score > bestScore {
			bestScore = score
			best = &ArtistProfile{
				SpotifyID:   item.ID,
				SpotifyName: item.Name,
				Popularity:  item.Popularity,
				Followers:   item.Followers.Total,
				Genres:      item.Genres,
			}
		}
	}

	// Longer names need to match more tightly. A three word listing
	// like "Common Woman Cabaret" must not land on the artist "Common".
	minScore := 0.5
	if len(strings.Fields(artistName)) >= 3 {
		minScore = 0.7
	}
	if best == nil || bestScore < minScore {
		return nil, fmt.Errorf("artist %q: %w", artistName, ErrNoMatch)
	}

	best.MatchScore = bestScore
	switch {
	case bestScore >= 1.0:
		best.MatchConfidence = ConfidenceExact
	case bestScore >= 0.8:
		best.MatchConfidence = ConfidenceClose
	default:
		best.MatchConfidence = ConfidencePartial
	}
	return best, nil
}
