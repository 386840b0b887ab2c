// Package serp defines the search-result provider contract and its
// implementations: a live HTTP data source, a deterministic seeded stand-in,
// and a caching decorator.
package serp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// MaxResults caps the number of organic entries a provider returns.
const MaxResults = 20

// Client fetches the observed SERP for one keyword/location/device tuple.
// For a fixed tuple and calendar day an implementation must return the same
// result, so that same-day re-runs of ingestion are idempotent.
type Client interface {
	FetchRank(ctx context.Context, req RankRequest) (*RankResult, error)
}

// RankRequest identifies a single SERP capture.
type RankRequest struct {
	Keyword        string `json:"keyword"`
	SearchLocation string `json:"search_location,omitempty"` // empty for non-geo keywords
	Device         string `json:"device"`
	SelfDomain     string `json:"self_domain"` // the calling business's own domain
}

// ResultEntry is one organic result on the observed SERP.
type ResultEntry struct {
	Domain   string `json:"domain"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Position int    `json:"position"` // 1-based
}

// RankResult is the outcome of one SERP capture. Position is nil when the
// self domain was not found within the observed result set.
type RankResult struct {
	Position        *int          `json:"position"`
	MapPackPosition *int          `json:"map_pack_position"`
	FeaturedSnippet bool          `json:"featured_snippet"`
	LocalPack       bool          `json:"local_pack"`
	KnowledgePanel  bool          `json:"knowledge_panel"`
	ImagePack       bool          `json:"image_pack"`
	VideoCarousel   bool          `json:"video_carousel"`
	PeopleAlsoAsk   bool          `json:"people_also_ask"`
	RankingURL      *string       `json:"ranking_url"`
	Results         []ResultEntry `json:"results"`
}

const defaultBaseURL = "https://api.serpdata.io/v1"

// Option configures the HTTP client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a Client backed by a hosted SERP data API.
func NewHTTPClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) FetchRank(ctx context.Context, rr RankRequest) (*RankResult, error) {
	body, err := json.Marshal(rr)
	if err != nil {
		return nil, eris.Wrap(err, "serp: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/serp:fetch", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "serp: create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serp: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serp: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("serp: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result RankResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "serp: unmarshal response")
	}

	if len(result.Results) > MaxResults {
		result.Results = result.Results[:MaxResults]
	}

	return &result, nil
}
