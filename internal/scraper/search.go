package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"govjobs/harvester-service/internal/config"
	"govjobs/harvester-service/internal/model"
)

const searchTimeout = 15 * time.Second

// SearchFetcher queries SerpAPI's Google engine. If the API key is empty,
// Fetch returns (nil, nil) and the sweep simply finds nothing new.
type SearchFetcher struct {
	APIKey    string
	Endpoint  string
	Suffixes  []string
	Freshness string
	Country   string
	Language  string
	Num       int

	client *http.Client
	log    *zap.Logger
}

// NewSearchFetcher constructs a fetcher. A nil client gets a default one.
func NewSearchFetcher(cfg config.SearchConfig, client *http.Client, log *zap.Logger) *SearchFetcher {
	if client == nil {
		client = &http.Client{Timeout: searchTimeout}
	}
	return &SearchFetcher{
		APIKey:    cfg.APIKey,
		Endpoint:  cfg.Endpoint,
		Suffixes:  cfg.SiteSuffixes,
		Freshness: cfg.Freshness,
		Country:   cfg.Country,
		Language:  cfg.Language,
		Num:       cfg.ResultsPerQuery,
		client:    client,
		log:       log.Named("search"),
	}
}

type serpResponse struct {
	OrganicResults []serpResult `json:"organic_results"`
	Error          string       `json:"error"`
}

type serpResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SiteQuery restricts query to the trusted suffixes:
// "q (site:gov.in OR site:nic.in)".
func (f *SearchFetcher) SiteQuery(query string) string {
	if len(f.Suffixes) == 0 {
		return query
	}
	sites := make([]string, 0, len(f.Suffixes))
	for _, s := range f.Suffixes {
		sites = append(sites, "site:"+strings.TrimPrefix(s, "."))
	}
	return query + " (" + strings.Join(sites, " OR ") + ")"
}

// Fetch runs one topic query. Results without a link are dropped and
// duplicate links keep their first occurrence.
func (f *SearchFetcher) Fetch(ctx context.Context, query string) ([]model.SearchResult, error) {
	if f.APIKey == "" {
		f.log.Warn("SERPAPI_KEY not set, skipping search", zap.String("query", query))
		return nil, nil
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("api_key", f.APIKey)
	params.Set("q", f.SiteQuery(query))
	if f.Country != "" {
		params.Set("gl", f.Country)
	}
	if f.Language != "" {
		params.Set("hl", f.Language)
	}
	if f.Freshness != "" {
		params.Set("tbs", "qdr:"+f.Freshness)
	}
	if f.Num > 0 {
		params.Set("num", strconv.Itoa(f.Num))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var apiResp serpResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if apiResp.Error != "" && len(apiResp.OrganicResults) == 0 {
		// SerpAPI reports an empty result page as an error string.
		if strings.Contains(strings.ToLower(apiResp.Error), "hasn't returned any results") {
			return nil, nil
		}
		return nil, fmt.Errorf("serpapi error: %s", apiResp.Error)
	}

	seen := make(map[string]bool, len(apiResp.OrganicResults))
	results := make([]model.SearchResult, 0, len(apiResp.OrganicResults))
	for _, r := range apiResp.OrganicResults {
		link := strings.TrimSpace(r.Link)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		results = append(results, model.SearchResult{
			Title:   strings.TrimSpace(r.Title),
			Link:    link,
			Snippet: strings.TrimSpace(r.Snippet),
			Query:   query,
		})
	}
	return results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
