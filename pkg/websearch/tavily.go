package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"travel-assistant-be/pkg/agent"
)

const defaultBaseURL = "https://api.tavily.com"

type searchRequest struct {
	ApiKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResponseResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searchResponse struct {
	Results []searchResponseResult `json:"results"`
}

// TavilyClient performs live web searches through the Tavily REST API.
type TavilyClient struct {
	ApiKey  string
	BaseURL string
	client  *http.Client
}

var _ agent.WebSearcher = (*TavilyClient)(nil)

func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		ApiKey:  apiKey,
		BaseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]agent.SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	body, err := json.Marshal(searchRequest{
		ApiKey:      c.ApiKey,
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/search", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from tavily response, code %d, body %s", res.StatusCode, string(resBytes))
	}

	var parsed searchResponse
	if err := json.Unmarshal(resBytes, &parsed); err != nil {
		return nil, err
	}

	results := make([]agent.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, agent.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		})
	}
	return results, nil
}
