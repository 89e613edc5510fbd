// Package websearch 受限网页搜索：补充语料不足时的教育类站点检索。
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vlabhub/labchat-go/internal/config"
)

// Result 一条搜索结果
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Client 托管搜索API客户端。仅保留命中域名白名单的结果。
type Client struct {
	baseURL        string
	apiKey         string
	allowedDomains []string
	maxResults     int
	httpClient     *http.Client
}

// NewClient 创建搜索客户端；未配置key时返回nil表示禁用
func NewClient(cfg config.WebSearchConfig) *Client {
	if !cfg.Enabled || strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}

	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		allowedDomains: cfg.AllowedDomains,
		maxResults:     maxResults,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type searchRequest struct {
	APIKey     string   `json:"api_key"`
	Query      string   `json:"query"`
	MaxResults int      `json:"max_results"`
	Domains    []string `json:"include_domains,omitempty"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search 执行搜索并过滤到允许的域名
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c == nil {
		return nil, nil
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}

	body := searchRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: c.maxResults,
		Domains:    c.allowedDomains,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search http %d: %s", resp.StatusCode, string(raw))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, err
	}

	// API侧的include_domains不可全信，本地再过滤一遍
	results := make([]Result, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		if !c.domainAllowed(r.URL) {
			continue
		}
		results = append(results, r)
		if len(results) >= c.maxResults {
			break
		}
	}
	return results, nil
}

// domainAllowed 检查结果URL是否属于白名单域名（含子域名）
func (c *Client) domainAllowed(rawURL string) bool {
	if len(c.allowedDomains) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range c.allowedDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// Enabled 客户端是否可用
func (c *Client) Enabled() bool {
	return c != nil
}
