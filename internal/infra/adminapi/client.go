package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"netpress/internal/domain"
	"netpress/internal/infra/assistant"
	"netpress/internal/infra/telemetry"
)

// Client is the typed counterpart of the admin API, used by netpressctl.
type Client struct {
	baseURL string
	jobID   string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	if timeout <= 0 {
		timeout = domain.DefaultAdminRequestTimeoutSecs * time.Second
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// WithJobID returns a client that stamps every request with the given
// correlation id.
func (c *Client) WithJobID(jobID string) *Client {
	clone := *c
	clone.jobID = jobID
	return &clone
}

type apiError struct {
	Status int
	Body   errorBody
}

func (e *apiError) Error() string {
	if e.Body.Error != "" {
		return fmt.Sprintf("admin api: %s (status %d)", e.Body.Error, e.Status)
	}
	return fmt.Sprintf("admin api: status %d", e.Status)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.jobID != "" {
		req.Header.Set(telemetry.JobIDHeader, c.jobID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Body)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) (telemetry.HealthReport, error) {
	var report telemetry.HealthReport
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &report)
	return report, err
}

type sitesResponse struct {
	Total int           `json:"total"`
	Sites []domain.Site `json:"sites"`
}

func (c *Client) Sites(ctx context.Context) ([]domain.Site, error) {
	var resp sitesResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/sites", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sites, nil
}

func (c *Client) CreateSite(ctx context.Context, payload map[string]any) (domain.Site, error) {
	var site domain.Site
	err := c.do(ctx, http.MethodPost, "/api/v1/sites", payload, &site)
	return site, err
}

func (c *Client) UpdateSite(ctx context.Context, id int64, payload map[string]any) (domain.Site, error) {
	var site domain.Site
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/sites/%d", id), payload, &site)
	return site, err
}

func (c *Client) DeleteSite(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/sites/%d", id), nil, nil)
}

func (c *Client) SetSiteOption(ctx context.Context, siteID int64, key, value string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/sites/%d/options/%s", siteID, key),
		map[string]any{"value": value}, nil)
}

type postsResponse struct {
	Total int           `json:"total"`
	Posts []domain.Post `json:"posts"`
}

func (c *Client) Posts(ctx context.Context, siteID int64) ([]domain.Post, error) {
	var resp postsResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/sites/%d/posts", siteID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

func (c *Client) CreatePost(ctx context.Context, siteID int64, payload map[string]any) (domain.Post, error) {
	var post domain.Post
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/sites/%d/posts", siteID), payload, &post)
	return post, err
}

func (c *Client) UpdatePost(ctx context.Context, siteID, postID int64, payload map[string]any) (domain.Post, error) {
	var post domain.Post
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/sites/%d/posts/%d", siteID, postID), payload, &post)
	return post, err
}

func (c *Client) DeletePost(ctx context.Context, siteID, postID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/sites/%d/posts/%d", siteID, postID), nil, nil)
}

func (c *Client) SetPostTerms(ctx context.Context, siteID, postID int64, termIDs []int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/sites/%d/posts/%d/terms", siteID, postID),
		map[string]any{"term_ids": termIDs}, nil)
}

func (c *Client) SetPostMeta(ctx context.Context, siteID, postID int64, meta map[string][]string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/sites/%d/posts/%d/meta", siteID, postID),
		map[string]any{"meta": meta}, nil)
}

type termsResponse struct {
	Total int           `json:"total"`
	Terms []domain.Term `json:"terms"`
}

func (c *Client) Terms(ctx context.Context, siteID int64, taxonomy string) ([]domain.Term, error) {
	path := fmt.Sprintf("/api/v1/sites/%d/terms", siteID)
	if taxonomy != "" {
		path += "?taxonomy=" + taxonomy
	}
	var resp termsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Terms, nil
}

func (c *Client) CreateTerm(ctx context.Context, siteID int64, taxonomy, name, slug string) (domain.Term, error) {
	var term domain.Term
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/sites/%d/terms", siteID),
		map[string]any{"taxonomy": taxonomy, "name": name, "slug": slug}, &term)
	return term, err
}

func (c *Client) DeleteTerm(ctx context.Context, siteID, termID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/sites/%d/terms/%d", siteID, termID), nil, nil)
}

// ToolList is the registry snapshot as served over HTTP.
type ToolList struct {
	ETag  string                  `json:"etag"`
	Total int                     `json:"total"`
	Tools []domain.ToolDescriptor `json:"tools"`
}

func (c *Client) Tools(ctx context.Context) (ToolList, error) {
	var list ToolList
	err := c.do(ctx, http.MethodGet, "/api/v1/tools", nil, &list)
	return list, err
}

func (c *Client) InvokeTool(ctx context.Context, name string, params domain.Params) (domain.ToolResult, error) {
	var result domain.ToolResult
	err := c.do(ctx, http.MethodPost, "/api/v1/tools/"+name, params, &result)
	return result, err
}

func (c *Client) Context(ctx context.Context) (domain.NetworkContext, error) {
	var doc domain.NetworkContext
	err := c.do(ctx, http.MethodGet, "/api/v1/context", nil, &doc)
	return doc, err
}

func (c *Client) InvalidateContext(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/context", nil, nil)
}

func (c *Client) Ask(ctx context.Context, prompt string, dryRun bool) (assistant.Answer, error) {
	var answer assistant.Answer
	err := c.do(ctx, http.MethodPost, "/api/v1/ask",
		map[string]any{"prompt": prompt, "dry_run": dryRun}, &answer)
	return answer, err
}
