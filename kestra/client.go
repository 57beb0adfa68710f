// Package kestra is a typed HTTP client for the Kestra log API.
package kestra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kestralog/models"
)

// DefaultTenant is used when no tenant is configured.
const DefaultTenant = "main"

// Client is the HTTP client for talking to a Kestra server
type Client struct {
	baseURL    string
	tenant     string
	token      string
	httpClient *http.Client

	// streamClient has no global timeout so SSE streams can run
	// indefinitely; lifetime is bounded by the request context.
	streamClient *http.Client
}

// NewClient creates a new HTTP client for the given Kestra server.
// token may be empty for servers without authentication.
func NewClient(baseURL, tenant, token string) *Client {
	if tenant == "" {
		tenant = DefaultTenant
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tenant:  tenant,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		streamClient: &http.Client{},
	}
}

// SetTimeout overrides the request timeout for non-streaming calls.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tenant returns the configured tenant.
func (c *Client) Tenant() string {
	return c.tenant
}

// apiPath builds the tenant-scoped API path for a logs endpoint.
func (c *Client) apiPath(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return c.baseURL + "/api/v1/" + url.PathEscape(c.tenant) + "/logs/" + strings.Join(escaped, "/")
}

// doRequest executes an HTTP request against the API
func (c *Client) doRequest(ctx context.Context, method, rawURL string, query url.Values) (*http.Response, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// handleResponse decodes a JSON response into result
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}

	return nil
}

// ExecutionLogs fetches logs for an execution with optional filtering.
func (c *Client) ExecutionLogs(ctx context.Context, executionID string, filter models.LogFilter) ([]models.LogEntry, error) {
	if executionID == "" {
		return nil, fmt.Errorf("execution id is required")
	}
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, "GET", c.apiPath(executionID), filter.Values())
	if err != nil {
		return nil, err
	}

	var entries []models.LogEntry
	if err := c.handleResponse(resp, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// DownloadLogs fetches an execution's logs as plain text.
func (c *Client) DownloadLogs(ctx context.Context, executionID string, filter models.LogFilter) (string, error) {
	if executionID == "" {
		return "", fmt.Errorf("execution id is required")
	}
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return "", err
	}

	resp, err := c.doRequest(ctx, "GET", c.apiPath(executionID, "download"), filter.Values())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %v", err)
	}

	return string(bodyBytes), nil
}

// SearchLogs searches logs across all executions.
func (c *Client) SearchLogs(ctx context.Context, filter models.SearchFilter) (*models.LogSearchPage, error) {
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, "GET", c.apiPath("search"), filter.Values())
	if err != nil {
		return nil, err
	}

	var page models.LogSearchPage
	if err := c.handleResponse(resp, &page); err != nil {
		return nil, err
	}

	if page.Page == 0 {
		page.Page = filter.Page
	}
	if page.Size == 0 {
		page.Size = filter.Size
	}

	return &page, nil
}

// DeleteExecutionLogs deletes logs for an execution with optional filtering.
func (c *Client) DeleteExecutionLogs(ctx context.Context, executionID string, filter models.LogFilter) (*models.DeleteResult, error) {
	if executionID == "" {
		return nil, fmt.Errorf("execution id is required")
	}
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, "DELETE", c.apiPath(executionID), filter.Values())
	if err != nil {
		return nil, err
	}

	return c.handleDeleteResponse(resp)
}

// DeleteFlowLogs deletes logs for all executions of a flow.
// triggerID may be empty to delete across all triggers.
func (c *Client) DeleteFlowLogs(ctx context.Context, namespace, flowID, triggerID string) (*models.DeleteResult, error) {
	if namespace == "" || flowID == "" {
		return nil, fmt.Errorf("namespace and flow id are required")
	}

	query := url.Values{}
	if triggerID != "" {
		query.Set("triggerId", triggerID)
	}

	resp, err := c.doRequest(ctx, "DELETE", c.apiPath(namespace, flowID), query)
	if err != nil {
		return nil, err
	}

	return c.handleDeleteResponse(resp)
}

// handleDeleteResponse decodes a deletion response.
// The API answers deletions with an empty body on some versions.
func (c *Client) handleDeleteResponse(resp *http.Response) (*models.DeleteResult, error) {
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	result := &models.DeleteResult{Status: "deleted"}
	if len(strings.TrimSpace(string(bodyBytes))) == 0 {
		return result, nil
	}

	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	if result.Status == "" {
		result.Status = "deleted"
	}

	return result, nil
}
