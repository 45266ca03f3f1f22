package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:12000/api/v1"

// Client provides typed access to the shiftwatch API for agents and scripts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithToken presets the bearer credential (access token or API key).
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// New constructs a Client for base, which must include the API prefix.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// Token returns the current bearer credential.
func (c *Client) Token() string { return c.token }

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, v any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if v == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := APIError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var payload struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}
	apiErr.Code = payload.Code
	apiErr.Message = strings.TrimSpace(payload.Message)
	apiErr.Details = payload.Details
	return apiErr
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges employee credentials for an access token and keeps it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	return c.login(ctx, "/auth/login", email, password)
}

// AdminLogin is Login for organization admins.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (Token, error) {
	return c.login(ctx, "/auth/admin/login", email, password)
}

func (c *Client) login(ctx context.Context, path, email, password string) (Token, error) {
	var tok Token
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &tok); err != nil {
		return Token{}, err
	}
	c.token = tok.AccessToken
	return tok, nil
}

// IssueAPIKey requests a long lived admin key and keeps it on the client.
func (c *Client) IssueAPIKey(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		APIKey string `json:"api_key"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/admin/api-key", nil, body, &resp); err != nil {
		return "", err
	}
	c.token = resp.APIKey
	return resp.APIKey, nil
}

// Shift mirrors the API shift payload.
type Shift struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Start              int64  `json:"start"`
	End                *int64 `json:"end"`
	EmployeeID         string `json:"employeeId"`
	ProjectID          string `json:"projectId,omitempty"`
	TaskID             string `json:"taskId,omitempty"`
	DeletedScreenshots int    `json:"deletedScreenshots"`
}

// ClockInInput opens a shift. EmployeeID is only needed when an admin clocks in someone else.
type ClockInInput struct {
	Start      int64  `json:"start"`
	EmployeeID string `json:"employeeId,omitempty"`
	ProjectID  string `json:"projectId,omitempty"`
	TaskID     string `json:"taskId,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ClockIn creates an open shift.
func (c *Client) ClockIn(ctx context.Context, input ClockInInput) (Shift, error) {
	if input.Start == 0 {
		input.Start = time.Now().UnixMilli()
	}
	var shift Shift
	if err := c.do(ctx, http.MethodPost, "/time-tracking/shift/", nil, input, &shift); err != nil {
		return Shift{}, err
	}
	return shift, nil
}

// ClockOut sets the end of shiftID. A zero end means now.
func (c *Client) ClockOut(ctx context.Context, shiftID string, end int64) (Shift, error) {
	if end == 0 {
		end = time.Now().UnixMilli()
	}
	var shift Shift
	body := map[string]int64{"end": end}
	if err := c.do(ctx, http.MethodPut, "/time-tracking/shift/"+url.PathEscape(shiftID), nil, body, &shift); err != nil {
		return Shift{}, err
	}
	return shift, nil
}

// ListShifts returns shifts visible to the caller, newest first.
func (c *Client) ListShifts(ctx context.Context, employeeID string, limit int) ([]Shift, error) {
	q := url.Values{}
	if employeeID != "" {
		q.Set("employee_id", employeeID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var shifts []Shift
	if err := c.do(ctx, http.MethodGet, "/time-tracking/shift/", q, nil, &shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

// ProjectTimeRow is one completed shift projected for reporting.
type ProjectTimeRow struct {
	ProjectID    string  `json:"projectId"`
	ProjectName  string  `json:"projectName"`
	TaskID       *string `json:"taskId"`
	TaskName     *string `json:"taskName"`
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	Time         int64   `json:"time"`
	Date         int64   `json:"date"`
}

// ProjectTime reports completed shifts overlapping [start, end].
func (c *Client) ProjectTime(ctx context.Context, start, end int64, filters map[string]string) ([]ProjectTimeRow, error) {
	q := url.Values{}
	q.Set("start", strconv.FormatInt(start, 10))
	q.Set("end", strconv.FormatInt(end, 10))
	for key, value := range filters {
		if value != "" {
			q.Set(key, value)
		}
	}
	var rows []ProjectTimeRow
	if err := c.do(ctx, http.MethodGet, "/time-tracking/analytics/project-time", q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Screenshot mirrors the API screenshot payload.
type Screenshot struct {
	ID         string `json:"id"`
	Timestamp  int64  `json:"timestamp"`
	EmployeeID string `json:"employeeId"`
	ShiftID    string `json:"shiftId"`
	ProjectID  string `json:"projectId,omitempty"`
	TaskID     string `json:"taskId,omitempty"`
	App        string `json:"app,omitempty"`
	Title      string `json:"title,omitempty"`
	URL        string `json:"url,omitempty"`
}

// ScreenshotPage is one page of a cursor listing.
type ScreenshotPage struct {
	Data []Screenshot `json:"data"`
	Next *string      `json:"next"`
}

// PageQuery selects a cursor listing. ID filters are OR-combined.
type PageQuery struct {
	Start      int64
	End        int64
	TaskIDs    []string
	ShiftIDs   []string
	ProjectIDs []string
	Descending bool
	Limit      int
}

func (q PageQuery) values(next string) url.Values {
	v := url.Values{}
	v.Set("start", strconv.FormatInt(q.Start, 10))
	v.Set("end", strconv.FormatInt(q.End, 10))
	if len(q.TaskIDs) > 0 {
		v.Set("task_id", strings.Join(q.TaskIDs, ","))
	}
	if len(q.ShiftIDs) > 0 {
		v.Set("shift_id", strings.Join(q.ShiftIDs, ","))
	}
	if len(q.ProjectIDs) > 0 {
		v.Set("project_id", strings.Join(q.ProjectIDs, ","))
	}
	if q.Descending {
		v.Set("sort_by", "timestamp_desc")
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if next != "" {
		v.Set("next", next)
	}
	return v
}

// PaginateScreenshots fetches the page after cursor next ("" for the first page).
func (c *Client) PaginateScreenshots(ctx context.Context, q PageQuery, next string) (ScreenshotPage, error) {
	var page ScreenshotPage
	if err := c.do(ctx, http.MethodGet, "/analytics/screenshot/paginate", q.values(next), nil, &page); err != nil {
		return ScreenshotPage{}, err
	}
	return page, nil
}

// WalkScreenshots follows the cursor until the stream ends or fn returns an error.
func (c *Client) WalkScreenshots(ctx context.Context, q PageQuery, fn func(Screenshot) error) error {
	next := ""
	for {
		page, err := c.PaginateScreenshots(ctx, q, next)
		if err != nil {
			return err
		}
		for _, shot := range page.Data {
			if err := fn(shot); err != nil {
				return err
			}
		}
		if page.Next == nil || *page.Next == "" {
			return nil
		}
		next = *page.Next
	}
}

// DeleteScreenshot removes a screenshot; the owning shift's counter is bumped server side.
func (c *Client) DeleteScreenshot(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/analytics/screenshot/"+url.PathEscape(id), nil, nil, nil)
}
