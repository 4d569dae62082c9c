package problems

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://kenkoooo.com"

// resultAccepted is the verdict string the API uses for accepted submissions.
const resultAccepted = "AC"

// Submission is one entry of a user's submission history as reported by
// the AtCoder Problems API. Fields the API sends but we do not use are
// ignored during decoding.
type Submission struct {
	ID          int64   `json:"id"`
	EpochSecond int64   `json:"epoch_second"`
	ProblemID   string  `json:"problem_id"`
	ContestID   string  `json:"contest_id"`
	UserID      string  `json:"user_id"`
	Language    string  `json:"language"`
	Point       float64 `json:"point"`
	Result      string  `json:"result"`
}

// IsAccepted reports whether the submission was judged accepted.
func (s Submission) IsAccepted() bool {
	return s.Result == resultAccepted
}

// Client provides access to the AtCoder Problems API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a new AtCoder Problems API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListUserSubmissions returns the complete submission history for a user,
// in whatever order the service returns it. No retries are performed; any
// transport or decoding failure aborts the call.
func (c *Client) ListUserSubmissions(ctx context.Context, userID string) ([]Submission, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is empty")
	}

	reqURL := fmt.Sprintf("%s/atcoder/atcoder-api/results?user=%s", c.baseURL, url.QueryEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions for %s: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var submissions []Submission
	if err := json.NewDecoder(resp.Body).Decode(&submissions); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return submissions, nil
}
