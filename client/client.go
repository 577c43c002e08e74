// Package client calls the submission analyzer backend.
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

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dsahelper/dsahelper/auth"
	"github.com/dsahelper/dsahelper/types"
)

// DefaultBaseURL is the deployed backend.
const DefaultBaseURL = "https://leetcode-project-backend-1082156221911.europe-west1.run.app"

// TokenSource hands out the identity token sent as the bearer credential.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

// Client is a typed wrapper around the backend's REST endpoints.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource

	// APIReport logs every request at info level; APIDump adds the bodies.
	APIReport bool
	APIDump   bool
}

// New returns a client for baseURL.
func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Tokens:     tokens,
	}
}

type request struct {
	method       string
	path         string
	params       url.Values
	anonymous    bool
	judgeSession string
	upload       interface{}
	download     interface{}
}

// Register links the identity provider account to a backend account.
func (c *Client) Register(ctx context.Context, idToken string) error {
	return c.doRequest(ctx, &request{
		method:    http.MethodPost,
		path:      "/register",
		anonymous: true,
		upload:    &types.RegisterRequest{IDToken: idToken},
	})
}

// Submissions fetches the most recent limit submissions from the judge site.
func (c *Client) Submissions(ctx context.Context, judgeSession string, limit int) ([]types.Submission, error) {
	params := make(url.Values)
	params.Set("limit", strconv.Itoa(limit))
	list := []types.Submission{}
	err := c.doRequest(ctx, &request{
		method:       http.MethodGet,
		path:         "/api/get-submissions",
		params:       params,
		judgeSession: judgeSession,
		download:     &list,
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []types.Submission{}
	}
	return list, nil
}

// SubmissionFeedback asks for the AI review of one submission.
func (c *Client) SubmissionFeedback(ctx context.Context, sub *types.Submission) (*types.AnalysisReport, error) {
	report := new(types.AnalysisReport)
	err := c.doRequest(ctx, &request{
		method:   http.MethodPost,
		path:     "/api/submission-feedback",
		upload:   types.NewAnalysisRequest(sub),
		download: report,
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// CompareSolution contrasts a submission with an optimal solution.
func (c *Client) CompareSolution(ctx context.Context, sub *types.Submission) (*types.ComparisonData, error) {
	data := new(types.ComparisonData)
	err := c.doRequest(ctx, &request{
		method:   http.MethodPost,
		path:     "/api/analyze-submission",
		upload:   types.NewAnalysisRequest(sub),
		download: data,
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// PatternInfo fetches the description and template of a pattern.
func (c *Client) PatternInfo(ctx context.Context, pattern, language string) (*types.PatternInfo, error) {
	info := new(types.PatternInfo)
	err := c.doRequest(ctx, &request{
		method:   http.MethodPost,
		path:     "/api/pattern-info",
		upload:   &types.PatternRequest{Pattern: pattern, Language: language},
		download: info,
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// OverallAnalysis summarizes the user's recent submissions.
func (c *Client) OverallAnalysis(ctx context.Context, judgeSession string) (*types.OverallAnalysis, error) {
	analysis := new(types.OverallAnalysis)
	err := c.doRequest(ctx, &request{
		method:       http.MethodGet,
		path:         "/api/overall-analysis",
		judgeSession: judgeSession,
		download:     analysis,
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// Revisions lists every tracked problem.
func (c *Client) Revisions(ctx context.Context) ([]types.RevisionProblem, error) {
	return c.revisions(ctx, "/api/revisions")
}

// DueRevisions lists the tracked problems the backend considers due.
func (c *Client) DueRevisions(ctx context.Context) ([]types.RevisionProblem, error) {
	return c.revisions(ctx, "/api/revisions/due")
}

func (c *Client) revisions(ctx context.Context, path string) ([]types.RevisionProblem, error) {
	list := []types.RevisionProblem{}
	err := c.doRequest(ctx, &request{method: http.MethodGet, path: path, download: &list})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []types.RevisionProblem{}
	}
	return list, nil
}

// AddRevisions starts tracking problems.
func (c *Client) AddRevisions(ctx context.Context, problems []types.RevisionProblem) error {
	return c.doRequest(ctx, &request{method: http.MethodPost, path: "/api/revisions", upload: problems})
}

// UpdateRevision replaces a tracked problem.
func (c *Client) UpdateRevision(ctx context.Context, rp *types.RevisionProblem) error {
	return c.doRequest(ctx, &request{method: http.MethodPut, path: "/api/revisions", upload: rp})
}

// DeleteRevision stops tracking a problem.
func (c *Client) DeleteRevision(ctx context.Context, rp *types.RevisionProblem) error {
	return c.doRequest(ctx, &request{method: http.MethodDelete, path: "/api/revisions", upload: rp})
}

func (c *Client) doRequest(ctx context.Context, r *request) error {
	if !strings.HasPrefix(r.path, "/") {
		log.Panicf("doRequest path must start with /")
	}

	// fail before any I/O when there is nobody to send the request as
	var token string
	if !r.anonymous {
		if c.Tokens == nil {
			return auth.ErrNotAuthenticated
		}
		var err error
		if token, err = c.Tokens.IDToken(ctx); err != nil {
			return err
		}
		if token == "" {
			return auth.ErrNotAuthenticated
		}
	}

	var body io.Reader
	var raw []byte
	if r.upload != nil {
		var err error
		if raw, err = json.Marshal(r.upload); err != nil {
			return fmt.Errorf("JSON error encoding request to %s: %w", r.path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.BaseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("error creating http request: %w", err)
	}
	if len(r.params) > 0 {
		req.URL.RawQuery = r.params.Encode()
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if r.judgeSession != "" {
		req.Header.Set(types.JudgeSessionHeader, r.judgeSession)
	}

	logger := log.WithField("endpoint", r.path).WithField("request_id", requestID)
	if c.APIReport || c.APIDump {
		logger.Infof("%s %s", r.method, req.URL)
	} else {
		logger.Debugf("%s %s", r.method, req.URL)
	}
	if c.APIDump && raw != nil {
		logger.Infof("request data: %s", raw)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		observe(r.method, r.path, 0, start)
		return fmt.Errorf("error connecting to %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()
	observe(r.method, r.path, resp.StatusCode, start)
	logger = logger.WithField("status", resp.StatusCode)

	envelope := new(types.Response)
	decodeErr := json.NewDecoder(resp.Body).Decode(envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := ""
		if decodeErr == nil {
			message = envelope.Message
		}
		logger.Debugf("backend rejected request: %s", message)
		return newAPIError(r.method, r.path, resp.StatusCode, message)
	}
	if r.download == nil {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to parse response from %s: %w", r.path, decodeErr)
	}
	if c.APIDump {
		logger.Infof("response data: %s", envelope.Data)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, r.download); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", r.path, err)
	}
	return nil
}
