// Package remote implements the HTTP client for the team test-case API.
// All endpoints are team scoped; responses are JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/rpggio/casedeck/internal/repository"
)

// Client talks to the remote entity API. It implements
// repository.EntityAPI.
type Client struct {
	baseURL string
	auth    Authenticator
	logger  *slog.Logger
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, auth Authenticator, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: baseURL, auth: auth, logger: logger}
}

func (c *Client) List(ctx context.Context, teamID, containerID string) ([]testcase.Entity, error) {
	path := fmt.Sprintf("/api/v1/teams/%s/testcases", url.PathEscape(teamID))
	if containerID != "" {
		path += "?container_id=" + url.QueryEscape(containerID)
	}
	var out struct {
		TestCases []testcase.Entity `json:"test_cases"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.TestCases, nil
}

func (c *Client) Get(ctx context.Context, teamID, recordID string) (*testcase.Entity, error) {
	path := fmt.Sprintf("/api/v1/teams/%s/testcases/%s",
		url.PathEscape(teamID), url.PathEscape(recordID))
	var out testcase.Entity
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, teamID string, e *testcase.Entity) (*testcase.Entity, error) {
	path := fmt.Sprintf("/api/v1/teams/%s/testcases", url.PathEscape(teamID))
	var out testcase.Entity
	if err := c.call(ctx, http.MethodPost, path, e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, teamID string, e *testcase.Entity) (*testcase.Entity, error) {
	path := fmt.Sprintf("/api/v1/teams/%s/testcases/%s",
		url.PathEscape(teamID), url.PathEscape(e.RecordID))
	var out testcase.Entity
	if err := c.call(ctx, http.MethodPut, path, e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, teamID, recordID string) error {
	path := fmt.Sprintf("/api/v1/teams/%s/testcases/%s",
		url.PathEscape(teamID), url.PathEscape(recordID))
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) BatchUpdate(ctx context.Context, teamID string, req repository.BatchRequest) (*repository.BatchResponse, error) {
	path := fmt.Sprintf("/api/v1/teams/%s/testcases/batch", url.PathEscape(teamID))
	var out repository.BatchResponse
	if err := c.call(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ImpactPreview(ctx context.Context, teamID string, recordIDs []string, targetContainerID string) (*repository.ImpactReport, error) {
	path := fmt.Sprintf("/api/v1/teams/%s/impact-preview", url.PathEscape(teamID))
	body := struct {
		RecordIDs         []string `json:"record_ids"`
		TargetContainerID string   `json:"target_container_id"`
	}{recordIDs, targetContainerID}
	var out repository.ImpactReport
	if err := c.call(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteContainer(ctx context.Context, teamID, containerID string) error {
	path := fmt.Sprintf("/api/v1/teams/%s/containers/%s",
		url.PathEscape(teamID), url.PathEscape(containerID))
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

// call performs one JSON request/response round trip, mapping HTTP
// failures to the repository sentinels and APIError.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.auth.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	var detail struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &detail)

	msg := detail.Message
	if msg == "" {
		msg = detail.Error
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return repository.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return repository.ErrUnauthorized
	}

	c.logger.Debug("api error", "status", resp.StatusCode, "detail", msg)
	return &APIError{Status: resp.StatusCode, Detail: msg}
}
