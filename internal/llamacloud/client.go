// Package llamacloud talks to the LlamaCloud REST API: file upload, the
// classifier and the extraction service. Classification and extraction are
// asynchronous jobs that are created, polled until terminal, then read.
package llamacloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrJobFailed = errors.New("llamacloud job failed")

type Config struct {
	BaseURL        string
	APIKey         string
	ProjectID      string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) endpoint(path string) string {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if c.cfg.ProjectID == "" {
		return u
	}
	return u + "?project_id=" + url.QueryEscape(c.cfg.ProjectID)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request failed: %w", path, err)
		}
		reader = bytes.NewReader(bodyBytes)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request failed: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	return req, nil
}

// do sends req and decodes a 2xx JSON response into out.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llamacloud request %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read llamacloud response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("llamacloud %s response status %d: %s", req.URL.Path, resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse llamacloud json failed: %w", err)
	}
	return nil
}

type jobStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error_message"`
}

// done reports whether status is terminal and, if so, whether it failed.
func (s jobStatus) done() (bool, error) {
	switch strings.ToUpper(s.Status) {
	case "SUCCESS", "COMPLETED", "PARTIAL_SUCCESS":
		return true, nil
	case "ERROR", "FAILED", "CANCELLED":
		if s.Error != "" {
			return true, fmt.Errorf("%w: job %s %s: %s", ErrJobFailed, s.ID, s.Status, s.Error)
		}
		return true, fmt.Errorf("%w: job %s %s", ErrJobFailed, s.ID, s.Status)
	default:
		return false, nil
	}
}

// wait polls path until the job reaches a terminal status or ctx ends.
func (c *Client) wait(ctx context.Context, path string) error {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()
	for {
		req, err := c.newRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		var status jobStatus
		if err := c.do(req, &status); err != nil {
			return err
		}
		if done, err := status.done(); done {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
