package llamacloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"studynotes/internal/model"
)

type extractJobRequest struct {
	FileID     string         `json:"file_id"`
	DataSchema map[string]any `json:"data_schema"`
	Config     extractConfig  `json:"config"`
}

type extractConfig struct {
	ExtractionMode model.ExtractMode `json:"extraction_mode"`
}

type extractResult struct {
	Data json.RawMessage `json:"data"`
}

// Extract runs a stateless extraction job against an uploaded file. It
// returns nil notes when the job finished without producing data.
func (c *Client) Extract(ctx context.Context, in model.ExtractRequest) (*model.StudyNotes, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/extraction/run", extractJobRequest{
		FileID:     in.FileID,
		DataSchema: in.Schema,
		Config:     extractConfig{ExtractionMode: in.Mode},
	})
	if err != nil {
		return nil, err
	}
	var job jobStatus
	if err := c.do(req, &job); err != nil {
		return nil, fmt.Errorf("create extract job for %s failed: %w", in.FileName, err)
	}
	if job.ID == "" {
		return nil, fmt.Errorf("extract job response has no id")
	}

	if err := c.wait(ctx, "/api/v1/extraction/jobs/"+job.ID); err != nil {
		return nil, fmt.Errorf("extract job %s: %w", job.ID, err)
	}

	req, err = c.newRequest(ctx, http.MethodGet, "/api/v1/extraction/jobs/"+job.ID+"/result", nil)
	if err != nil {
		return nil, err
	}
	var result extractResult
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("fetch extract result failed: %w", err)
	}
	if len(result.Data) == 0 || string(result.Data) == "null" {
		return nil, nil
	}

	var notes model.StudyNotes
	if err := json.Unmarshal(result.Data, &notes); err != nil {
		return nil, fmt.Errorf("parse study notes failed: %w", err)
	}
	return &notes, nil
}
