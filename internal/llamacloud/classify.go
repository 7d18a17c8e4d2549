package llamacloud

import (
	"context"
	"fmt"
	"net/http"

	"studynotes/internal/model"
)

type classifyJobRequest struct {
	FileIDs []string                   `json:"file_ids"`
	Rules   []model.ClassificationRule `json:"rules"`
}

type classifyResults struct {
	Items []struct {
		FileID string `json:"file_id"`
		Result *struct {
			Type       *string `json:"type"`
			Confidence float64 `json:"confidence"`
			Reasoning  string  `json:"reasoning"`
		} `json:"result"`
	} `json:"items"`
}

// Classify runs one classifier job over fileIDs. A file the classifier could
// not place under any rule comes back with an empty Type.
func (c *Client) Classify(ctx context.Context, rules []model.ClassificationRule, fileIDs []string) ([]model.Classification, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/classifier/jobs", classifyJobRequest{
		FileIDs: fileIDs,
		Rules:   rules,
	})
	if err != nil {
		return nil, err
	}
	var job jobStatus
	if err := c.do(req, &job); err != nil {
		return nil, fmt.Errorf("create classify job failed: %w", err)
	}
	if job.ID == "" {
		return nil, fmt.Errorf("classify job response has no id")
	}

	if err := c.wait(ctx, "/api/v1/classifier/jobs/"+job.ID); err != nil {
		return nil, fmt.Errorf("classify job %s: %w", job.ID, err)
	}

	req, err = c.newRequest(ctx, http.MethodGet, "/api/v1/classifier/jobs/"+job.ID+"/results", nil)
	if err != nil {
		return nil, err
	}
	var results classifyResults
	if err := c.do(req, &results); err != nil {
		return nil, fmt.Errorf("fetch classify results failed: %w", err)
	}

	out := make([]model.Classification, 0, len(results.Items))
	for _, item := range results.Items {
		cls := model.Classification{FileID: item.FileID}
		if item.Result != nil && item.Result.Type != nil {
			cls.Type = *item.Result.Type
		}
		out = append(out, cls)
	}
	return out, nil
}
