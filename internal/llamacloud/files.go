package llamacloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

type uploadedFile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
}

// Upload stores a document in LlamaCloud and returns its file id, which is
// what classification and extraction refer to.
func (c *Client) Upload(ctx context.Context, file io.Reader, fileName string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("upload_file", fileName)
	if err != nil {
		return "", fmt.Errorf("create upload form failed: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy upload body failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close upload form failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/v1/files"), &body)
	if err != nil {
		return "", fmt.Errorf("build upload request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	var uploaded uploadedFile
	if err := c.do(req, &uploaded); err != nil {
		return "", err
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("upload response has no file id")
	}
	return uploaded.ID, nil
}
