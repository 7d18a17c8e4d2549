package llamacloud

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studynotes/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:      srv.URL,
		APIKey:       "llx-test",
		ProjectID:    "proj-1",
		PollInterval: time.Millisecond,
	})
}

func TestUpload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/files", r.URL.Path)
		assert.Equal(t, "proj-1", r.URL.Query().Get("project_id"))
		assert.Equal(t, "Bearer llx-test", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("upload_file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "notes.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.4", string(content))

		_, _ = w.Write([]byte(`{"id":"file-123","name":"notes.pdf","project_id":"proj-1"}`))
	}))

	id, err := client.Upload(context.Background(), strings.NewReader("%PDF-1.4"), "notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, "file-123", id)
}

func TestClassifyPollsUntilDone(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/classifier/jobs", func(w http.ResponseWriter, r *http.Request) {
		var body classifyJobRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"file-1"}, body.FileIDs)
		assert.Equal(t, []model.ClassificationRule{{Type: "study_notes", Description: "lecture notes"}}, body.Rules)
		_, _ = w.Write([]byte(`{"id":"job-1","status":"PENDING"}`))
	})
	mux.HandleFunc("/api/v1/classifier/jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			_, _ = w.Write([]byte(`{"id":"job-1","status":"PENDING"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"job-1","status":"SUCCESS"}`))
	})
	mux.HandleFunc("/api/v1/classifier/jobs/job-1/results", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"file_id":"file-1","result":{"type":"study_notes","confidence":0.93}}]}`))
	})
	client := newTestClient(t, mux)

	got, err := client.Classify(context.Background(),
		[]model.ClassificationRule{{Type: "study_notes", Description: "lecture notes"}},
		[]string{"file-1"})
	require.NoError(t, err)
	assert.Equal(t, []model.Classification{{FileID: "file-1", Type: "study_notes"}}, got)
	assert.Equal(t, int32(3), polls.Load())
}

func TestClassifyWithoutMatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/classifier/jobs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"job-2","status":"SUCCESS"}`))
	})
	mux.HandleFunc("/api/v1/classifier/jobs/job-2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"job-2","status":"SUCCESS"}`))
	})
	mux.HandleFunc("/api/v1/classifier/jobs/job-2/results", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"file_id":"file-1","result":null},{"file_id":"file-2","result":{"type":null}}]}`))
	})
	client := newTestClient(t, mux)

	got, err := client.Classify(context.Background(), nil, []string{"file-1", "file-2"})
	require.NoError(t, err)
	assert.Equal(t, []model.Classification{{FileID: "file-1"}, {FileID: "file-2"}}, got)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		result string
		want   *model.StudyNotes
	}{
		{
			name:   "data",
			result: `{"data":{"summary":"Cells are the unit of life","faqs":[{"question":"What is a cell?","answer":"The basic unit of life"}]}}`,
			want: &model.StudyNotes{
				Summary: "Cells are the unit of life",
				FAQs:    []model.QAPair{{Question: "What is a cell?", Answer: "The basic unit of life"}},
			},
		},
		{name: "null data", result: `{"data":null}`},
		{name: "missing data", result: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v1/extraction/run", func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "file-1", body["file_id"])
				assert.Equal(t, map[string]any{"extraction_mode": "MULTIMODAL"}, body["config"])
				assert.NotNil(t, body["data_schema"])
				_, _ = w.Write([]byte(`{"id":"ext-1","status":"PENDING"}`))
			})
			mux.HandleFunc("/api/v1/extraction/jobs/ext-1", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"id":"ext-1","status":"SUCCESS"}`))
			})
			mux.HandleFunc("/api/v1/extraction/jobs/ext-1/result", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.result))
			})
			client := newTestClient(t, mux)

			got, err := client.Extract(context.Background(), model.ExtractRequest{
				FileID:   "file-1",
				FileName: "notes.pdf",
				Mode:     model.ExtractModeMultimodal,
				Schema:   model.StudyNotesSchema(),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJobFailureIsAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/extraction/run", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"ext-2","status":"PENDING"}`))
	})
	mux.HandleFunc("/api/v1/extraction/jobs/ext-2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"ext-2","status":"ERROR","error_message":"unsupported file"}`))
	})
	client := newTestClient(t, mux)

	_, err := client.Extract(context.Background(), model.ExtractRequest{FileID: "file-1"})
	assert.ErrorIs(t, err, ErrJobFailed)
	assert.Contains(t, err.Error(), "unsupported file")
}

func TestHTTPErrorStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid api key"}`))
	}))

	_, err := client.Classify(context.Background(), nil, []string{"file-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestWaitHonoursContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/classifier/jobs/job-3", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"job-3","status":"PENDING"}`))
	})
	client := newTestClient(t, mux)
	client.cfg.PollInterval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := client.wait(ctx, "/api/v1/classifier/jobs/job-3")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
