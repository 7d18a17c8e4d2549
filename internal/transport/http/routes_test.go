package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appsvc "studynotes/internal/app"
	"studynotes/internal/model"
	"studynotes/internal/search"
	"studynotes/internal/vectordb"
	"studynotes/internal/vectordb/memory"
)

type store struct {
	mu    sync.Mutex
	users []*model.User
	rules []model.Rule
	files []model.File
	runs  map[string]model.RunStatus
	jobs  []model.IngestJob
}

func (s *store) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = uint(len(s.users) + 1)
	s.users = append(s.users, u)
	return nil
}

func (s *store) findUser(match func(*model.User) bool) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return u
		}
	}
	return nil
}

func (s *store) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return u.Username == username }), nil
}

func (s *store) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return u.Email == email }), nil
}

func (s *store) GetByID(_ context.Context, id uint) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return u.ID == id }), nil
}

type ruleStore struct{ *store }

func (r ruleStore) Create(_ context.Context, rule *model.Rule) error {
	rule.ID = uint(len(r.rules) + 1)
	r.rules = append(r.rules, *rule)
	return nil
}

func (r ruleStore) ListByUsername(_ context.Context, username string) ([]model.Rule, error) {
	out := []model.Rule{}
	for _, rule := range r.rules {
		if rule.Username == username {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r ruleStore) GetByName(_ context.Context, username, name string) (*model.Rule, error) {
	for _, rule := range r.rules {
		if rule.Username == username && rule.Name == name {
			found := rule
			return &found, nil
		}
	}
	return nil, nil
}

func (r ruleStore) UpdateByName(context.Context, string, string, string, string) (bool, error) {
	return false, nil
}

func (r ruleStore) DeleteByIDAndUsername(_ context.Context, id uint, username string) (bool, error) {
	for i, rule := range r.rules {
		if rule.ID == id && rule.Username == username {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fileStore struct{ *store }

func (f fileStore) ListByUsername(_ context.Context, username string) ([]model.File, error) {
	out := []model.File{}
	for _, file := range f.files {
		if file.Username == username {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f fileStore) DeleteByIDAndUsername(context.Context, uint, string) (bool, error) {
	return false, nil
}

func (f fileStore) Upload(_ context.Context, r io.Reader, _ string) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	return "llama-file-1", nil
}

func (f fileStore) Publish(_ context.Context, job model.IngestJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}

type runStore struct{ *store }

func (r runStore) Get(_ context.Context, runID string) (*model.RunStatus, bool, error) {
	s, ok := r.runs[runID]
	return &s, ok, nil
}

func (r runStore) Set(_ context.Context, status *model.RunStatus) error {
	r.runs[status.RunID] = *status
	return nil
}

func (r runStore) Delete(_ context.Context, runID string) error {
	delete(r.runs, runID)
	return nil
}

type testServer struct {
	router *gin.Engine
	store  *store
	faqs   *vectordb.FAQStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := &store{runs: map[string]model.RunStatus{}}
	backend := memory.NewBackend()
	require.NoError(t, vectordb.EnsureCollections(context.Background(), backend))
	embedder := memory.NewHashEmbedder(vectordb.Dimension)
	summaries := vectordb.NewSummaryStore(backend, embedder, vectordb.Options{})
	faqs := vectordb.NewFAQStore(backend, embedder, vectordb.Options{})

	router := gin.New()
	Register(router.Group("/api/v1"), Services{
		Auth:           appsvc.NewAuthService(st, "secret", time.Hour),
		Rules:          appsvc.NewRuleService(ruleStore{st}),
		Files:          appsvc.NewFileService(fileStore{st}, fileStore{st}, fileStore{st}, runStore{st}, zap.NewNop()),
		Search:         appsvc.NewSearchService(search.NewDispatcher(summaries, faqs), nil),
		JWTSecret:      "secret",
		MaxUploadBytes: 1 << 20,
	})
	return &testServer{router: router, store: st, faqs: faqs}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload interface{}) (int, envelope) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return s.do(t, method, path, token, bytes.NewReader(body), "application/json")
}

func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()
	code, env := s.doJSON(t, nethttp.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, nethttp.StatusOK, code, env.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func TestRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, nethttp.MethodGet, "/api/v1/rules", "", nil, "")
	assert.Equal(t, nethttp.StatusUnauthorized, code)
	assert.Equal(t, 40100, env.Code)

	code, _ = s.do(t, nethttp.MethodGet, "/api/v1/rules", "not-a-jwt", nil, "")
	assert.Equal(t, nethttp.StatusUnauthorized, code)
}

func TestRuleRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice")

	rule := gin.H{"name": "notes", "type": "Study Notes", "description": "Lecture notes"}
	code, _ := s.doJSON(t, nethttp.MethodPost, "/api/v1/rules", token, rule)
	require.Equal(t, nethttp.StatusOK, code)

	code, env := s.doJSON(t, nethttp.MethodPost, "/api/v1/rules", token, rule)
	assert.Equal(t, nethttp.StatusConflict, code)
	assert.Equal(t, 40003, env.Code)

	code, env = s.do(t, nethttp.MethodGet, "/api/v1/rules", token, nil, "")
	require.Equal(t, nethttp.StatusOK, code)
	var list struct {
		Rules []model.Rule `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Rules, 1)
	assert.Equal(t, "alice", list.Rules[0].Username)

	bobToken := s.register(t, "bob")
	code, _ = s.do(t, nethttp.MethodDelete, "/api/v1/rules/1", bobToken, nil, "")
	assert.Equal(t, nethttp.StatusNotFound, code)

	code, _ = s.do(t, nethttp.MethodDelete, "/api/v1/rules/abc", token, nil, "")
	assert.Equal(t, nethttp.StatusBadRequest, code)

	code, _ = s.do(t, nethttp.MethodDelete, "/api/v1/rules/1", token, nil, "")
	assert.Equal(t, nethttp.StatusOK, code)
}

func TestUploadAndPollRun(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "notes.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4 content"))
	require.NoError(t, w.Close())

	code, env := s.do(t, nethttp.MethodPost, "/api/v1/files", token, &body, w.FormDataContentType())
	require.Equal(t, nethttp.StatusOK, code, env.Message)
	var status model.RunStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, model.RunQueued, status.Status)
	assert.Equal(t, "llama-file-1", status.FileID)
	require.Len(t, s.store.jobs, 1)
	assert.Equal(t, status.RunID, s.store.jobs[0].RunID)

	code, env = s.do(t, nethttp.MethodGet, "/api/v1/runs/"+status.RunID, token, nil, "")
	require.Equal(t, nethttp.StatusOK, code)

	bobToken := s.register(t, "bob")
	code, env = s.do(t, nethttp.MethodGet, "/api/v1/runs/"+status.RunID, bobToken, nil, "")
	assert.Equal(t, nethttp.StatusNotFound, code)
	assert.Equal(t, 40403, env.Code)

	code, _ = s.do(t, nethttp.MethodPost, "/api/v1/files", token, bytes.NewReader(nil), "multipart/form-data; boundary=x")
	assert.Equal(t, nethttp.StatusBadRequest, code)
}

func TestSearchRoute(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice")

	require.NoError(t, s.faqs.Upload(context.Background(),
		[]model.QAPair{{Question: "What is osmosis", Answer: "Diffusion of water across a membrane"}},
		vectordb.Tags{Username: "alice", Category: "biology", FileName: "cells.pdf"}))

	code, env := s.doJSON(t, nethttp.MethodPost, "/api/v1/search", token, gin.H{
		"search_type":  "faqs",
		"search_input": "What is osmosis",
	})
	require.Equal(t, nethttp.StatusOK, code, env.Message)
	var data struct {
		Results []vectordb.SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Results, 1)
	assert.Equal(t, "Diffusion of water across a membrane", data.Results[0].Text)
	assert.Equal(t, vectordb.ResultAnswer, data.Results[0].ResultType)

	bobToken := s.register(t, "bob")
	code, env = s.doJSON(t, nethttp.MethodPost, "/api/v1/search", bobToken, gin.H{
		"search_type":  "faqs",
		"search_input": "What is osmosis",
	})
	require.Equal(t, nethttp.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Empty(t, data.Results)

	code, _ = s.doJSON(t, nethttp.MethodPost, "/api/v1/search", token, gin.H{
		"search_type":  "everything",
		"search_input": "What is osmosis",
	})
	assert.Equal(t, nethttp.StatusBadRequest, code)
}
