package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studynotes/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrRunNotFound  = errors.New("run not found")
)

type FileStore interface {
	ListByUsername(ctx context.Context, username string) ([]model.File, error)
	DeleteByIDAndUsername(ctx context.Context, id uint, username string) (bool, error)
}

// Uploader stores a document with the document service and returns its id.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, fileName string) (string, error)
}

type JobPublisher interface {
	Publish(ctx context.Context, job model.IngestJob) error
}

type RunStatusStore interface {
	Get(ctx context.Context, runID string) (*model.RunStatus, bool, error)
	Set(ctx context.Context, status *model.RunStatus) error
	Delete(ctx context.Context, runID string) error
}

type FileService struct {
	files     FileStore
	uploader  Uploader
	publisher JobPublisher
	runs      RunStatusStore
	logger    *zap.Logger
}

func NewFileService(files FileStore, uploader Uploader, publisher JobPublisher, runs RunStatusStore, logger *zap.Logger) *FileService {
	return &FileService{
		files:     files,
		uploader:  uploader,
		publisher: publisher,
		runs:      runs,
		logger:    logger,
	}
}

func (s *FileService) List(ctx context.Context, username string) ([]model.File, error) {
	if username == "" {
		return nil, ErrInvalidInput
	}
	return s.files.ListByUsername(ctx, username)
}

// Delete removes the registry entry only. Vector records written for the
// file stay searchable.
func (s *FileService) Delete(ctx context.Context, username string, id uint) error {
	if username == "" || id == 0 {
		return ErrInvalidInput
	}
	deleted, err := s.files.DeleteByIDAndUsername(ctx, id, username)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrFileNotFound
	}
	return nil
}

// Upload hands the document to the document service and queues an
// ingestion run for it. The returned status is in the queued state.
func (s *FileService) Upload(ctx context.Context, username, fileName string, content io.Reader) (*model.RunStatus, error) {
	fileName = filepath.Base(strings.TrimSpace(fileName))
	if username == "" || fileName == "" || fileName == "." || fileName == string(filepath.Separator) {
		return nil, ErrInvalidInput
	}

	fileID, err := s.uploader.Upload(ctx, content, fileName)
	if err != nil {
		return nil, fmt.Errorf("upload document failed: %w", err)
	}

	now := time.Now()
	status := &model.RunStatus{
		RunID:     uuid.NewString(),
		Username:  username,
		FileID:    fileID,
		FileName:  fileName,
		Status:    model.RunQueued,
		UpdatedAt: &now,
	}
	if err := s.runs.Set(ctx, status); err != nil {
		return nil, err
	}

	job := model.IngestJob{
		RunID:    status.RunID,
		FileID:   fileID,
		FileName: fileName,
		Username: username,
	}
	if err := s.publisher.Publish(ctx, job); err != nil {
		// The run id is never handed out, so its queued entry is dropped.
		if delErr := s.runs.Delete(context.WithoutCancel(ctx), status.RunID); delErr != nil {
			s.logger.Warn("drop unpublished run status failed",
				zap.String("run_id", status.RunID),
				zap.Error(delErr))
		}
		return nil, err
	}
	s.logger.Info("ingest run queued",
		zap.String("run_id", status.RunID),
		zap.String("file_id", fileID),
		zap.String("username", username))
	return status, nil
}

// GetRun returns a run owned by username. Runs of other users are reported
// as not found.
func (s *FileService) GetRun(ctx context.Context, username, runID string) (*model.RunStatus, error) {
	if username == "" || runID == "" {
		return nil, ErrInvalidInput
	}
	status, ok, err := s.runs.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok || status.Username != username {
		return nil, ErrRunNotFound
	}
	return status, nil
}
