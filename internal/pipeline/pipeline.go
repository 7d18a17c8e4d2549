// Package pipeline runs one document through classify, extract and ingest.
//
// A run is a small state machine. Each stage has exactly one transition,
// and a transition either advances the run, ends it as Failed with an
// expected reason, or returns an error from a collaborator. Failed runs are
// normal outcomes and are reported in the Result; errors are not.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"

	"studynotes/internal/model"
	"studynotes/internal/vectordb"
)

var (
	ErrNoClassificationMatch = errors.New("no classification match")
	ErrExtractionFailed      = errors.New("extraction failed")
	ErrInvalidInput          = errors.New("file id, file name and username are required")
)

type RuleSource interface {
	Rules(ctx context.Context, username string) iter.Seq2[model.Rule, error]
}

type FileRegistry interface {
	Create(ctx context.Context, file *model.File) error
}

type Classifier interface {
	Classify(ctx context.Context, rules []model.ClassificationRule, fileIDs []string) ([]model.Classification, error)
}

// Extractor returns nil notes when the document yielded no data.
type Extractor interface {
	Extract(ctx context.Context, req model.ExtractRequest) (*model.StudyNotes, error)
}

type SummaryIndex interface {
	Upload(ctx context.Context, summary string, tags vectordb.Tags) error
}

type FAQIndex interface {
	Upload(ctx context.Context, faqs []model.QAPair, tags vectordb.Tags) error
}

type Deps struct {
	Rules      RuleSource
	Files      FileRegistry
	Classifier Classifier
	Extractor  Extractor
	Summaries  SummaryIndex
	FAQs       FAQIndex
}

type Input struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	Username string `json:"username"`
}

type Result struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}

type Pipeline struct {
	deps   Deps
	logger *zap.Logger
}

func New(deps Deps, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{deps: deps, logger: logger}
}

// Run drives a single run to Completed or Failed. The returned error is
// non-nil only when a collaborator failed; in that case the Result is zero.
func (p *Pipeline) Run(ctx context.Context, in Input) (Result, error) {
	if in.FileID == "" || in.FileName == "" || in.Username == "" {
		return Result{}, ErrInvalidInput
	}

	st := &RunState{FileID: in.FileID, FileName: in.FileName, Username: in.Username}
	log := p.logger.With(
		zap.String("file_id", in.FileID),
		zap.String("file_name", in.FileName),
		zap.String("username", in.Username),
	)
	start := time.Now()

	step := Step{Stage: StageReceived}
	for {
		var (
			next Step
			err  error
		)
		switch step.Stage {
		case StageReceived:
			next, err = p.classify(ctx, st)
		case StageClassified:
			next, err = p.extract(ctx, st)
		case StageExtracted:
			next, err = p.ingest(ctx, st, step.Notes)
		case StageCompleted:
			log.Info("pipeline run completed",
				zap.String("category", st.FileType),
				zap.Duration("elapsed", time.Since(start)))
			return Result{Success: true}, nil
		case StageFailed:
			reason := step.Reason.Error()
			log.Info("pipeline run failed", zap.String("reason", reason))
			return Result{Success: false, Error: &reason}, nil
		default:
			return Result{}, fmt.Errorf("unknown pipeline stage %d", step.Stage)
		}
		if err != nil {
			log.Error("pipeline step error", zap.Stringer("stage", step.Stage), zap.Error(err))
			return Result{}, err
		}
		log.Debug("pipeline transition", zap.Stringer("from", step.Stage), zap.Stringer("to", next.Stage))
		step = next
	}
}
