package pipeline

import (
	"context"
	"fmt"

	"studynotes/internal/model"
	"studynotes/internal/rules"
	"studynotes/internal/vectordb"
)

func (p *Pipeline) classify(ctx context.Context, st *RunState) (Step, error) {
	var stored []model.Rule
	for rule, err := range p.deps.Rules.Rules(ctx, st.Username) {
		if err != nil {
			return Step{}, fmt.Errorf("read rules failed: %w", err)
		}
		stored = append(stored, rule)
	}

	verdicts, err := p.deps.Classifier.Classify(ctx, rules.Normalize(stored), []string{st.FileID})
	if err != nil {
		return Step{}, fmt.Errorf("classify file failed: %w", err)
	}
	fileType := ""
	for _, v := range verdicts {
		if v.Type != "" {
			fileType = v.Type
			break
		}
	}
	if fileType == "" {
		return failed(ErrNoClassificationMatch), nil
	}

	st.FileType = fileType
	record := st.fileRecord()
	if err := p.deps.Files.Create(ctx, &record); err != nil {
		return Step{}, fmt.Errorf("register file failed: %w", err)
	}
	return Step{Stage: StageClassified}, nil
}

func (p *Pipeline) extract(ctx context.Context, st *RunState) (Step, error) {
	notes, err := p.deps.Extractor.Extract(ctx, model.ExtractRequest{
		FileID:   st.FileID,
		FileName: st.FileName,
		Mode:     model.ExtractModeMultimodal,
		Schema:   model.StudyNotesSchema(),
	})
	if err != nil {
		return Step{}, fmt.Errorf("extract file failed: %w", err)
	}
	if notes == nil {
		return failed(ErrExtractionFailed), nil
	}
	return Step{Stage: StageExtracted, Notes: notes}, nil
}

// ingest writes the FAQ records first, then the summary. A failure between
// the two leaves the FAQ records in place.
func (p *Pipeline) ingest(ctx context.Context, st *RunState, notes *model.StudyNotes) (Step, error) {
	tags := vectordb.Tags{Username: st.Username, Category: st.FileType, FileName: st.FileName}
	if err := p.deps.FAQs.Upload(ctx, notes.FAQs, tags); err != nil {
		return Step{}, err
	}
	if err := p.deps.Summaries.Upload(ctx, notes.Summary, tags); err != nil {
		return Step{}, err
	}
	return Step{Stage: StageCompleted}, nil
}
