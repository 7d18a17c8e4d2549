package pipeline

import "studynotes/internal/model"

type Stage int

const (
	StageReceived Stage = iota
	StageClassified
	StageExtracted
	StageCompleted
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageClassified:
		return "classified"
	case StageExtracted:
		return "extracted"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RunState is the mutable state of one run. FileType is empty until the
// document has been classified.
type RunState struct {
	FileID   string
	FileName string
	Username string
	FileType string
}

func (st *RunState) fileRecord() model.File {
	return model.File{Username: st.Username, FileName: st.FileName, Category: st.FileType}
}

// Step is the outcome of one transition. Notes is set for StageExtracted and
// Reason for StageFailed.
type Step struct {
	Stage  Stage
	Notes  *model.StudyNotes
	Reason error
}

func failed(reason error) Step {
	return Step{Stage: StageFailed, Reason: reason}
}
