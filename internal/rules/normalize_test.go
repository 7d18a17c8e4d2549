package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"studynotes/internal/model"
)

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{name: "single word", label: "Biology", want: "biology"},
		{name: "two words", label: "Study Notes", want: "study_notes"},
		{name: "surrounding whitespace", label: "  Lecture Slides \n", want: "lecture_slides"},
		{name: "whitespace runs", label: "Exam \t\t Prep   Sheet", want: "exam_prep_sheet"},
		{name: "already normalized", label: "study_notes", want: "study_notes"},
		{name: "unicode space", label: "Math\u2003Homework", want: "math_homework"},
		{name: "blank", label: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeType(tt.label))
		})
	}
}

func TestNormalizePreservesOrderAndDescriptions(t *testing.T) {
	in := []model.Rule{
		{Type: "Study Notes", Description: "  Notes taken during class  "},
		{Type: "LAB Report", Description: "Experiment write-ups"},
		{Type: "essay", Description: ""},
	}

	out := Normalize(in)

	assert.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].Description, out[i].Description)
		want := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(in[i].Type))), "_")
		assert.Equal(t, want, out[i].Type)
	}
	assert.Equal(t, "study_notes", out[0].Type)
	assert.Equal(t, "lab_report", out[1].Type)
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]model.Rule{}))
}
