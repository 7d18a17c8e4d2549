// Package rules converts stored classification rules into the classifier's
// rule shape.
package rules

import (
	"strings"

	"studynotes/internal/model"
)

// NormalizeType lowercases the label and joins its words with underscores,
// so " Study  Notes\t" becomes "study_notes".
func NormalizeType(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), "_")
}

// Normalize maps rules one to one, preserving order. Descriptions pass
// through untouched.
func Normalize(in []model.Rule) []model.ClassificationRule {
	out := make([]model.ClassificationRule, 0, len(in))
	for _, r := range in {
		out = append(out, model.ClassificationRule{
			Type:        NormalizeType(r.Type),
			Description: r.Description,
		})
	}
	return out
}
