package model

type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// StudyNotes is the structured artifact extracted from a document.
type StudyNotes struct {
	Summary string   `json:"summary"`
	FAQs    []QAPair `json:"faqs"`
}

type ExtractMode string

const ExtractModeMultimodal ExtractMode = "MULTIMODAL"

type ExtractRequest struct {
	FileID   string
	FileName string
	Mode     ExtractMode
	Schema   map[string]any
}

// StudyNotesSchema is the JSON schema handed to the extraction service.
func StudyNotesSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"summary", "faqs"},
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "Summary of the study notes in the document",
			},
			"faqs": map[string]any{
				"type":        "array",
				"description": "List of potential 'Frequently Asked Questions' (with associated answer) to help a student review and prepare with the study notes",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"question", "answer"},
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "Question related to the main document",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "Answer to the question",
						},
					},
				},
			},
		},
	}
}
