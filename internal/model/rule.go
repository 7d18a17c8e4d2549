package model

import "time"

// Rule is a user-defined classification category as stored. Type is the raw
// label the user typed; it is normalized before being sent to the classifier.
type Rule struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:64;not null;uniqueIndex:idx_rules_username_name" json:"username"`
	Name        string    `gorm:"size:128;not null;uniqueIndex:idx_rules_username_name" json:"name"`
	Type        string    `gorm:"size:128;not null" json:"type"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClassificationRule is the shape the classification service expects.
type ClassificationRule struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Classification is the classifier's verdict for one file. An empty Type
// means no rule matched.
type Classification struct {
	FileID string `json:"file_id"`
	Type   string `json:"type"`
}
