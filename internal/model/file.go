package model

import "time"

// File is the registry entry written once a document has been classified.
type File struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;not null;index" json:"username"`
	FileName  string    `gorm:"size:256;not null" json:"file_name"`
	Category  string    `gorm:"size:128;not null;index" json:"file_category"`
	CreatedAt time.Time `json:"created_at"`
}
