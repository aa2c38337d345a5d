package model

import "time"

type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Uploaded    time.Time `gorm:"autoCreateTime" json:"uploaded"`
	FileKey     string    `gorm:"size:255;not null" json:"file_key"` // Key inside the configured storage backend
	Title       string    `gorm:"size:100" json:"title"`
	Description string    `gorm:"size:500" json:"description"`
	ContentType string    `gorm:"size:255" json:"content_type"`
	Size        int64     `json:"size"`
}

// Models lists every model that has to be migrated
func Models() []any {
	return []any{
		&Permission{}, &Group{}, &User{},
		&Employee{}, &Project{}, &Task{}, &Comment{}, &Document{},
	}
}
