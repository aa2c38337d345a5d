package model

import "gorm.io/datatypes"

type Project struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	DueDate     *datatypes.Date `json:"due_date"`
	IsClosed    bool            `gorm:"index" json:"is_closed"`

	Tasks     []Task     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Documents []Document `gorm:"many2many:project_documents;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}
