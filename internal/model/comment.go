package model

import "time"

type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TaskID      uint      `gorm:"not null;index" json:"task_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Created     time.Time `gorm:"autoCreateTime;index" json:"created"`
}
