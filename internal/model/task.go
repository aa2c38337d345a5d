package model

import "time"

type TaskStatus string

const (
	StatusNew        TaskStatus = "new"
	StatusInProgress TaskStatus = "in progress"
	StatusDone       TaskStatus = "done"
	StatusClosed     TaskStatus = "closed"
)

// OpenStatuses are the statuses of tasks still being worked on
var OpenStatuses = []TaskStatus{StatusNew, StatusInProgress}

// FinishedStatuses are the statuses counted as completed
var FinishedStatuses = []TaskStatus{StatusDone, StatusClosed}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone, StatusClosed:
		return true
	}

	return false
}

func (s TaskStatus) Open() bool {
	return s == StatusNew || s == StatusInProgress
}

type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	ProjectID   uint       `gorm:"not null;index" json:"project_id"`
	Start       *time.Time `gorm:"column:start_at" json:"start"`
	End         *time.Time `gorm:"column:end_at;index" json:"end"`
	AuthorID    *uint      `gorm:"index" json:"author_id"`
	AssigneeID  *uint      `gorm:"index" json:"assignee_id"`
	Status      TaskStatus `gorm:"size:20;not null;index" json:"status"`

	Project   *Project   `json:"project,omitempty"`
	Author    *Employee  `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	Assignee  *Employee  `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"assignee,omitempty"`
	Comments  []Comment  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Documents []Document `gorm:"many2many:task_documents;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

// RowClass is the css class list views use to highlight a task:
// closed tasks are marked done, open tasks past their end are marked late.
func (t *Task) RowClass(now time.Time) string {
	if t.Status == StatusClosed {
		return "table-success"
	}

	if t.Status.Open() && t.End != nil && !t.End.After(now) {
		return "table-warning"
	}

	return ""
}
