// Package project contains the project endpoints
package project

import (
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/pkg/util"

	"gorm.io/datatypes"
)

type projectForm struct {
	Title       string `form:"title" json:"title" binding:"required,max=200"`
	Description string `form:"description" json:"description"`
	DueDate     string `form:"due_date" json:"due_date"`
	IsClosed    bool   `form:"is_closed" json:"is_closed"`
}

// apply copies the form onto p. The returned map holds field errors.
func (f *projectForm) apply(p *model.Project) map[string]string {
	due, err := util.ParseDate(f.DueDate)
	if err != nil {
		return map[string]string{"due_date": err.Error()}
	}

	p.Title = f.Title
	p.Description = f.Description
	p.IsClosed = f.IsClosed
	p.DueDate = nil

	if due != nil {
		d := datatypes.Date(*due)
		p.DueDate = &d
	}

	return nil
}

// formFields describes the project form for clients rendering it
var formFields = []string{"title", "description", "due_date", "is_closed"}
