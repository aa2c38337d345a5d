// Package task contains the task and comment endpoints
package task

import (
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/pkg/util"
	"context"
)

type taskForm struct {
	Project     uint   `form:"project" json:"project" binding:"required"`
	Title       string `form:"title" json:"title" binding:"required,max=200"`
	Description string `form:"description" json:"description"`
	Author      *uint  `form:"author" json:"author"`
	Assignee    *uint  `form:"assignee" json:"assignee"`
	Start       string `form:"start" json:"start"`
	End         string `form:"end" json:"end"`
	Status      string `form:"status" json:"status" binding:"omitempty,task_status"`
}

var formFields = []string{"project", "title", "author", "assignee", "start", "end", "status", "description"}

// apply validates the references and copies the form onto t. The returned
// map holds field errors.
func (f *taskForm) apply(ctx context.Context, d *internal.Deps, t *model.Task) (map[string]string, error) {
	errs := map[string]string{}

	start, err := util.ParseDateTime(f.Start)
	if err != nil {
		errs["start"] = err.Error()
	}

	end, err := util.ParseDateTime(f.End)
	if err != nil {
		errs["end"] = err.Error()
	}

	var n int64
	if err := d.DB.WithContext(ctx).Model(&model.Project{}).Where("id = ?", f.Project).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		errs["project"] = "select a valid project"
	}

	for field, id := range map[string]*uint{"author": f.Author, "assignee": f.Assignee} {
		if id == nil || *id == 0 {
			continue
		}

		ok, err := d.Employees.Exists(ctx, *id)
		if err != nil {
			return nil, err
		}
		if !ok {
			errs[field] = "select a valid employee"
		}
	}

	if len(errs) > 0 {
		return errs, nil
	}

	t.ProjectID = f.Project
	t.Title = f.Title
	t.Description = f.Description
	t.AuthorID = nonZero(f.Author)
	t.AssigneeID = nonZero(f.Assignee)
	t.Start = start
	t.End = end

	// An empty status leaves an existing task's status alone
	switch {
	case f.Status != "":
		t.Status = model.TaskStatus(f.Status)
	case t.Status == "":
		t.Status = model.StatusNew
	}

	return nil, nil
}

func nonZero(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}

	return id
}
