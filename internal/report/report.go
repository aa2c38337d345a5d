// Package report builds the dashboard figures shown on the home page
package report

import (
	"bitwise74/taskcamp/internal/model"
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type ProjectStats struct {
	Total      int64 `json:"total"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Overdue    int64 `json:"overdue"`
}

type TaskStats struct {
	Total      int64 `json:"total"`
	InProgress int64 `json:"in_progress"`
	Overdue    int64 `json:"overdue"`
	Completed  int64 `json:"completed"`
}

type EmployeeStats struct {
	Total               int64 `json:"total"`
	AssignedForToday    int64 `json:"assigned_for_today"`
	NotAssignedForToday int64 `json:"not_assigned_for_today"`
}

type Summary struct {
	Projects  ProjectStats  `json:"projects"`
	Tasks     TaskStats     `json:"tasks"`
	Employees EmployeeStats `json:"employees"`
}

type Dashboard struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboard(db *gorm.DB) *Dashboard {
	return &Dashboard{db: db, now: time.Now}
}

// Summary computes every figure at a single point in time. The three
// groups are queried concurrently.
func (d *Dashboard) Summary(ctx context.Context) (*Summary, error) {
	now := d.now().UTC()

	var s Summary

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.projects(ctx, now, &s.Projects) })
	g.Go(func() error { return d.tasks(ctx, now, &s.Tasks) })
	g.Go(func() error { return d.employees(ctx, now, &s.Employees) })

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (d *Dashboard) projects(ctx context.Context, now time.Time, out *ProjectStats) error {
	err := d.db.WithContext(ctx).
		Model(&model.Project{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN is_closed THEN 0 ELSE 1 END), 0) AS in_progress, "+
				"COALESCE(SUM(CASE WHEN is_closed THEN 1 ELSE 0 END), 0) AS completed, "+
				"COALESCE(SUM(CASE WHEN NOT is_closed AND due_date <= ? THEN 1 ELSE 0 END), 0) AS overdue",
			now,
		).
		Scan(out).
		Error
	if err != nil {
		return fmt.Errorf("failed to count projects, %w", err)
	}

	return nil
}

func (d *Dashboard) tasks(ctx context.Context, now time.Time, out *TaskStats) error {
	err := d.db.WithContext(ctx).
		Model(&model.Task{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN status IN ? THEN 1 ELSE 0 END), 0) AS in_progress, "+
				"COALESCE(SUM(CASE WHEN status IN ? AND end_at <= ? THEN 1 ELSE 0 END), 0) AS overdue, "+
				"COALESCE(SUM(CASE WHEN status IN ? THEN 1 ELSE 0 END), 0) AS completed",
			model.OpenStatuses, model.OpenStatuses, now, model.FinishedStatuses,
		).
		Scan(out).
		Error
	if err != nil {
		return fmt.Errorf("failed to count tasks, %w", err)
	}

	return nil
}

func (d *Dashboard) employees(ctx context.Context, now time.Time, out *EmployeeStats) error {
	conn := d.db.WithContext(ctx)

	if err := conn.Model(&model.Employee{}).Count(&out.Total).Error; err != nil {
		return fmt.Errorf("failed to count employees, %w", err)
	}

	err := conn.
		Model(&model.Task{}).
		Where("assignee_id IS NOT NULL").
		Where("start_at <= ? AND end_at >= ?", now, now).
		Where("status IN ?", model.OpenStatuses).
		Distinct("assignee_id").
		Count(&out.AssignedForToday).
		Error
	if err != nil {
		return fmt.Errorf("failed to count assigned employees, %w", err)
	}

	out.NotAssignedForToday = out.Total - out.AssignedForToday

	return nil
}
