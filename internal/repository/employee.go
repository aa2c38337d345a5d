package repository

import (
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/pkg/util"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// EmployeeOrdering lists the columns employee lists can be sorted by
var EmployeeOrdering = util.Ordering{
	Columns: map[string]string{
		"id":        "employees.id",
		"firstname": "employees.firstname",
		"surname":   "employees.surname",
		"email":     "employees.email",
		"birthdate": "employees.birthdate",
	},
	Default:  "id",
	Tiebreak: "employees.id",
}

type Employees struct {
	db *gorm.DB
}

func NewEmployees(db *gorm.DB) *Employees {
	return &Employees{db: db}
}

func (e *Employees) List(ctx context.Context, opts ListOptions) ([]model.Employee, error) {
	order := opts.Order
	if order == "" {
		order = EmployeeOrdering.Clause(EmployeeOrdering.Default)
	}

	var employees []model.Employee

	err := e.db.WithContext(ctx).
		Scopes(util.Search(opts.Query, "employees.firstname", "employees.surname", "employees.email")).
		Order(order).
		Find(&employees).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list employees, %w", err)
	}

	return employees, nil
}

func (e *Employees) Get(ctx context.Context, id uint) (*model.Employee, error) {
	var employee model.Employee
	if err := e.db.WithContext(ctx).First(&employee, id).Error; err != nil {
		return nil, notFound(err)
	}

	return &employee, nil
}

// Exists reports whether an employee with the id exists
func (e *Employees) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := e.db.WithContext(ctx).Model(&model.Employee{}).Where("id = ?", id).Count(&n).Error

	return n > 0, err
}

// AssignedTasks returns the tasks an employee is assigned to
func (e *Employees) AssignedTasks(ctx context.Context, id uint) ([]model.Task, error) {
	var tasks []model.Task

	err := e.db.WithContext(ctx).
		Where("assignee_id = ?", id).
		Order("id").
		Find(&tasks).
		Error

	return tasks, err
}

// Delete removes an employee. Tasks they authored or were assigned to
// are kept with the reference cleared.
func (e *Employees) Delete(ctx context.Context, id uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var employee model.Employee
		if err := tx.Select("id").First(&employee, id).Error; err != nil {
			return notFound(err)
		}

		for _, col := range []string{"author_id", "assignee_id"} {
			err := tx.Model(&model.Task{}).
				Where(col+" = ?", id).
				Update(col, nil).
				Error
			if err != nil {
				return fmt.Errorf("failed to clear task %s, %w", col, err)
			}
		}

		if err := tx.Delete(&employee).Error; err != nil {
			return fmt.Errorf("failed to delete employee, %w", err)
		}

		return nil
	})
}
