// Package employee contains the employee endpoints
package employee

import (
	"bitwise74/taskcamp/app/respond"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/repository"
	"bitwise74/taskcamp/pkg/util"
	"bitwise74/taskcamp/pkg/validators"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type employeeForm struct {
	Firstname string `form:"firstname" json:"firstname" binding:"required,max=50"`
	Surname   string `form:"surname" json:"surname" binding:"required,max=50"`
	Email     string `form:"email" json:"email" binding:"required,max=100"`
	Birthdate string `form:"birthdate" json:"birthdate" binding:"required"`
}

var formFields = []string{"firstname", "surname", "email", "birthdate"}

func (f *employeeForm) apply(e *model.Employee) map[string]string {
	errs := map[string]string{}

	if err := validators.EmailValidator(f.Email); err != nil {
		errs["email"] = err.Error()
	}

	birth, err := util.ParseDate(f.Birthdate)
	if err != nil || birth == nil {
		errs["birthdate"] = util.ErrInvalidDate.Error()
	}

	if len(errs) > 0 {
		return errs
	}

	e.Firstname = f.Firstname
	e.Surname = f.Surname
	e.Email = f.Email
	e.Birthdate = datatypes.Date(*birth)

	return nil
}

// EmployeeList answers the filtered employee list
func EmployeeList(c *gin.Context, d *internal.Deps) {
	order, ok := respond.Order(c, "employees", repository.EmployeeOrdering)
	if !ok {
		return
	}

	q := c.Query("q")

	employees, err := d.Employees.List(c.Request.Context(), repository.ListOptions{
		Query: q,
		Order: repository.EmployeeOrdering.Clause(order),
	})
	if err != nil {
		respond.Internal(c, "Failed to list employees", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employees":   employees,
		"q":           q,
		"order_by":    order,
		"order_links": repository.EmployeeOrdering.Links(order),
	})
}

// EmployeeDetail answers an employee with the tasks assigned to them
func EmployeeDetail(c *gin.Context, d *internal.Deps) {
	e, ok := load(c, d)
	if !ok {
		return
	}

	tasks, err := d.Employees.AssignedTasks(c.Request.Context(), e.ID)
	if err != nil {
		respond.Internal(c, "Failed to load assigned tasks", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"employee": e, "tasks": tasks})
}

func EmployeeForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": formFields})
}

func EmployeeCreate(c *gin.Context, d *internal.Deps) {
	var form employeeForm
	if !respond.Bind(c, &form) {
		return
	}

	var e model.Employee
	if errs := form.apply(&e); errs != nil {
		respond.Invalid(c, errs)
		return
	}

	if err := d.DB.WithContext(c.Request.Context()).Create(&e).Error; err != nil {
		respond.Internal(c, "Failed to create employee", err)
		return
	}

	c.Redirect(http.StatusFound, "/employees/")
}

func EmployeeEditForm(c *gin.Context, d *internal.Deps) {
	e, ok := load(c, d)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"fields": formFields, "employee": e})
}

func EmployeeEdit(c *gin.Context, d *internal.Deps) {
	e, ok := load(c, d)
	if !ok {
		return
	}

	var form employeeForm
	if !respond.Bind(c, &form) {
		return
	}

	if errs := form.apply(e); errs != nil {
		respond.Invalid(c, errs)
		return
	}

	if err := d.DB.WithContext(c.Request.Context()).Save(e).Error; err != nil {
		respond.Internal(c, "Failed to update employee", err)
		return
	}

	respond.Redirect(c, "/employees/")
}

func EmployeeDeleteConfirm(c *gin.Context, d *internal.Deps) {
	e, ok := load(c, d)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"employee": e})
}

// EmployeeDelete removes the employee and clears their task references
func EmployeeDelete(c *gin.Context, d *internal.Deps) {
	id, ok := respond.ID(c)
	if !ok {
		return
	}

	if err := d.Employees.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.NotFound(c)
			return
		}

		respond.Internal(c, fmt.Sprintf("Failed to delete employee %d", id), err)
		return
	}

	c.Redirect(http.StatusFound, "/employees/")
}

func load(c *gin.Context, d *internal.Deps) (*model.Employee, bool) {
	id, ok := respond.ID(c)
	if !ok {
		return nil, false
	}

	e, err := d.Employees.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respond.NotFound(c)
			return nil, false
		}

		respond.Internal(c, "Failed to load employee", err)
		return nil, false
	}

	return e, true
}
