// Package model defines database models
package model

import "fmt"

// Actions a permission can grant on an entity
const (
	ActionView   = "view"
	ActionAdd    = "add"
	ActionChange = "change"
	ActionDelete = "delete"
)

// Entities guarded by permissions
const (
	EntityProject  = "project"
	EntityTask     = "task"
	EntityComment  = "comment"
	EntityEmployee = "employee"
	EntityDocument = "document"
)

// PublicGroup is the group newly registered users are added to
const PublicGroup = "public"

var (
	actions  = []string{ActionView, ActionAdd, ActionChange, ActionDelete}
	entities = []string{EntityProject, EntityTask, EntityComment, EntityEmployee, EntityDocument}
)

type Permission struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Codename string `gorm:"uniqueIndex;size:100;not null" json:"codename"`
	Name     string `gorm:"size:255" json:"name"`
}

type Group struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;size:150;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:group_permissions;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

// Codename builds a permission codename like "view_project"
func Codename(action, entity string) string {
	return action + "_" + entity
}

// AllPermissions returns every permission known to the application
func AllPermissions() []Permission {
	perms := make([]Permission, 0, len(actions)*len(entities))
	for _, e := range entities {
		for _, a := range actions {
			perms = append(perms, Permission{
				Codename: Codename(a, e),
				Name:     fmt.Sprintf("Can %s %s", a, e),
			})
		}
	}

	return perms
}

// PublicCodenames lists the permissions granted to the public group:
// every view permission plus adding comments
func PublicCodenames() []string {
	out := make([]string, 0, len(entities)+1)
	for _, e := range entities {
		out = append(out, Codename(ActionView, e))
	}

	return append(out, Codename(ActionAdd, EntityComment))
}
