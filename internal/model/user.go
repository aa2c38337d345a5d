package model

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Email        string          `gorm:"uniqueIndex;size:254;not null" json:"email"`
	PasswordHash string          `gorm:"not null" json:"-"`
	FirstName    string          `gorm:"size:150" json:"first_name"`
	LastName     string          `gorm:"size:150" json:"last_name"`
	Birthdate    *datatypes.Date `json:"birthdate"`
	IsActive     bool            `json:"is_active"`
	IsStaff      bool            `json:"is_staff"`
	IsSuperuser  bool            `json:"is_superuser"`
	DateJoined   time.Time       `gorm:"autoCreateTime" json:"date_joined"`
	LastLogin    *time.Time      `json:"last_login"`

	Groups      []Group      `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE" json:"-"`
	Permissions []Permission `gorm:"many2many:user_permissions;constraint:OnDelete:CASCADE" json:"-"`
}

// HasPerm reports whether the user holds the codename either directly or
// through one of their groups. Groups and Permissions must be preloaded.
// Inactive users hold nothing, superusers hold everything.
func (u *User) HasPerm(codename string) bool {
	if u == nil || !u.IsActive {
		return false
	}

	if u.IsSuperuser {
		return true
	}

	for _, p := range u.Permissions {
		if p.Codename == codename {
			return true
		}
	}

	for _, g := range u.Groups {
		for _, p := range g.Permissions {
			if p.Codename == codename {
				return true
			}
		}
	}

	return false
}

// FullName returns the first and last name separated by a space
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}

	return u.FirstName + " " + u.LastName
}
