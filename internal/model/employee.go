package model

import "gorm.io/datatypes"

type Employee struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Firstname string         `gorm:"size:50;not null" json:"firstname"`
	Surname   string         `gorm:"size:50;not null" json:"surname"`
	Email     string         `gorm:"size:100;not null" json:"email"`
	Birthdate datatypes.Date `gorm:"not null" json:"birthdate"`
}

func (e *Employee) FullName() string {
	return e.Firstname + " " + e.Surname
}
