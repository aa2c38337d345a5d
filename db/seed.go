package db

import (
	"bitwise74/taskcamp/internal/model"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seed makes sure every permission exists and that the public group
// carries the permissions given to self-registered users. It is safe
// to run more than once.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		perms := model.AllPermissions()

		err := tx.
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "codename"}}, DoNothing: true}).
			Create(&perms).
			Error
		if err != nil {
			return fmt.Errorf("failed to seed permissions, %w", err)
		}

		group := model.Group{Name: model.PublicGroup}
		if err := tx.Where("name = ?", group.Name).FirstOrCreate(&group).Error; err != nil {
			return fmt.Errorf("failed to seed public group, %w", err)
		}

		var public []model.Permission
		if err := tx.Where("codename IN ?", model.PublicCodenames()).Find(&public).Error; err != nil {
			return fmt.Errorf("failed to load public permissions, %w", err)
		}

		if err := tx.Model(&group).Association("Permissions").Append(public); err != nil {
			return fmt.Errorf("failed to grant public permissions, %w", err)
		}

		return nil
	})
}
