package repository

import (
	"bitwise74/taskcamp/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("a user with that email already exists")

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Get loads a user with the groups and permissions needed for permission
// checks
func (u *Users) Get(ctx context.Context, id uint) (*model.User, error) {
	var user model.User

	err := u.db.WithContext(ctx).
		Preload("Permissions").
		Preload("Groups.Permissions").
		First(&user, id).
		Error
	if err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

func (u *Users) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

// Create stores a new user and adds them to the named groups that exist
func (u *Users) Create(ctx context.Context, user *model.User, groups ...string) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("email = ?", user.Email).Count(&n).Error; err != nil {
			return err
		}

		if n > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}

			return fmt.Errorf("failed to create user, %w", err)
		}

		if len(groups) == 0 {
			return nil
		}

		var found []model.Group
		if err := tx.Where("name IN ?", groups).Find(&found).Error; err != nil {
			return err
		}

		if len(found) == 0 {
			return nil
		}

		return tx.Model(user).Association("Groups").Append(found)
	})
}

// Activate marks the user active
func (u *Users) Activate(ctx context.Context, id uint) error {
	res := u.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("is_active", true)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (u *Users) SetPassword(ctx context.Context, id uint, hash string) error {
	return u.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).
		Error
}

func (u *Users) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	return u.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("last_login", at).
		Error
}

// UpdateProfile saves the editable profile fields of user
func (u *Users) UpdateProfile(ctx context.Context, user *model.User) error {
	return u.db.WithContext(ctx).
		Model(user).
		Select("first_name", "last_name", "birthdate").
		Updates(user).
		Error
}

// DeleteInactiveBefore removes accounts that were never activated and
// joined before the cutoff. It returns the number of removed accounts.
func (u *Users) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var ids []uint

	err := u.db.WithContext(ctx).
		Model(&model.User{}).
		Where("is_active = ? AND last_login IS NULL AND date_joined < ?", false, cutoff).
		Pluck("id", &ids).
		Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}

	var deleted int64

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"user_groups", "user_permissions"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE user_id IN ?", ids).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id IN ?", ids).Delete(&model.User{})
		deleted = res.RowsAffected

		return res.Error
	})

	return deleted, err
}
