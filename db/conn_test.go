package db

import (
	"bitwise74/taskcamp/config"
	"bitwise74/taskcamp/internal/model"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateSeedsPermissions(t *testing.T) {
	db, err := New(config.Database{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	// Seeding twice must not duplicate anything
	require.NoError(t, Seed(db))

	var count int64
	require.NoError(t, db.Model(&model.Permission{}).Count(&count).Error)
	require.Equal(t, int64(len(model.AllPermissions())), count)

	var group model.Group
	require.NoError(t, db.Preload("Permissions").Where("name = ?", model.PublicGroup).First(&group).Error)
	require.Len(t, group.Permissions, len(model.PublicCodenames()))

	codenames := make([]string, 0, len(group.Permissions))
	for _, p := range group.Permissions {
		codenames = append(codenames, p.Codename)
	}
	require.Contains(t, codenames, "add_comment")
	require.Contains(t, codenames, "view_task")
	require.NotContains(t, codenames, "delete_project")
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(config.Database{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
}
