package cmd

import (
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/repository"
	"bitwise74/taskcamp/internal/testutil"
	"bitwise74/taskcamp/pkg/security"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateSuperuser(t *testing.T) {
	conn := testutil.NewDB(t)
	users := repository.NewUsers(conn)
	ctx := context.Background()

	require.NoError(t, createSuperuser(ctx, users, security.NewFast(), "root@example.com", "correct horse"))

	u, err := users.ByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	require.True(t, u.IsActive)
	require.True(t, u.IsSuperuser)
	require.True(t, u.HasPerm(model.Codename(model.ActionDelete, model.EntityProject)))

	err = createSuperuser(ctx, users, security.NewFast(), "root@example.com", "correct horse")
	require.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "worker", "migrate", "createsuperuser"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, c.Name())
	}
}
