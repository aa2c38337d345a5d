package service

import (
	"bitwise74/taskcamp/internal/repository"
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AccountCleanup deletes accounts that were registered but never activated
// within the given age
type AccountCleanup struct {
	users *repository.Users
	after time.Duration
	now   func() time.Time
}

func NewAccountCleanup(users *repository.Users, after time.Duration) *AccountCleanup {
	return &AccountCleanup{users: users, after: after, now: time.Now}
}

func (a *AccountCleanup) Run(ctx context.Context) (int64, error) {
	cutoff := a.now().UTC().Add(-a.after)

	n, err := a.users.DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		zap.L().Info("Deleted stale inactive accounts", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}

	return n, nil
}

// Schedule registers the cleanup on c with a cron spec like "@daily"
func (a *AccountCleanup) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	zap.L().Debug("Account cleanup attached", zap.String("schedule", spec), zap.Duration("after", a.after))

	return c.AddFunc(spec, func() {
		if _, err := a.Run(context.Background()); err != nil {
			zap.L().Error("Failed to clean up inactive accounts", zap.Error(err))
		}
	})
}
