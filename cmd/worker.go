package cmd

import (
	"bitwise74/taskcamp/db"
	"bitwise74/taskcamp/internal/mail"
	"bitwise74/taskcamp/internal/queue"
	"bitwise74/taskcamp/internal/repository"
	"bitwise74/taskcamp/internal/service"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Sends queued mail and runs scheduled cleanups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}

		conn, err := db.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database, %w", err)
		}

		renderer, err := mail.NewRenderer()
		if err != nil {
			return err
		}

		scheduler := cron.New()
		cleanup := service.NewAccountCleanup(repository.NewUsers(conn), cfg.Accounts.CleanupAfter)
		if _, err := cleanup.Schedule(scheduler, cfg.Accounts.CleanupSchedule); err != nil {
			return fmt.Errorf("failed to schedule account cleanup, %w", err)
		}

		scheduler.Start()
		defer scheduler.Stop()

		zap.L().Info("Mail worker starting",
			zap.String("queue", cfg.Queue.Name),
			zap.Int("concurrency", cfg.Queue.Concurrency),
			zap.Int("maxRetry", cfg.Queue.MaxRetry),
			zap.Duration("retryDelay", cfg.Queue.RetryDelay))

		w := queue.NewWorker(cfg.Queue, queue.NewHandler(renderer, mail.NewSMTP(cfg.Mail)))
		return w.Run()
	},
}
