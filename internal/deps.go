// Package internal wires the shared dependencies handed to every handler
package internal

import (
	"bitwise74/taskcamp/config"
	"bitwise74/taskcamp/internal/cache"
	"bitwise74/taskcamp/internal/queue"
	"bitwise74/taskcamp/internal/report"
	"bitwise74/taskcamp/internal/repository"
	"bitwise74/taskcamp/internal/service"
	"bitwise74/taskcamp/internal/storage"
	"bitwise74/taskcamp/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Argon     *security.ArgonHash
	Storage   storage.Storage
	Cache     cache.Store
	Mail      queue.Dispatcher
	Accounts  *service.Accounts
	Dashboard *report.Dashboard

	Users     *repository.Users
	Projects  *repository.Projects
	Tasks     *repository.Tasks
	Employees *repository.Employees
	Documents *repository.Documents
}

// NewDeps builds the repositories and services on top of the given
// infrastructure
func NewDeps(cfg *config.Config, db *gorm.DB, store storage.Storage, c cache.Store, mail queue.Dispatcher, argon *security.ArgonHash) *Deps {
	users := repository.NewUsers(db)

	return &Deps{
		Config:    cfg,
		DB:        db,
		Argon:     argon,
		Storage:   store,
		Cache:     c,
		Mail:      mail,
		Dashboard: report.NewDashboard(db),
		Users:     users,
		Projects:  repository.NewProjects(db),
		Tasks:     repository.NewTasks(db),
		Employees: repository.NewEmployees(db),
		Documents: repository.NewDocuments(db, store),
		Accounts: &service.Accounts{
			Users:         users,
			Cache:         c,
			Argon:         argon,
			Mail:          mail,
			Reset:         security.NewResetTokens(cfg.App.Secret, cfg.Accounts.PasswordResetTTL),
			ActivationTTL: cfg.Accounts.ActivationTTL,
			BaseURL:       cfg.Host.BaseURL(),
		},
	}
}
