// Package testutil holds fixtures shared by the package tests
package testutil

import (
	"bitwise74/taskcamp/db"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/storage"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated and seeded in-memory database. It is limited
// to a single connection so every query sees the same memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(conn))

	return conn
}

// CreateUser stores an active user holding the given permission codenames
func CreateUser(t *testing.T, conn *gorm.DB, email, passwordHash string, codenames ...string) *model.User {
	t.Helper()

	u := &model.User{Email: email, PasswordHash: passwordHash, IsActive: true}
	require.NoError(t, conn.Create(u).Error)

	if len(codenames) > 0 {
		var perms []model.Permission
		require.NoError(t, conn.Where("codename IN ?", codenames).Find(&perms).Error)
		require.Len(t, perms, len(codenames))
		require.NoError(t, conn.Model(u).Association("Permissions").Append(perms))
	}

	return u
}

func CreateProject(t *testing.T, conn *gorm.DB, title string) *model.Project {
	t.Helper()

	p := &model.Project{Title: title, Description: title + " description"}
	require.NoError(t, conn.Create(p).Error)

	return p
}

func CreateTask(t *testing.T, conn *gorm.DB, projectID uint, title string, status model.TaskStatus) *model.Task {
	t.Helper()

	task := &model.Task{ProjectID: projectID, Title: title, Status: status}
	require.NoError(t, conn.Create(task).Error)

	return task
}

func CreateEmployee(t *testing.T, conn *gorm.DB, firstname, surname string) *model.Employee {
	t.Helper()

	e := &model.Employee{
		Firstname: firstname,
		Surname:   surname,
		Email:     firstname + "@example.com",
		Birthdate: datatypes.Date(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, conn.Create(e).Error)

	return e
}

// Mail is a recorded dispatcher call
type Mail struct {
	Kind    string
	To      string
	Link    string
	Context map[string]any
}

// Dispatcher records the mails handed to it instead of queueing them
type Dispatcher struct {
	mu    sync.Mutex
	Mails []Mail
	Err   error
}

func (d *Dispatcher) record(m Mail) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Err != nil {
		return d.Err
	}

	d.Mails = append(d.Mails, m)
	return nil
}

func (d *Dispatcher) SendActivation(_ context.Context, to, link string) error {
	return d.record(Mail{Kind: "activation", To: to, Link: link})
}

func (d *Dispatcher) SendWelcome(_ context.Context, to, tourLink string) error {
	return d.record(Mail{Kind: "welcome", To: to, Link: tourLink})
}

func (d *Dispatcher) SendPasswordReset(_ context.Context, to string, ctx map[string]any) error {
	return d.record(Mail{Kind: "password_reset", To: to, Context: ctx})
}

// Count returns how many mails of kind were recorded
func (d *Dispatcher) Count(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, m := range d.Mails {
		if m.Kind == kind {
			n++
		}
	}

	return n
}

// Last returns the last recorded mail of kind
func (d *Dispatcher) Last(kind string) (Mail, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := len(d.Mails) - 1; i >= 0; i-- {
		if d.Mails[i].Kind == kind {
			return d.Mails[i], true
		}
	}

	return Mail{}, false
}

// Storage wraps another storage and counts deletes per key
type Storage struct {
	Inner storage.Storage

	mu      sync.Mutex
	Deletes map[string]int
}

func (s *Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return s.Inner.Put(ctx, key, body, size, contentType)
}

func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.Inner.Open(ctx, key)
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	if s.Deletes == nil {
		s.Deletes = map[string]int{}
	}
	s.Deletes[key]++
	s.mu.Unlock()

	return s.Inner.Delete(ctx, key)
}
