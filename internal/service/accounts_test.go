package service

import (
	"bitwise74/taskcamp/internal/cache"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/repository"
	"bitwise74/taskcamp/internal/testutil"
	"bitwise74/taskcamp/pkg/security"
	"context"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type AccountsTestSuite struct {
	suite.Suite
	db       *gorm.DB
	ctx      context.Context
	mail     *testutil.Dispatcher
	store    cache.Store
	accounts *Accounts
}

func (s *AccountsTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.ctx = context.Background()
	s.mail = &testutil.Dispatcher{}
	s.store = cache.NewMemory(time.Minute)
	s.accounts = &Accounts{
		Users:         repository.NewUsers(s.db),
		Cache:         s.store,
		Argon:         security.NewFast(),
		Mail:          s.mail,
		Reset:         security.NewResetTokens("test-secret", time.Hour),
		ActivationTTL: time.Hour,
		BaseURL:       "http://camp.test",
	}
}

func TestAccountsTestSuite(t *testing.T) {
	suite.Run(t, new(AccountsTestSuite))
}

// register returns the hash and token from the mailed activation link
func (s *AccountsTestSuite) register(email string) (*model.User, string, string) {
	user, err := s.accounts.Register(s.ctx, Registration{Email: email, Password1: "correct horse", Password2: "correct horse"})
	s.Require().NoError(err)

	m, ok := s.mail.Last("activation")
	s.Require().True(ok)

	u, err := url.Parse(m.Link)
	s.Require().NoError(err)
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	s.Require().Len(parts, 4)

	return user, parts[2], parts[3]
}

func (s *AccountsTestSuite) TestRegisterSideEffects() {
	user, hash, token := s.register("new@example.com")

	s.False(user.IsActive)
	s.Len(hash, 32)
	s.Len(token, 32)
	s.Equal(1, s.mail.Count("activation"))

	loaded, err := s.accounts.Users.Get(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Len(loaded.Groups, 1)
	s.Equal(model.PublicGroup, loaded.Groups[0].Name)

	var raw string
	s.Require().NoError(s.store.Get(hash, &raw))
	s.Contains(raw, token)
}

func (s *AccountsTestSuite) TestRegisterRejectsBadInput() {
	cases := map[string]Registration{
		"email":     {Email: "nope", Password1: "correct horse", Password2: "correct horse"},
		"password1": {Email: "a@example.com", Password1: "short", Password2: "short"},
		"password2": {Email: "a@example.com", Password1: "correct horse", Password2: "other horse"},
	}

	for field, r := range cases {
		_, err := s.accounts.Register(s.ctx, r)

		var fe *FormError
		s.Require().ErrorAs(err, &fe, field)
		s.Contains(fe.Fields, field)
	}

	s.register("taken@example.com")
	_, err := s.accounts.Register(s.ctx, Registration{Email: "taken@example.com", Password1: "correct horse", Password2: "correct horse"})

	var fe *FormError
	s.Require().ErrorAs(err, &fe)
	s.Contains(fe.Fields, "email")
	s.Equal(1, s.mail.Count("activation"))
}

func (s *AccountsTestSuite) TestActivateOnce() {
	user, hash, token := s.register("a@example.com")

	got, err := s.accounts.Activate(s.ctx, hash, token)
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)
	s.True(got.IsActive)

	welcome, ok := s.mail.Last("welcome")
	s.Require().True(ok)
	s.Equal("http://camp.test/", welcome.Link)

	_, err = s.accounts.Activate(s.ctx, hash, token)
	s.ErrorIs(err, ErrActivationInvalid)
	s.Equal(1, s.mail.Count("welcome"))
}

func (s *AccountsTestSuite) TestActivateBadTokenKeepsEntry() {
	_, hash, token := s.register("a@example.com")

	_, err := s.accounts.Activate(s.ctx, "0123456789abcdef0123456789abcdef", token)
	s.ErrorIs(err, ErrActivationInvalid)

	_, err = s.accounts.Activate(s.ctx, hash, "ffffffffffffffffffffffffffffffff")
	s.ErrorIs(err, ErrActivationInvalid)

	_, err = s.accounts.Activate(s.ctx, hash, token)
	s.NoError(err, "a wrong token must not consume the entry")
}

func (s *AccountsTestSuite) TestActivateMissingUserKeepsEntry() {
	user, hash, token := s.register("a@example.com")
	s.Require().NoError(s.db.Exec("DELETE FROM users WHERE id = ?", user.ID).Error)

	_, err := s.accounts.Activate(s.ctx, hash, token)
	s.ErrorIs(err, ErrActivationInvalid)

	var raw string
	s.NoError(s.store.Get(hash, &raw))
}

func (s *AccountsTestSuite) TestActivateRace() {
	_, hash, token := s.register("a@example.com")

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.accounts.Activate(s.ctx, hash, token); err == nil {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), winners.Load())
	s.Equal(1, s.mail.Count("welcome"))
}

func (s *AccountsTestSuite) TestAuthenticate() {
	_, hash, token := s.register("a@example.com")

	_, err := s.accounts.Authenticate(s.ctx, "a@example.com", "correct horse")
	s.ErrorIs(err, ErrInactive)

	_, err = s.accounts.Activate(s.ctx, hash, token)
	s.Require().NoError(err)

	_, err = s.accounts.Authenticate(s.ctx, "a@example.com", "wrong horse")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.accounts.Authenticate(s.ctx, "ghost@example.com", "correct horse")
	s.ErrorIs(err, ErrInvalidCredentials)

	user, err := s.accounts.Authenticate(s.ctx, "a@EXAMPLE.com", "correct horse")
	s.Require().NoError(err)
	s.NotNil(user.LastLogin)
}

func (s *AccountsTestSuite) TestPasswordReset() {
	user := testutil.CreateUser(s.T(), s.db, "a@example.com", s.hash("old password"))

	s.Require().NoError(s.accounts.RequestPasswordReset(s.ctx, "ghost@example.com"))
	s.Zero(s.mail.Count("password_reset"))

	s.Require().NoError(s.accounts.RequestPasswordReset(s.ctx, "a@example.com"))
	m, ok := s.mail.Last("password_reset")
	s.Require().True(ok)

	uid, _ := m.Context["uid"].(string)
	token, _ := m.Context["token"].(string)
	s.Contains(m.Context["reset_link"], "/accounts/password_reset/confirm/"+uid+"/"+token+"/")

	err := s.accounts.ConfirmPasswordReset(s.ctx, uid, token, "new password", "other password")
	var fe *FormError
	s.Require().ErrorAs(err, &fe)

	s.Require().NoError(s.accounts.ConfirmPasswordReset(s.ctx, uid, token, "new password", "new password"))

	_, err = s.accounts.Authenticate(s.ctx, user.Email, "new password")
	s.Require().NoError(err)

	err = s.accounts.ConfirmPasswordReset(s.ctx, uid, token, "third password", "third password")
	s.ErrorIs(err, security.ErrResetTokenInvalid, "the link is bound to the old password")
}

func (s *AccountsTestSuite) hash(p string) string {
	h, err := s.accounts.Argon.Hash(p)
	s.Require().NoError(err)

	return h
}

func (s *AccountsTestSuite) TestAccountCleanup() {
	users := s.accounts.Users

	stale := &model.User{Email: "stale@example.com", PasswordHash: "x"}
	s.Require().NoError(users.Create(s.ctx, stale, model.PublicGroup))
	fresh := &model.User{Email: "fresh@example.com", PasswordHash: "x"}
	s.Require().NoError(users.Create(s.ctx, fresh))
	active := testutil.CreateUser(s.T(), s.db, "active@example.com", "x")

	old := time.Now().UTC().Add(-10 * 24 * time.Hour)
	s.Require().NoError(s.db.Model(&model.User{}).Where("id IN ?", []uint{stale.ID, active.ID}).Update("date_joined", old).Error)

	cleanup := NewAccountCleanup(users, 7*24*time.Hour)
	n, err := cleanup.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	_, err = users.Get(s.ctx, stale.ID)
	s.ErrorIs(err, repository.ErrNotFound)
	_, err = users.Get(s.ctx, fresh.ID)
	s.NoError(err)
	_, err = users.Get(s.ctx, active.ID)
	s.NoError(err)

	c := cron.New()
	_, err = cleanup.Schedule(c, "@daily")
	s.NoError(err)
	_, err = cleanup.Schedule(c, "not a schedule")
	s.Error(err)
}
