// Package service holds the account flows that span the database, the
// cache and the mail queue
package service

import (
	"bitwise74/taskcamp/internal/cache"
	"bitwise74/taskcamp/internal/model"
	"bitwise74/taskcamp/internal/queue"
	"bitwise74/taskcamp/internal/repository"
	"bitwise74/taskcamp/pkg/security"
	"bitwise74/taskcamp/pkg/validators"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrActivationInvalid  = errors.New("activation link is invalid or has expired")
	ErrInvalidCredentials = errors.New("please enter a correct email and password")
	ErrInactive           = errors.New("this account is inactive")
)

// FormError carries per field messages for a rejected form
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}

	return "invalid form, " + strings.Join(parts, "; ")
}

func fieldError(field string, err error) *FormError {
	return &FormError{Fields: map[string]string{field: err.Error()}}
}

type activationEntry struct {
	Token  string `json:"token"`
	UserID uint   `json:"user_id"`
}

// Accounts implements registration, activation, login and password resets
type Accounts struct {
	Users         *repository.Users
	Cache         cache.Store
	Argon         *security.ArgonHash
	Mail          queue.Dispatcher
	Reset         *security.ResetTokens
	ActivationTTL time.Duration
	BaseURL       string // Scheme and host prepended to mailed links
}

type Registration struct {
	Email     string
	Password1 string
	Password2 string
}

// Register creates an inactive account in the public group and queues the
// activation mail
func (a *Accounts) Register(ctx context.Context, r Registration) (*model.User, error) {
	email := validators.NormalizeEmail(r.Email)
	if err := validators.EmailValidator(email); err != nil {
		return nil, fieldError("email", err)
	}

	if err := validators.PasswordValidator(r.Password1); err != nil {
		return nil, fieldError("password1", err)
	}

	if err := validators.PasswordPairValidator(r.Password1, r.Password2); err != nil {
		return nil, fieldError("password2", err)
	}

	hash, err := a.Argon.Hash(r.Password1)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	user := &model.User{Email: email, PasswordHash: hash}
	if err := a.Users.Create(ctx, user, model.PublicGroup); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fieldError("email", err)
		}

		return nil, err
	}

	key, token, err := security.NewActivationPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate activation pair, %w", err)
	}

	entry, err := json.Marshal(activationEntry{Token: token, UserID: user.ID})
	if err != nil {
		return nil, err
	}

	if err := a.Cache.Set(key, string(entry), a.ActivationTTL); err != nil {
		return nil, fmt.Errorf("failed to store activation entry, %w", err)
	}

	link := fmt.Sprintf("%s/accounts/activate/%s/%s/", a.BaseURL, key, token)
	if err := a.Mail.SendActivation(ctx, user.Email, link); err != nil {
		return nil, fmt.Errorf("failed to queue activation mail, %w", err)
	}

	return user, nil
}

// Activate consumes the activation entry stored under hash. Of several
// concurrent calls with the same valid pair exactly one succeeds. A wrong
// token or a missing user leaves the entry in place.
func (a *Accounts) Activate(ctx context.Context, hash, token string) (*model.User, error) {
	var raw string
	if err := a.Cache.Get(hash, &raw); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrActivationInvalid
		}

		return nil, fmt.Errorf("failed to read activation entry, %w", err)
	}

	var entry activationEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, ErrActivationInvalid
	}

	if subtle.ConstantTimeCompare([]byte(entry.Token), []byte(token)) != 1 {
		return nil, ErrActivationInvalid
	}

	user, err := a.Users.Get(ctx, entry.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivationInvalid
		}

		return nil, err
	}

	claimed, err := a.Cache.CompareAndDelete(hash, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to claim activation entry, %w", err)
	}

	if !claimed {
		return nil, ErrActivationInvalid
	}

	if err := a.Users.Activate(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to activate user, %w", err)
	}
	user.IsActive = true

	if err := a.Mail.SendWelcome(ctx, user.Email, a.BaseURL+"/"); err != nil {
		zap.L().Error("Failed to queue welcome mail", zap.Uint("userID", user.ID), zap.Error(err))
	}

	return user, nil
}

// Authenticate checks the credentials of an active account and records
// the login time
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := a.Users.ByEmail(ctx, validators.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	ok, err := a.Argon.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactive
	}

	now := time.Now().UTC()
	if err := a.Users.TouchLogin(ctx, user.ID, now); err != nil {
		zap.L().Warn("Failed to record last login", zap.Uint("userID", user.ID), zap.Error(err))
	}
	user.LastLogin = &now

	return user, nil
}

// RequestPasswordReset queues a reset mail for an active account. Unknown
// addresses are silently ignored.
func (a *Accounts) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := a.Users.ByEmail(ctx, validators.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}

		return err
	}

	if !user.IsActive {
		return nil
	}

	uid := security.EncodeUID(user.ID)

	token, err := a.Reset.Make(user.ID, user.PasswordHash)
	if err != nil {
		return err
	}

	return a.Mail.SendPasswordReset(ctx, user.Email, map[string]any{
		"email":      user.Email,
		"domain":     a.BaseURL,
		"uid":        uid,
		"token":      token,
		"reset_link": fmt.Sprintf("%s/accounts/password_reset/confirm/%s/%s/", a.BaseURL, uid, token),
	})
}

// CheckResetLink returns the user a reset link was issued for
func (a *Accounts) CheckResetLink(ctx context.Context, uid, token string) (*model.User, error) {
	id, err := security.DecodeUID(uid)
	if err != nil {
		return nil, err
	}

	user, err := a.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, security.ErrResetTokenInvalid
		}

		return nil, err
	}

	if err := a.Reset.Check(token, user.ID, user.PasswordHash); err != nil {
		return nil, err
	}

	return user, nil
}

// ConfirmPasswordReset sets a new password. The link stops working once
// the password changed.
func (a *Accounts) ConfirmPasswordReset(ctx context.Context, uid, token, password1, password2 string) error {
	user, err := a.CheckResetLink(ctx, uid, token)
	if err != nil {
		return err
	}

	if err := validators.PasswordValidator(password1); err != nil {
		return fieldError("new_password1", err)
	}

	if err := validators.PasswordPairValidator(password1, password2); err != nil {
		return fieldError("new_password2", err)
	}

	hash, err := a.Argon.Hash(password1)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	return a.Users.SetPassword(ctx, user.ID, hash)
}
