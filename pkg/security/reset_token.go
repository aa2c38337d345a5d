package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrResetTokenInvalid = errors.New("password reset link is invalid")
	ErrResetTokenExpired = errors.New("password reset link has expired")
)

type resetClaims struct {
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// ResetTokens signs and checks password reset tokens. A token is bound to
// the user's current password hash, so it can only be used once.
type ResetTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewResetTokens(secret string, ttl time.Duration) *ResetTokens {
	return &ResetTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// EncodeUID encodes a user id the way it appears in reset links
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

// DecodeUID reverses EncodeUID
func DecodeUID(s string) (uint, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, ErrResetTokenInvalid
	}

	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrResetTokenInvalid
	}

	return uint(id), nil
}

func (r *ResetTokens) Make(userID uint, passwordHash string) (string, error) {
	now := r.now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		Fingerprint: Fingerprint(passwordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.ttl)),
		},
	})

	s, err := t.SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token, %w", err)
	}

	return s, nil
}

// Check validates token for the given user and current password hash
func (r *ResetTokens) Check(token string, userID uint, passwordHash string) error {
	var claims resetClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(r.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrResetTokenExpired
		}

		return ErrResetTokenInvalid
	}

	if claims.Subject != strconv.FormatUint(uint64(userID), 10) {
		return ErrResetTokenInvalid
	}

	if claims.Fingerprint != Fingerprint(passwordHash) {
		return ErrResetTokenInvalid
	}

	return nil
}
