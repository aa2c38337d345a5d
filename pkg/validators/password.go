package validators

import "errors"

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordEmpty    = errors.New("no password provided")
	ErrPasswordMismatch = errors.New("the two password fields didn't match")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < 8 {
		return ErrPasswordTooShort
	}

	if len(p) > 255 {
		return ErrPasswordTooLong
	}

	return nil
}

// PasswordPairValidator checks a password and its confirmation
func PasswordPairValidator(p1, p2 string) error {
	if err := PasswordValidator(p1); err != nil {
		return err
	}

	if p1 != p2 {
		return ErrPasswordMismatch
	}

	return nil
}
