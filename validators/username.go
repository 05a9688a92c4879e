package validators

import "errors"

var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
	ErrUsernameTooLong  = errors.New("username is too long")
	ErrUsernameEmpty    = errors.New("no username provided")
)

func UsernameValidator(u string) error {
	if u == "" {
		return ErrUsernameEmpty
	}

	if len(u) < 3 {
		return ErrUsernameTooShort
	}

	if len(u) > 64 {
		return ErrUsernameTooLong
	}

	return nil
}
