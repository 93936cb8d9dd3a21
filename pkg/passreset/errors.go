package passreset

import "errors"

var (
	ErrTokenReused        = errors.New("reset token has already been used")
	ErrInvalidToken       = errors.New("reset token is invalid or expired")
	ErrSamePassword       = errors.New("new password must differ from the current password")
	ErrInvalidCredentials = errors.New("current password is incorrect")
	ErrWeakPassword       = errors.New("password does not meet minimum length policy")
)
