package user

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")

	errMissingPersonal   = errors.New("missing required personal information")
	errMissingAddress    = errors.New("missing required address information")
	errMissingCredential = errors.New("email and password are required")
	errEmailTaken        = errors.New("email address is already in use")
	errPhoneTaken        = errors.New("phone number is already in use")
	errBadCredentials    = errors.New("invalid email or password")
	errWrongPassword     = errors.New("current password is incorrect")
	errWeakPassword      = errors.New("password must be at least 8 characters")
	errAdminNotFound     = errors.New("admin not found")
	errUserHasOrders     = errors.New("user has orders and cannot be deleted")
)
