package identity

import "errors"

// Service errors.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrEmailTaken           = errors.New("email already taken")
	ErrNotPending           = errors.New("membership is not pending")
	ErrOwnRole              = errors.New("cannot change own role")
	ErrInvalidRole          = errors.New("invalid role")
)
