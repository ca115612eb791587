package orgs

import "errors"

// Service errors.
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrNameTaken            = errors.New("organization name already taken")
	ErrInvalidStatus        = errors.New("invalid organization status")
)
