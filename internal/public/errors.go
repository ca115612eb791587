package public

import "errors"

// Service errors.
var (
	ErrOrganizationNotFound = errors.New("organization not found")
)
