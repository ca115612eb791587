package notify

import "errors"

// Service errors.
var (
	ErrChannelNotFound = errors.New("webhook channel not found")
	ErrNameTaken       = errors.New("webhook channel name already taken")
	ErrServiceNotFound = errors.New("service not found")
)
