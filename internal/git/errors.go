package git

import "errors"

// Repository discovery errors
var (
	ErrNotFound = errors.New("no git repository found")
	ErrNoRemote = errors.New("repository has no remote URL configured")
)
