package catalog

import "errors"

var (
	// ErrServiceNotFound is returned when no active service matches a lookup
	ErrServiceNotFound = errors.New("service not found")

	// ErrDuplicateService is returned when a service name is already taken
	ErrDuplicateService = errors.New("service name already exists")

	// ErrInvalidService is returned when a service fails validation
	ErrInvalidService = errors.New("invalid service definition")
)
