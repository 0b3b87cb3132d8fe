package data

import "github.com/pkg/errors"

// error kinds; wrap them with context and test with errors.Is
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrMutationDisabled   = errors.New("mutation disabled")
)
