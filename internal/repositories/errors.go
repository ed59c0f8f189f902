package repositories

import "errors"

// Sentinel errors returned by repositories so callers can branch with
// errors.Is instead of matching message strings.
var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint (username, email)
	// rejects a create.
	ErrDuplicate = errors.New("record already exists")

	// ErrInsufficientStock is returned when a reservation asks for more
	// units than the material currently has.
	ErrInsufficientStock = errors.New("insufficient stock")
)
