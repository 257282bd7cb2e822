package catalog

import "errors"

var (
	// ErrProductNotFound is returned when no product exists for the id.
	ErrProductNotFound = errors.New("product not found")
)
