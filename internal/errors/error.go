// Package errors provides the error taxonomy for product operations.
package errors

import "errors"

var (
	ErrInvalidPageRequest   = errors.New("invalid page request")
	ErrProductAlreadyExists = errors.New("product already exists")
	ErrProductNotFound      = errors.New("product not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrProductCreation      = errors.New("product creation failed")
	ErrProductUpdate        = errors.New("product update failed")
	ErrProductDeletion      = errors.New("product deletion failed")

	// ErrStorage wraps driver and transport failures, including deadlines.
	ErrStorage = errors.New("storage failure")
)
