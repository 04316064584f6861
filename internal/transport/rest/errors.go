package rest

import (
	"errors"
	"net/http"

	perrors "github.com/JobsonDeveloper/Product-Microservice/internal/errors"
)

const msgInternal = "Internal server error!"

// mapError translates a service error into a status code and a client message.
// Purchase shares the 404 used by every other lookup.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, perrors.ErrInvalidPageRequest):
		return http.StatusBadRequest, "Invalid page request!"
	case errors.Is(err, perrors.ErrProductAlreadyExists):
		return http.StatusConflict, "The product already registered!"
	case errors.Is(err, perrors.ErrProductNotFound):
		return http.StatusNotFound, "Product not found!"
	case errors.Is(err, perrors.ErrInsufficientStock):
		return http.StatusConflict, "Insufficient products in stock!"
	case errors.Is(err, perrors.ErrProductCreation):
		return http.StatusInternalServerError, "It was not possible to create the product!"
	case errors.Is(err, perrors.ErrProductUpdate):
		return http.StatusInternalServerError, "It was not possible to update the product!"
	case errors.Is(err, perrors.ErrProductDeletion):
		return http.StatusInternalServerError, "It was not possible to delete the product!"
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
