package handlers

import (
	"errors"
	"log"
	"net/http"

	"famledger/internal/repository"
	"famledger/internal/service"
	"famledger/internal/validation"
)

// respondServiceError maps service errors onto HTTP statuses. Anything not
// recognised is a storage or programming failure and stays a 500 so domain
// errors never mask it.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *validation.Error
	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, errorBody(validationErr.Error()))
	case errors.Is(err, service.ErrInvalidPassword):
		respondJSON(w, http.StatusUnauthorized, errorBody(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorBody(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrRejoinDenied),
		errors.Is(err, service.ErrLastAdmin),
		errors.Is(err, repository.ErrDuplicate):
		respondJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		log.Printf("Internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
	}
}
