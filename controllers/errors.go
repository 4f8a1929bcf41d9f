package controllers

import (
	"errors"
	"net/http"

	"github.com/restopos/loyalty-pos/loyalty"
	"github.com/restopos/loyalty-pos/orders"
)

// ErrNoPermission is returned on role check failures inside controllers.
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// statusForError maps the core's categorical errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, loyalty.ErrCustomerNotFound),
		errors.Is(err, loyalty.ErrCardNotRegistered),
		errors.Is(err, orders.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, loyalty.ErrCardLocked):
		return http.StatusLocked
	case errors.Is(err, loyalty.ErrInvalidCardID),
		errors.Is(err, loyalty.ErrInvalidEmail),
		errors.Is(err, loyalty.ErrInvalidPhone),
		errors.Is(err, orders.ErrInvalidIndex),
		errors.Is(err, orders.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, loyalty.ErrDuplicateCard),
		errors.Is(err, loyalty.ErrDuplicateEmail),
		errors.Is(err, loyalty.ErrCardCorrupted),
		errors.Is(err, loyalty.ErrCardVersion):
		return http.StatusConflict
	case errors.Is(err, loyalty.ErrBelowMinimum),
		errors.Is(err, loyalty.ErrInsufficientPoints),
		errors.Is(err, loyalty.ErrCardEmpty):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loyalty.ErrCardCapacity):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
