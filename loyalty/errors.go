package loyalty

import "errors"

// Categorical errors. Callers branch with errors.Is; the HTTP layer maps
// each category to a status code.
var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrCardNotRegistered  = errors.New("card not registered")
	ErrCardLocked         = errors.New("card temporarily locked")
	ErrInvalidCardID      = errors.New("invalid card id format")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidPhone       = errors.New("invalid phone format")
	ErrDuplicateCard      = errors.New("card already registered")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrBelowMinimum       = errors.New("points below redeemable minimum")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrCardCorrupted      = errors.New("corrupted card data")
	ErrCardVersion        = errors.New("unsupported card format version")
	ErrCardCapacity       = errors.New("payload exceeds card capacity")
	ErrCardEmpty          = errors.New("card is empty")
)
