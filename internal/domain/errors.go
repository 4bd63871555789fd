package domain

import "errors"

// Validation failures raised synchronously by the order core. None are
// transient; the caller surfaces them to the operator as-is.
var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidDiscount = errors.New("invalid discount")
	ErrEmptyCart       = errors.New("empty cart")
	ErrMissingCustomer = errors.New("missing customer")
	ErrNoInstruments   = errors.New("no payment instruments")
	ErrIndexOutOfRange = errors.New("instrument index out of range")
	ErrProductNotFound = errors.New("product not found")
)
