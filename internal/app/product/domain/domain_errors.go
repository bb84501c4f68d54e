package domain

import "errors"

var (
	// ErrProductNotFound indicates that no product matches the given identifier.
	ErrProductNotFound = errors.New("product not found")
)

// Validation errors. Wrapped with the offending field where it helps.
var (
	ErrEmptyProductName   = errors.New("product name cannot be empty")
	ErrProductNameTooLong = errors.New("product name exceeds maximum length of 255 characters")

	// ErrMissingField is returned for any other required text attribute left blank.
	ErrMissingField = errors.New("required field is empty")

	ErrNonPositivePrice    = errors.New("price must be greater than zero")
	ErrInvalidCurrency     = errors.New("currency must be one of USD, EUR, GBP, INR")
	ErrNegativeStock       = errors.New("stock cannot be negative")
	ErrNegativeSeq         = errors.New("sequence number cannot be negative")
	ErrInvalidEAN          = errors.New("ean must contain only digits")
	ErrInvalidAvailability = errors.New("availability must be one of in_stock, low_stock, out_of_stock")
	ErrEmptyPatch          = errors.New("patch does not change any field")
)

// IsValidation reports whether err is one of the validation errors above.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyProductName,
		ErrProductNameTooLong,
		ErrMissingField,
		ErrNonPositivePrice,
		ErrInvalidCurrency,
		ErrNegativeStock,
		ErrNegativeSeq,
		ErrInvalidEAN,
		ErrInvalidAvailability,
		ErrEmptyPatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
