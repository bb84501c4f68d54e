// Package httpapi holds the JSON error envelope shared by every HTTP route.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/create_product"
	"github.com/murkotick/storefront-catalog/internal/schema"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

const (
	TypeValidation         = "validation_error"
	TypeNotFound           = "not_found"
	TypeStatement          = "statement_error"
	TypeServiceUnavailable = "service_unavailable"
	TypeInternal           = "internal_error"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

// Add appends one field error.
func (v *ValidationErrors) Add(field, code, message string) {
	v.Errors = append(v.Errors, ValidationError{Field: field, Code: code, Message: message})
}

// OrNil returns v as an error only when it holds at least one field error.
func (v *ValidationErrors) OrNil() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Payload is the body of an error response.
type Payload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type Response struct {
	Error Payload `json:"error"`
}

func NewValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func InvalidRequestError() error {
	return NewValidationError("request", "invalid_request", "invalid request body")
}

// ErrorHandlingMiddleware renders the last error recorded on the context when
// the handler did not write a response itself.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := MapError(lastErr.Err)
		c.AbortWithStatusJSON(status, Response{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// ClassifyError returns the error type that MapError would report.
func ClassifyError(err error) string {
	_, payload := MapError(err)
	return payload.Type
}

func MapError(err error) (int, Payload) {
	if err == nil {
		return http.StatusInternalServerError, Payload{
			Type:    TypeInternal,
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, Payload{
			Type:    TypeValidation,
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, Payload{
			Type:    TypeValidation,
			Message: "validation error",
			Errors:  []ValidationError{domainValidationError(err)},
		}
	}

	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, Payload{
			Type:    TypeNotFound,
			Message: "product not found",
		}
	case errors.Is(err, statement.ErrParamCountMismatch),
		errors.Is(err, statement.ErrUnknownColumn),
		errors.Is(err, statement.ErrMissingWhere),
		errors.Is(err, statement.ErrBatchSelect),
		errors.Is(err, schema.ErrSchemaNotFound):
		return http.StatusInternalServerError, Payload{
			Type:    TypeStatement,
			Message: "statement error",
		}
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, Payload{
			Type:    TypeServiceUnavailable,
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, Payload{
			Type:    TypeInternal,
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	return domain.IsValidation(err) ||
		errors.Is(err, statement.ErrNothingToUpdate) ||
		errors.Is(err, create_product.ErrNoProducts) ||
		errors.Is(err, store.ErrInvalidPageState)
}

func domainValidationError(err error) ValidationError {
	field, code := "request", "invalid_request"
	switch {
	case errors.Is(err, domain.ErrEmptyProductName):
		field, code = "name", "required"
	case errors.Is(err, domain.ErrProductNameTooLong):
		field, code = "name", "too_long"
	case errors.Is(err, domain.ErrMissingField):
		field, code = fieldSuffix(err), "required"
	case errors.Is(err, domain.ErrNonPositivePrice):
		field, code = "price", "positive"
	case errors.Is(err, domain.ErrInvalidCurrency):
		field, code = "currency", "invalid_enum"
	case errors.Is(err, domain.ErrNegativeStock):
		field, code = "stock", "min"
	case errors.Is(err, domain.ErrNegativeSeq):
		field, code = "seq", "min"
	case errors.Is(err, domain.ErrInvalidEAN):
		field, code = "ean", "numeric"
	case errors.Is(err, domain.ErrInvalidAvailability):
		field, code = "availability", "invalid_enum"
	case errors.Is(err, domain.ErrEmptyPatch), errors.Is(err, statement.ErrNothingToUpdate):
		code = "empty_patch"
	case errors.Is(err, create_product.ErrNoProducts):
		code = "empty_batch"
	case errors.Is(err, store.ErrInvalidPageState):
		field, code = "pagingState", "invalid"
	}
	return ValidationError{Field: field, Code: code, Message: err.Error()}
}

// fieldSuffix extracts the field name from errors wrapped as "<sentinel>: <field>".
func fieldSuffix(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && i+2 < len(msg) {
		return msg[i+2:]
	}
	return "request"
}
