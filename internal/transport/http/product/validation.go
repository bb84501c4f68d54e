package product

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/transport/http/httpapi"
)

type createProductRequest struct {
	InternalID       string      `json:"internalId"`
	Seq              *int64      `json:"seq"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	ShortDescription string      `json:"shortDescription"`
	Brand            string      `json:"brand"`
	Category         string      `json:"category"`
	Price            json.Number `json:"price"`
	Currency         string      `json:"currency"`
	Stock            *int        `json:"stock"`
	EAN              flexString  `json:"ean"`
	Color            string      `json:"color"`
	Size             string      `json:"size"`
	Availability     string      `json:"availability"`
	Image            string      `json:"image"`
}

type updateProductRequest struct {
	InternalID       *string      `json:"internalId"`
	Seq              *int64       `json:"seq"`
	Name             *string      `json:"name"`
	Description      *string      `json:"description"`
	ShortDescription *string      `json:"shortDescription"`
	Brand            *string      `json:"brand"`
	Category         *string      `json:"category"`
	Price            *json.Number `json:"price"`
	Currency         *string      `json:"currency"`
	Stock            *int         `json:"stock"`
	EAN              *flexString  `json:"ean"`
	Color            *string      `json:"color"`
	Size             *string      `json:"size"`
	Availability     *string      `json:"availability"`
	Image            *string      `json:"image"`
}

type updateStockRequest struct {
	Quantity *int `json:"quantity"`
}

func (r createProductRequest) validate(v *httpapi.ValidationErrors, prefix string) {
	required := []struct {
		field string
		value string
	}{
		{"name", r.Name},
		{"description", r.Description},
		{"shortDescription", r.ShortDescription},
		{"brand", r.Brand},
		{"category", r.Category},
		{"currency", r.Currency},
		{"color", r.Color},
		{"size", r.Size},
		{"image", r.Image},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			v.Add(prefix+f.field, "required", f.field+" is required")
		}
	}

	if r.Price == "" {
		v.Add(prefix+"price", "required", "price is required")
	} else {
		validatePrice(v, prefix, r.Price)
	}
	if r.Currency != "" {
		validateCurrency(v, prefix, r.Currency)
	}

	switch {
	case r.Stock == nil:
		v.Add(prefix+"stock", "required", "stock is required")
	case *r.Stock <= 0:
		v.Add(prefix+"stock", "positive", "stock must be a positive integer")
	}

	if strings.TrimSpace(string(r.EAN)) == "" {
		v.Add(prefix+"ean", "required", "ean is required")
	} else {
		validateEAN(v, prefix, string(r.EAN))
	}
	if r.Availability != "" {
		validateAvailability(v, prefix, r.Availability)
	}
	if r.Seq != nil && *r.Seq < 0 {
		v.Add(prefix+"seq", "min", "seq cannot be negative")
	}
}

func (r updateProductRequest) validate(v *httpapi.ValidationErrors) {
	text := []struct {
		field string
		value *string
	}{
		{"internalId", r.InternalID},
		{"name", r.Name},
		{"description", r.Description},
		{"shortDescription", r.ShortDescription},
		{"brand", r.Brand},
		{"category", r.Category},
		{"color", r.Color},
		{"size", r.Size},
		{"image", r.Image},
	}
	empty := r.Seq == nil && r.Price == nil && r.Currency == nil && r.Stock == nil &&
		r.EAN == nil && r.Availability == nil
	for _, f := range text {
		if f.value == nil {
			continue
		}
		empty = false
		if strings.TrimSpace(*f.value) == "" {
			v.Add(f.field, "required", f.field+" cannot be blank")
		}
	}
	if empty {
		v.Add("request", "empty_patch", "at least one field must be provided")
		return
	}

	if r.Price != nil {
		validatePrice(v, "", *r.Price)
	}
	if r.Currency != nil {
		validateCurrency(v, "", *r.Currency)
	}
	if r.Stock != nil && *r.Stock < 0 {
		v.Add("stock", "min", "stock cannot be negative")
	}
	if r.EAN != nil {
		validateEAN(v, "", string(*r.EAN))
	}
	if r.Availability != nil {
		validateAvailability(v, "", *r.Availability)
	}
	if r.Seq != nil && *r.Seq < 0 {
		v.Add("seq", "min", "seq cannot be negative")
	}
}

func (r updateStockRequest) validate(v *httpapi.ValidationErrors) {
	switch {
	case r.Quantity == nil:
		v.Add("quantity", "required", "quantity is required")
	case *r.Quantity < 0:
		v.Add("quantity", "min", "quantity cannot be negative")
	}
}

func validatePrice(v *httpapi.ValidationErrors, prefix string, n json.Number) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		v.Add(prefix+"price", "invalid", "price must be a decimal number")
		return
	}
	if !d.IsPositive() {
		v.Add(prefix+"price", "positive", "price must be greater than zero")
	}
}

func validateCurrency(v *httpapi.ValidationErrors, prefix, currency string) {
	if _, err := domain.ParseCurrency(currency); err != nil {
		v.Add(prefix+"currency", "invalid_enum", err.Error())
	}
}

func validateAvailability(v *httpapi.ValidationErrors, prefix, availability string) {
	if _, err := domain.ParseAvailability(availability); err != nil {
		v.Add(prefix+"availability", "invalid_enum", err.Error())
	}
}

func validateEAN(v *httpapi.ValidationErrors, prefix, ean string) {
	ean = strings.TrimSpace(ean)
	if ean == "" || strings.IndexFunc(ean, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		v.Add(prefix+"ean", "numeric", "ean must contain only digits")
	}
}

func validateProductID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return httpapi.NewValidationError("id", "invalid_uuid", "id must be a valid uuid")
	}
	return nil
}

// parseOptionalInt returns def when value is blank.
func parseOptionalInt(value string, def int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def, nil
	}
	return strconv.Atoi(trimmed)
}

func parseOptionalDecimal(value string) (*decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func itemPrefix(i int) string {
	return fmt.Sprintf("[%d].", i)
}
