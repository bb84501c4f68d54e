package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

const maxNameLength = 255

// Product is the single persisted entity of the catalog.
type Product struct {
	ID               string
	InternalID       string
	Seq              int64
	Name             string
	Description      string
	ShortDescription string
	Brand            string
	Category         string
	Price            decimal.Decimal
	Currency         Currency
	Stock            int
	EAN              string
	Color            string
	Size             string
	Availability     Availability
	Image            string
	CreatedAt        time.Time
}

// Draft carries the caller-supplied attributes of a new product.
// An empty Availability is derived from Stock; an empty InternalID defaults to the id.
type Draft struct {
	InternalID       string
	Seq              int64
	Name             string
	Description      string
	ShortDescription string
	Brand            string
	Category         string
	Price            decimal.Decimal
	Currency         string
	Stock            int
	EAN              string
	Color            string
	Size             string
	Availability     string
	Image            string
}

// NewProduct validates d and builds a product created at now.
func NewProduct(id string, d Draft, now time.Time) (*Product, error) {
	name := strings.TrimSpace(d.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if d.Seq < 0 {
		return nil, ErrNegativeSeq
	}

	required := []struct {
		field string
		value string
	}{
		{"description", d.Description},
		{"shortDescription", d.ShortDescription},
		{"brand", d.Brand},
		{"category", d.Category},
		{"color", d.Color},
		{"size", d.Size},
		{"image", d.Image},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, r.field)
		}
	}

	price, err := NewMoney(d.Price, d.Currency)
	if err != nil {
		return nil, err
	}
	if d.Stock < 0 {
		return nil, ErrNegativeStock
	}
	if err := validateEAN(d.EAN); err != nil {
		return nil, err
	}

	availability := AvailabilityFor(d.Stock)
	if d.Availability != "" {
		if availability, err = ParseAvailability(d.Availability); err != nil {
			return nil, err
		}
	}

	internalID := strings.TrimSpace(d.InternalID)
	if internalID == "" {
		internalID = id
	}

	return &Product{
		ID:               id,
		InternalID:       internalID,
		Seq:              d.Seq,
		Name:             name,
		Description:      strings.TrimSpace(d.Description),
		ShortDescription: strings.TrimSpace(d.ShortDescription),
		Brand:            strings.TrimSpace(d.Brand),
		Category:         strings.TrimSpace(d.Category),
		Price:            price.Amount,
		Currency:         price.Currency,
		Stock:            d.Stock,
		EAN:              strings.TrimSpace(d.EAN),
		Color:            strings.TrimSpace(d.Color),
		Size:             strings.TrimSpace(d.Size),
		Availability:     availability,
		Image:            strings.TrimSpace(d.Image),
		CreatedAt:        now.UTC(),
	}, nil
}

// SetStock replaces the stock level and recomputes availability.
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	p.Stock = stock
	p.Availability = AvailabilityFor(stock)
	return nil
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	InternalID       *string
	Seq              *int64
	Name             *string
	Description      *string
	ShortDescription *string
	Brand            *string
	Category         *string
	Price            *decimal.Decimal
	Currency         *string
	Stock            *int
	EAN              *string
	Color            *string
	Size             *string
	Availability     *string
	Image            *string
}

func (p Patch) IsEmpty() bool {
	return p.InternalID == nil && p.Seq == nil && p.Name == nil && p.Description == nil &&
		p.ShortDescription == nil && p.Brand == nil && p.Category == nil && p.Price == nil &&
		p.Currency == nil && p.Stock == nil && p.EAN == nil && p.Color == nil &&
		p.Size == nil && p.Availability == nil && p.Image == nil
}

// Apply merges patch into p. Availability is only changed when the patch
// names it explicitly; a new Stock alone does not recompute it.
// p is left untouched when any patched value is invalid.
func (p *Product) Apply(patch Patch) error {
	if patch.IsEmpty() {
		return ErrEmptyPatch
	}

	next := *p

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateName(name); err != nil {
			return err
		}
		next.Name = name
	}
	if patch.Seq != nil {
		if *patch.Seq < 0 {
			return ErrNegativeSeq
		}
		next.Seq = *patch.Seq
	}

	text := []struct {
		field string
		src   *string
		dst   *string
	}{
		{"internalId", patch.InternalID, &next.InternalID},
		{"description", patch.Description, &next.Description},
		{"shortDescription", patch.ShortDescription, &next.ShortDescription},
		{"brand", patch.Brand, &next.Brand},
		{"category", patch.Category, &next.Category},
		{"color", patch.Color, &next.Color},
		{"size", patch.Size, &next.Size},
		{"image", patch.Image, &next.Image},
	}
	for _, t := range text {
		if t.src == nil {
			continue
		}
		v := strings.TrimSpace(*t.src)
		if v == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, t.field)
		}
		*t.dst = v
	}

	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return err
		}
		next.Price = *patch.Price
	}
	if patch.Currency != nil {
		c, err := ParseCurrency(*patch.Currency)
		if err != nil {
			return err
		}
		next.Currency = c
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return ErrNegativeStock
		}
		next.Stock = *patch.Stock
	}
	if patch.EAN != nil {
		if err := validateEAN(*patch.EAN); err != nil {
			return err
		}
		next.EAN = strings.TrimSpace(*patch.EAN)
	}
	if patch.Availability != nil {
		a, err := ParseAvailability(*patch.Availability)
		if err != nil {
			return err
		}
		next.Availability = a
	}

	*p = next
	return nil
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyProductName
	}
	if len([]rune(name)) > maxNameLength {
		return ErrProductNameTooLong
	}
	return nil
}

func validateEAN(ean string) error {
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return fmt.Errorf("%w: ean", ErrMissingField)
	}
	for _, r := range ean {
		if !unicode.IsDigit(r) {
			return ErrInvalidEAN
		}
	}
	return nil
}
