package m_product

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/store"
)

// Entity adapts a product to the statement builder.
type Entity struct {
	P *domain.Product
}

func (Entity) Table() string { return TableName }

func (e Entity) Values() map[string]any {
	return Values(e.P)
}

// Values maps a product onto column values. Prices are stored as doubles.
func Values(p *domain.Product) map[string]any {
	return map[string]any{
		ColID:               p.ID,
		ColInternalID:       p.InternalID,
		ColSeq:              p.Seq,
		ColName:             p.Name,
		ColDescription:      p.Description,
		ColShortDescription: p.ShortDescription,
		ColBrand:            p.Brand,
		ColCategory:         p.Category,
		ColPrice:            p.Price.InexactFloat64(),
		ColCurrency:         string(p.Currency),
		ColStock:            p.Stock,
		ColEAN:              p.EAN,
		ColColor:            p.Color,
		ColSize:             p.Size,
		ColAvailability:     string(p.Availability),
		ColImage:            p.Image,
		ColCreatedAt:        p.CreatedAt.UTC(),
	}
}

// FromRow decodes a row produced by any store driver.
// Missing columns decode to zero values; mistyped ones are an error.
func FromRow(row store.Row) (*domain.Product, error) {
	r := reader{row: row}

	p := &domain.Product{
		ID:               r.string(ColID),
		InternalID:       r.string(ColInternalID),
		Seq:              r.int64(ColSeq),
		Name:             r.string(ColName),
		Description:      r.string(ColDescription),
		ShortDescription: r.string(ColShortDescription),
		Brand:            r.string(ColBrand),
		Category:         r.string(ColCategory),
		Price:            r.decimal(ColPrice),
		Currency:         domain.Currency(r.string(ColCurrency)),
		Stock:            int(r.int64(ColStock)),
		EAN:              r.string(ColEAN),
		Color:            r.string(ColColor),
		Size:             r.string(ColSize),
		Availability:     domain.Availability(r.string(ColAvailability)),
		Image:            r.string(ColImage),
		CreatedAt:        r.time(ColCreatedAt),
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

// FromRows decodes every row, stopping at the first error.
func FromRows(rows []store.Row) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := FromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type reader struct {
	row store.Row
	err error
}

func (r *reader) fail(col string, v any) {
	if r.err == nil {
		r.err = fmt.Errorf("m_product: column %s: unexpected type %T", col, v)
	}
}

func (r *reader) string(col string) string {
	switch v := r.row[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		r.fail(col, v)
		return ""
	}
}

func (r *reader) int64(col string) int64 {
	switch v := r.row[col].(type) {
	case nil:
		return 0
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		r.fail(col, v)
		return 0
	}
}

func (r *reader) decimal(col string) decimal.Decimal {
	switch v := r.row[col].(type) {
	case nil:
		return decimal.Zero
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			r.fail(col, v)
			return decimal.Zero
		}
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			r.fail(col, v)
		}
		return d
	case decimal.Decimal:
		return v
	default:
		r.fail(col, v)
		return decimal.Zero
	}
}

func (r *reader) time(col string) time.Time {
	switch v := r.row[col].(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return v.UTC()
	default:
		r.fail(col, v)
		return time.Time{}
	}
}
