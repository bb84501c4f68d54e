package domain

// Availability is derived from stock by UpdateStock. Other writes keep whatever was stored.
type Availability string

const (
	InStock    Availability = "in_stock"
	LowStock   Availability = "low_stock"
	OutOfStock Availability = "out_of_stock"
)

// LowStockThreshold is the first stock level reported as in_stock.
const LowStockThreshold = 20

func AvailabilityFor(stock int) Availability {
	switch {
	case stock <= 0:
		return OutOfStock
	case stock < LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

func ParseAvailability(s string) (Availability, error) {
	switch a := Availability(s); a {
	case InStock, LowStock, OutOfStock:
		return a, nil
	}
	return "", ErrInvalidAvailability
}
