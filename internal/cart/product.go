package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/murkotick/storefront-catalog/internal/client"
)

// AddProduct adds one unit of a product fetched from the catalog API.
func (c *Cart) AddProduct(p client.Product) error {
	price, err := decimal.NewFromString(p.Price.String())
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPrice, p.Price)
	}
	return c.Add(p.ID, p.Name, price, p.Currency)
}
