// Package cart keeps a shopper's cart in memory for the lifetime of a client session.
package cart

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingProductID = errors.New("cart: product id is required")
	ErrInvalidPrice     = errors.New("cart: price must be a decimal number")
)

// Item is one cart line. Quantity is always at least 1.
type Item struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Currency  string
	Quantity  int
}

// Subtotal is price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	order []string
	items map[string]*Item
}

func New() *Cart {
	return &Cart{items: make(map[string]*Item)}
}

// Add puts one unit of the product in the cart, incrementing an existing line.
func (c *Cart) Add(productID, name string, price decimal.Decimal, currency string) error {
	if productID == "" {
		return ErrMissingProductID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if it, ok := c.items[productID]; ok {
		it.Quantity++
		return nil
	}
	c.items[productID] = &Item{
		ProductID: productID,
		Name:      name,
		Price:     price,
		Currency:  currency,
		Quantity:  1,
	}
	c.order = append(c.order, productID)
	return nil
}

// Remove drops the line for productID. Unknown ids are ignored.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(productID)
}

// UpdateQuantity sets the quantity of an existing line. n <= 0 removes it.
// It reports whether the product was in the cart.
func (c *Cart) UpdateQuantity(productID string, n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[productID]
	if !ok {
		return false
	}
	if n <= 0 {
		c.remove(productID)
		return true
	}
	it.Quantity = n
	return true
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.items = make(map[string]*Item)
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.items[id])
	}
	return out
}

// Total sums every line's subtotal. Currencies are not converted.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) remove(productID string) {
	if _, ok := c.items[productID]; !ok {
		return
	}
	delete(c.items, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
