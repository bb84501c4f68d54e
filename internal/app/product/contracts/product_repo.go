package contracts

import (
	domain "github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/store"
)

// ProductRepo is the write-side repository for products.
// Methods build statements; they do not run them.
type ProductRepo interface {
	// InsertStmt writes every column of p.
	InsertStmt(p *domain.Product) (store.Statement, error)

	// UpdateStmt rewrites every non-key column of p.
	UpdateStmt(p *domain.Product) (store.Statement, error)

	// UpdateStockStmt writes only stock and availability.
	UpdateStockStmt(p *domain.Product) (store.Statement, error)

	DeleteStmt(id string) (store.Statement, error)
}
