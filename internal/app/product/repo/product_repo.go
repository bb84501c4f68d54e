package repo

import (
	domain "github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/models/m_product"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

// ProductRepo builds product write statements but never runs them.
type ProductRepo struct {
	builder *statement.Builder
}

func NewProductRepo(builder *statement.Builder) *ProductRepo {
	return &ProductRepo{builder: builder}
}

func (r *ProductRepo) InsertStmt(p *domain.Product) (store.Statement, error) {
	return r.builder.Insert(m_product.Entity{P: p})
}

// UpdateStmt writes the whole entity back, keyed by id.
func (r *ProductRepo) UpdateStmt(p *domain.Product) (store.Statement, error) {
	return r.builder.Update(m_product.Entity{P: p}, statement.Eq(m_product.ColID, p.ID))
}

func (r *ProductRepo) UpdateStockStmt(p *domain.Product) (store.Statement, error) {
	return r.builder.UpdateFields(m_product.TableName,
		[]statement.Cond{
			statement.Eq(m_product.ColStock, p.Stock),
			statement.Eq(m_product.ColAvailability, string(p.Availability)),
		},
		statement.Eq(m_product.ColID, p.ID),
	)
}

func (r *ProductRepo) DeleteStmt(id string) (store.Statement, error) {
	return r.builder.Delete(m_product.TableName, statement.Eq(m_product.ColID, id))
}
