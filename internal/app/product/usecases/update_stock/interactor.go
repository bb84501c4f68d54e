package update_stock

import (
	"context"

	contracts "github.com/murkotick/storefront-catalog/internal/app/product/contracts"
	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	commitplan "github.com/murkotick/storefront-catalog/internal/pkg/committer"
)

type Request struct {
	ProductID string
	Stock     int
}

// Interactor sets the stock level and the availability derived from it.
// Only those two columns are written.
type Interactor struct {
	ProductRepo contracts.ProductRepo
	Committer   contracts.Committer
	ReadModel   contracts.ReadModel
}

func NewInteractor(repo contracts.ProductRepo, committer contracts.Committer, readModel contracts.ReadModel) *Interactor {
	return &Interactor{
		ProductRepo: repo,
		Committer:   committer,
		ReadModel:   readModel,
	}
}

func (it *Interactor) Execute(ctx context.Context, req Request) (*domain.Product, error) {
	if req.Stock < 0 {
		return nil, domain.ErrNegativeStock
	}

	product, err := it.ReadModel.FindOne(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := product.SetStock(req.Stock); err != nil {
		return nil, err
	}

	st, err := it.ProductRepo.UpdateStockStmt(product)
	if err != nil {
		return nil, err
	}

	plan := commitplan.NewPlan()
	plan.Add(st)
	if err := it.Committer.Apply(ctx, plan); err != nil {
		return nil, err
	}
	return product, nil
}
