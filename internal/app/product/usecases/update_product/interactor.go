package update_product

import (
	"context"

	contracts "github.com/murkotick/storefront-catalog/internal/app/product/contracts"
	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	commitplan "github.com/murkotick/storefront-catalog/internal/pkg/committer"
)

// Request is a partial update of one product.
type Request struct {
	ProductID string
	Patch     domain.Patch
}

// Interactor reads the stored product, merges the patch and writes the whole
// entity back. Concurrent updates race; the last write wins.
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
	product, err := it.ReadModel.FindOne(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := product.Apply(req.Patch); err != nil {
		return nil, err
	}

	st, err := it.ProductRepo.UpdateStmt(product)
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
