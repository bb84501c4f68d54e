package remove_product

import (
	"context"

	contracts "github.com/murkotick/storefront-catalog/internal/app/product/contracts"
	commitplan "github.com/murkotick/storefront-catalog/internal/pkg/committer"
)

// Interactor deletes a product by id. Deleting an absent id succeeds.
type Interactor struct {
	ProductRepo contracts.ProductRepo
	Committer   contracts.Committer
}

func NewInteractor(repo contracts.ProductRepo, committer contracts.Committer) *Interactor {
	return &Interactor{ProductRepo: repo, Committer: committer}
}

func (it *Interactor) Execute(ctx context.Context, productID string) error {
	st, err := it.ProductRepo.DeleteStmt(productID)
	if err != nil {
		return err
	}

	plan := commitplan.NewPlan()
	plan.Add(st)
	return it.Committer.Apply(ctx, plan)
}
