package create_product

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	contracts "github.com/murkotick/storefront-catalog/internal/app/product/contracts"
	"github.com/murkotick/storefront-catalog/internal/app/product/domain"
	"github.com/murkotick/storefront-catalog/internal/pkg/clock"
	commitplan "github.com/murkotick/storefront-catalog/internal/pkg/committer"
	"github.com/murkotick/storefront-catalog/internal/pkg/idgen"
)

// ErrNoProducts is returned by ExecuteMany for an empty request list.
var ErrNoProducts = errors.New("no products to create")

// Request is the application-level create-product request.
// Seq 0 asks for a generated sequence number; empty Availability is derived from Stock.
type Request struct {
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

func (r Request) draft() domain.Draft {
	return domain.Draft{
		InternalID:       r.InternalID,
		Seq:              r.Seq,
		Name:             r.Name,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		Brand:            r.Brand,
		Category:         r.Category,
		Price:            r.Price,
		Currency:         r.Currency,
		Stock:            r.Stock,
		EAN:              r.EAN,
		Color:            r.Color,
		Size:             r.Size,
		Availability:     r.Availability,
		Image:            r.Image,
	}
}

type Interactor struct {
	ProductRepo contracts.ProductRepo
	Committer   contracts.Committer
	Clock       clock.Clock
	IDs         idgen.Generator
}

func NewInteractor(repo contracts.ProductRepo, committer contracts.Committer, clk clock.Clock, ids idgen.Generator) *Interactor {
	return &Interactor{
		ProductRepo: repo,
		Committer:   committer,
		Clock:       clk,
		IDs:         ids,
	}
}

// Execute creates one product and returns its id.
func (it *Interactor) Execute(ctx context.Context, req Request) (string, error) {
	ids, err := it.ExecuteMany(ctx, []Request{req})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// ExecuteMany validates every request first, then writes all products in one commit.
// Nothing is written when any request is invalid.
func (it *Interactor) ExecuteMany(ctx context.Context, reqs []Request) ([]string, error) {
	if len(reqs) == 0 {
		return nil, ErrNoProducts
	}

	now := it.Clock.Now()
	plan := commitplan.NewPlan()
	ids := make([]string, 0, len(reqs))

	for i, req := range reqs {
		d := req.draft()
		if d.Seq == 0 {
			d.Seq = it.IDs.NextSeq()
		}

		product, err := domain.NewProduct(it.IDs.NewID(), d, now)
		if err != nil {
			if len(reqs) > 1 {
				return nil, fmt.Errorf("product %d: %w", i, err)
			}
			return nil, err
		}

		st, err := it.ProductRepo.InsertStmt(product)
		if err != nil {
			return nil, err
		}
		plan.Add(st)
		ids = append(ids, product.ID)
	}

	if err := it.Committer.Apply(ctx, plan); err != nil {
		return nil, err
	}
	return ids, nil
}
