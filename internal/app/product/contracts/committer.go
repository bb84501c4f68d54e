package contracts

import (
	"context"

	commitplan "github.com/murkotick/storefront-catalog/internal/pkg/committer"
)

// Committer applies the statements collected in a plan.
// More than one statement goes to the store as a single batch.
type Committer interface {
	Apply(ctx context.Context, plan *commitplan.Plan) error
}
