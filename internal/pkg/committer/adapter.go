package committer

import (
	"context"
	"fmt"

	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store"
)

// Adapter runs a plan on the store. A single statement executes on its own;
// anything larger goes out as one batch.
type Adapter struct {
	exec    store.Executor
	builder *statement.Builder
}

func NewAdapter(exec store.Executor, builder *statement.Builder) *Adapter {
	return &Adapter{exec: exec, builder: builder}
}

func (a *Adapter) Apply(ctx context.Context, plan *Plan) error {
	if plan == nil || plan.IsEmpty() {
		return nil
	}

	if a.exec == nil {
		return fmt.Errorf("committer: executor is nil")
	}

	stmts, err := a.builder.PrepareBatch(plan.Statements())
	if err != nil {
		return err
	}

	if len(stmts) == 1 {
		_, err := a.exec.Execute(ctx, stmts[0].Query, stmts[0].Params, store.QueryOptions{})
		return err
	}
	return a.exec.Batch(ctx, stmts)
}
