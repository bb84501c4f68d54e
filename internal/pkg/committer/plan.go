package committer

import "github.com/murkotick/storefront-catalog/internal/store"

// Plan collects the statements of one logical write.
type Plan struct {
	stmts []store.Statement
}

func NewPlan() *Plan {
	return &Plan{
		stmts: make([]store.Statement, 0),
	}
}

// Add appends st. Statements with an empty query are ignored.
func (p *Plan) Add(st store.Statement) {
	if st.Query == "" {
		return
	}
	p.stmts = append(p.stmts, st)
}

func (p *Plan) IsEmpty() bool {
	return len(p.stmts) == 0
}

func (p *Plan) Len() int {
	return len(p.stmts)
}

func (p *Plan) Statements() []store.Statement {
	return p.stmts
}
