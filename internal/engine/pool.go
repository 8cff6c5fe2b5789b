package engine

import (
	"fmt"

	"github.com/tidwall/btree"

	"order_matching/internal/domain"
	"order_matching/pkg/safe"
)

// Pool is the set of resting orders for one side, kept in priority order.
// The tree is keyed on (price, sequence, id), none of which change while an
// order rests, so reducing quantity in place never reorders the pool.
type Pool struct {
	side domain.Side
	tree *btree.BTreeG[*domain.Order]
}

// NewPool creates an empty pool ranked by the side's priority policy.
func NewPool(side domain.Side) *Pool {
	less := domain.RankingFor(side)
	return &Pool{
		side: side,
		// Single writer (the sequencer), so the tree's own locking is skipped.
		tree: btree.NewBTreeGOptions[*domain.Order](less, btree.Options{NoLocks: true}),
	}
}

// Side returns the side this pool holds.
func (p *Pool) Side() domain.Side {
	return p.side
}

// Insert places o at its priority position.
func (p *Pool) Insert(o *domain.Order) {
	if o.Side != p.side {
		panic(fmt.Sprintf("POOL_SIDE_MISMATCH: %s order %s into %s pool", o.Side, o.ID, p.side))
	}
	if prev, replaced := p.tree.Set(o); replaced {
		panic(fmt.Sprintf("POOL_DUPLICATE_KEY: %s collides with resting %s", o, prev))
	}
}

// Best returns the highest-priority order without removing it.
func (p *Pool) Best() (*domain.Order, bool) {
	return p.tree.Min()
}

// PopBest removes and returns the highest-priority order.
func (p *Pool) PopBest() (*domain.Order, bool) {
	return p.tree.PopMin()
}

// Len returns the number of resting orders.
func (p *Pool) Len() int {
	return p.tree.Len()
}

// Ascend calls fn for each order best-first until fn returns false.
// fn must not mutate the pool.
func (p *Pool) Ascend(fn func(o *domain.Order) bool) {
	p.tree.Scan(fn)
}

// Quantity returns the total resting quantity.
func (p *Pool) Quantity() int64 {
	var total int64
	p.tree.Scan(func(o *domain.Order) bool {
		total = safe.SafeAdd(total, o.Quantity())
		return true
	})
	return total
}
