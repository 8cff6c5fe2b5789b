package domain

// Ranking reports whether a has strictly higher priority than b within one pool.
// Implementations only read the immutable (Price, Sequence, ID) key, so reducing
// quantity never changes relative rank.
type Ranking func(a, b *Order) bool

// BidRanksAbove orders the buy pool: market first, then higher price, then earlier sequence.
func BidRanksAbove(a, b *Order) bool {
	return ranksAbove(a, b, true)
}

// AskRanksAbove orders the sell pool: market first, then lower price, then earlier sequence.
func AskRanksAbove(a, b *Order) bool {
	return ranksAbove(a, b, false)
}

// RankingFor returns the pool ranking for side.
func RankingFor(side Side) Ranking {
	if side == SideBuy {
		return BidRanksAbove
	}
	return AskRanksAbove
}

func ranksAbove(a, b *Order, higherIsBetter bool) bool {
	am, bm := a.Price.IsMarket(), b.Price.IsMarket()
	if am != bm {
		return am
	}
	if !am {
		av, _ := a.Price.Value()
		bv, _ := b.Price.Value()
		if c := av.Cmp(bv); c != 0 {
			if higherIsBetter {
				return c > 0
			}
			return c < 0
		}
	}
	if a.Sequence != b.Sequence {
		return a.Sequence < b.Sequence
	}
	// Sequences are unique from a correct driver. Ids keep the order deterministic otherwise.
	return a.ID < b.ID
}
