package domain

import (
	"fmt"

	"order_matching/pkg/safe"
)

// SideLedger tracks quantity flow for one side of the book.
// This is the core structure for the conservation invariant.
type SideLedger struct {
	Side           Side   `json:"side"`
	AdmittedQty    int64  `json:"admitted"`
	TradedQty      int64  `json:"traded"`
	UnexecutedQty  int64  `json:"unexecuted"`
	AdmittedOrders int64  `json:"admitted_orders"`
	LastSeq        uint64 `json:"last_seq"` // Last sequence that modified this side
}

// Outstanding returns the quantity that must still be resting in the book.
func (l *SideLedger) Outstanding() int64 {
	return safe.SafeSub(safe.SafeSub(l.AdmittedQty, l.TradedQty), l.UnexecutedQty)
}

// Admit records a new order. Panics on non-positive quantity or overflow.
func (l *SideLedger) Admit(qty int64, seq uint64) {
	if qty <= 0 {
		panic(fmt.Sprintf("LEDGER_ADMIT_NON_POSITIVE: %s qty %d", l.Side, qty))
	}
	l.AdmittedQty = safe.SafeAdd(l.AdmittedQty, qty)
	l.AdmittedOrders++
	l.LastSeq = seq
}

// Trade records executed quantity. Panics if more than outstanding.
func (l *SideLedger) Trade(qty int64, seq uint64) {
	if qty > l.Outstanding() {
		panic(fmt.Sprintf("LEDGER_TRADE_EXCEEDS_OUTSTANDING: %s trade %d, outstanding %d",
			l.Side, qty, l.Outstanding()))
	}
	l.TradedQty = safe.SafeAdd(l.TradedQty, qty)
	l.LastSeq = seq
}

// Unexecuted records quantity reported at liquidation.
func (l *SideLedger) Unexecuted(qty int64) {
	if qty > l.Outstanding() {
		panic(fmt.Sprintf("LEDGER_UNEXECUTED_EXCEEDS_OUTSTANDING: %s unexecuted %d, outstanding %d",
			l.Side, qty, l.Outstanding()))
	}
	l.UnexecutedQty = safe.SafeAdd(l.UnexecutedQty, qty)
}

// VerifyInvariant checks that the side's books balance against the resting quantity.
func (l *SideLedger) VerifyInvariant(resting int64) {
	// Invariant 1: no counter goes negative
	if l.AdmittedQty < 0 || l.TradedQty < 0 || l.UnexecutedQty < 0 {
		panic(fmt.Sprintf("LEDGER_INVARIANT_NEGATIVE: %+v", *l))
	}

	// Invariant 2: admitted = traded + unexecuted + resting
	if l.Outstanding() != resting {
		panic(fmt.Sprintf("LEDGER_INVARIANT_CONSERVATION: %s admitted=%d traded=%d unexecuted=%d resting=%d",
			l.Side, l.AdmittedQty, l.TradedQty, l.UnexecutedQty, resting))
	}
}

// Ledger holds both sides.
type Ledger struct {
	Buy  SideLedger `json:"buy"`
	Sell SideLedger `json:"sell"`
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		Buy:  SideLedger{Side: SideBuy},
		Sell: SideLedger{Side: SideSell},
	}
}

// Get returns the ledger for a side.
func (l *Ledger) Get(side Side) *SideLedger {
	if side == SideBuy {
		return &l.Buy
	}
	return &l.Sell
}

// RecordTrade applies one trade event.
func (l *Ledger) RecordTrade(ev TradeEvent) {
	l.Get(ev.Side).Trade(ev.Quantity, ev.Sequence)
}

// RecordUnexecuted applies one unexecuted event.
func (l *Ledger) RecordUnexecuted(ev UnexecutedEvent) {
	l.Get(ev.Side).Unexecuted(ev.Quantity)
}

// VerifyAll checks both sides and that every trade had a counterparty.
func (l *Ledger) VerifyAll(restingBuy, restingSell int64) {
	l.Buy.VerifyInvariant(restingBuy)
	l.Sell.VerifyInvariant(restingSell)

	// Invariant 3: bought quantity equals sold quantity
	if l.Buy.TradedQty != l.Sell.TradedQty {
		panic(fmt.Sprintf("LEDGER_INVARIANT_UNPAIRED_TRADE: bought=%d sold=%d",
			l.Buy.TradedQty, l.Sell.TradedQty))
	}
}

// Snapshot returns a copy of both sides (for state dump).
func (l *Ledger) Snapshot() Ledger {
	return *l
}
