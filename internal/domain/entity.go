package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionRecord is the journal row for one processed session.
type SessionRecord struct {
	ID             string          `gorm:"primaryKey" json:"id"`
	Input          string          `json:"input"`
	ReferencePrice decimal.Decimal `gorm:"type:text" json:"reference_price"`
	LastTradePrice decimal.Decimal `gorm:"type:text" json:"last_trade_price"`
	Orders         int64           `json:"orders"`
	Trades         int64           `json:"trades"`
	Unexecuted     int64           `json:"unexecuted"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
}

// ExecutionKind distinguishes journal rows.
type ExecutionKind string

const (
	KindTrade      ExecutionKind = "TRADE"
	KindUnexecuted ExecutionKind = "UNEXECUTED"
)

// ExecutionRecord is one emitted event, in emission order within its session.
type ExecutionRecord struct {
	ID        uint                `gorm:"primaryKey" json:"-"`
	SessionID string              `gorm:"index:idx_session_emission,priority:1" json:"session_id"`
	Emission  int                 `gorm:"index:idx_session_emission,priority:2" json:"emission"`
	Kind      ExecutionKind       `json:"kind"`
	OrderID   string              `gorm:"index" json:"order_id"`
	Side      string              `json:"side"`
	Quantity  int64               `json:"qty"`
	Price     decimal.NullDecimal `gorm:"type:text" json:"price"` // Invalid for UNEXECUTED rows
}
