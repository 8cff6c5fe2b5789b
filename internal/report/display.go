package report

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"order_matching/internal/domain"
)

const (
	displayHeader = "Buy                       Sell"
	displayRule   = "------------------------------------------"
	buyColumn     = 25
)

// Display renders book snapshots as a two-column table.
type Display struct {
	w io.Writer
}

// NewDisplay creates a display writing to w.
func NewDisplay(w io.Writer) *Display {
	return &Display{w: w}
}

// Render writes snap to the underlying writer.
func (d *Display) Render(snap domain.BookSnapshot) error {
	_, err := io.WriteString(d.w, FormatSnapshot(snap))
	return err
}

// Observe adapts Render to a domain.SnapshotObserver.
func (d *Display) Observe(stage domain.SnapshotStage, snap domain.BookSnapshot) {
	if err := d.Render(snap); err != nil {
		slog.Warn("Failed to render book", slog.String("stage", string(stage)), slog.Any("error", err))
	}
}

// FormatSnapshot renders snap: last trade price, header, rule, then one
// row per depth level with the buy cell left-aligned in a fixed column.
func FormatSnapshot(snap domain.BookSnapshot) string {
	var sb strings.Builder
	sb.WriteString("Last trading price: ")
	sb.WriteString(domain.FormatPrice(snap.LastTradePrice))
	sb.WriteByte('\n')
	sb.WriteString(displayHeader)
	sb.WriteByte('\n')
	sb.WriteString(displayRule)
	sb.WriteByte('\n')

	for i := 0; i < snap.Depth(); i++ {
		var buy, sell string
		if i < len(snap.Bids) {
			buy = cell(snap.Bids[i])
		}
		if i < len(snap.Asks) {
			sell = cell(snap.Asks[i])
		}
		fmt.Fprintf(&sb, "%-*s%s\n", buyColumn, buy, sell)
	}
	return sb.String()
}

func cell(o domain.RestingOrder) string {
	return o.ID + " " + o.Price.String() + " " + strconv.FormatInt(o.Quantity, 10)
}
