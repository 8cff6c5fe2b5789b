package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"order_matching/internal/domain"
)

// TradeLog collects execution reports as output lines in emission order.
// It implements domain.ExecutionSink.
type TradeLog struct {
	lines  []string
	trades int
}

// NewTradeLog creates an empty log.
func NewTradeLog() *TradeLog {
	return &TradeLog{}
}

// OnTrade appends a purchase or sale line.
func (l *TradeLog) OnTrade(ev domain.TradeEvent) {
	verb := "purchased"
	if ev.Side == domain.SideSell {
		verb = "sold"
	} else {
		l.trades++
	}
	l.lines = append(l.lines, fmt.Sprintf("order %s %d shares %s at price %s",
		ev.OrderID, ev.Quantity, verb, domain.FormatPrice(ev.Price)))
}

// OnUnexecuted appends an unexecuted line.
func (l *TradeLog) OnUnexecuted(ev domain.UnexecutedEvent) {
	l.lines = append(l.lines, fmt.Sprintf("order %s %d shares unexecuted", ev.OrderID, ev.Quantity))
}

// Lines returns the collected lines.
func (l *TradeLog) Lines() []string {
	return l.lines
}

// Trades returns the number of trades (one per buy/sell pair).
func (l *TradeLog) Trades() int {
	return l.trades
}

// WriteTo writes one line per event to w.
func (l *TradeLog) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, line := range l.lines {
		n, err := io.WriteString(w, line+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Save writes the log to path, creating parent directories as needed.
func (l *TradeLog) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := l.WriteTo(bw); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output file: %w", err)
	}
	return f.Close()
}
