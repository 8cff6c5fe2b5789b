package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order_matching/internal/domain"
)

func setupTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := NewJournal(filepath.Join(t.TempDir(), "data", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_CommitAndRead(t *testing.T) {
	j := setupTestJournal(t)
	id := uuid.NewString()

	w := j.Begin(id)
	w.OnTrade(domain.TradeEvent{OrderID: "S1", Side: domain.SideBuy, Quantity: 50, Price: decimal.RequireFromString("101.00")})
	w.OnTrade(domain.TradeEvent{OrderID: "S2", Side: domain.SideSell, Quantity: 50, Price: decimal.RequireFromString("101.00")})
	w.OnUnexecuted(domain.UnexecutedEvent{OrderID: "S1", Side: domain.SideBuy, Quantity: 50})
	assert.Equal(t, 3, w.Pending())

	now := time.Now().UTC()
	require.NoError(t, w.Commit(domain.SessionRecord{
		ID:             id,
		Input:          "input.txt",
		ReferencePrice: decimal.RequireFromString("100"),
		LastTradePrice: decimal.RequireFromString("101"),
		Orders:         2,
		Trades:         1,
		Unexecuted:     50,
		StartedAt:      now,
		FinishedAt:     now,
	}))
	assert.Zero(t, w.Pending())

	rec, err := j.GetSession(id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "input.txt", rec.Input)
	assert.True(t, rec.LastTradePrice.Equal(decimal.RequireFromString("101")))
	assert.Equal(t, int64(50), rec.Unexecuted)

	rows, err := j.ListExecutions(id)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 0, rows[0].Emission)
	assert.Equal(t, domain.KindTrade, rows[0].Kind)
	assert.Equal(t, "BUY", rows[0].Side)
	assert.True(t, rows[0].Price.Valid)
	assert.Equal(t, "101.00", rows[0].Price.Decimal.StringFixed(2))

	assert.Equal(t, "S2", rows[1].OrderID)
	assert.Equal(t, "SELL", rows[1].Side)

	assert.Equal(t, domain.KindUnexecuted, rows[2].Kind)
	assert.False(t, rows[2].Price.Valid)
	assert.Equal(t, int64(50), rows[2].Quantity)
}

func TestJournal_SessionsAreIsolated(t *testing.T) {
	j := setupTestJournal(t)

	for _, id := range []string{"a", "b"} {
		w := j.Begin(id)
		w.OnUnexecuted(domain.UnexecutedEvent{OrderID: "X-" + id, Side: domain.SideSell, Quantity: 1})
		require.NoError(t, w.Commit(domain.SessionRecord{ID: id}))
	}

	rows, err := j.ListExecutions("a")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "X-a", rows[0].OrderID)
}

func TestJournal_GetSessionNotFound(t *testing.T) {
	j := setupTestJournal(t)

	rec, err := j.GetSession("missing")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestJournal_CommitRejects(t *testing.T) {
	j := setupTestJournal(t)

	w := j.Begin("one")
	assert.Error(t, w.Commit(domain.SessionRecord{ID: "two"}))

	require.NoError(t, w.Commit(domain.SessionRecord{ID: "one"}))
	// Duplicate primary key rolls the whole transaction back.
	w2 := j.Begin("one")
	w2.OnUnexecuted(domain.UnexecutedEvent{OrderID: "Z", Side: domain.SideBuy, Quantity: 1})
	assert.Error(t, w2.Commit(domain.SessionRecord{ID: "one"}))

	rows, err := j.ListExecutions("one")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
