package session

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order_matching/internal/domain"
	"order_matching/internal/infra"
)

const sampleSession = `100.00

S1 B 100 101.00
S2 S 50 99.00
M1 B 10
bad line
A1 S 30 105
X9 Q 10 5
`

const sampleOutput = `order S1 50 shares purchased at price 101.00
order S2 50 shares sold at price 101.00
order M1 10 shares purchased at price 105.00
order A1 10 shares sold at price 105.00
order S1 50 shares unexecuted
order A1 20 shares unexecuted
`

type fakeArchive struct {
	sessionID  string
	trades     int
	unexecuted int
	committed  *domain.SessionRecord
}

func (a *fakeArchive) OnTrade(domain.TradeEvent)           { a.trades++ }
func (a *fakeArchive) OnUnexecuted(domain.UnexecutedEvent) { a.unexecuted++ }
func (a *fakeArchive) Commit(rec domain.SessionRecord) error {
	a.committed = &rec
	return nil
}

func writeSession(t *testing.T, content string) (input, output string) {
	t.Helper()
	dir := t.TempDir()
	input = filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(input, []byte(content), 0644))
	return input, filepath.Join(dir, "out", "output.txt")
}

func TestRunner_Run(t *testing.T) {
	input, output := writeSession(t, sampleSession)
	var stdout bytes.Buffer
	metrics := &infra.Metrics{}

	runner := NewRunner(Options{Input: input, Output: output, Snapshots: true}, &stdout, metrics)
	archive := &fakeArchive{}
	runner.SetArchive(func(id string) Archive {
		archive.sessionID = id
		return archive
	})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.SessionID)
	assert.Equal(t, 4, summary.Orders)
	assert.Equal(t, 2, summary.Rejected)
	assert.Equal(t, 2, summary.Trades)
	assert.Equal(t, int64(60), summary.TradedShares)
	assert.Equal(t, int64(70), summary.UnexecutedShares)
	assert.Equal(t, "105.00", domain.FormatPrice(summary.LastTradePrice))

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, sampleOutput, string(got))

	// Snapshots first, then the echoed log.
	out := stdout.String()
	assert.Contains(t, out, "Last trading price: 100.00\n")
	assert.Contains(t, out, "Last trading price: 105.00\n")
	assert.Contains(t, out, "M1 M 10")
	assert.True(t, bytes.HasSuffix(stdout.Bytes(), []byte(sampleOutput)))

	assert.Equal(t, summary.SessionID, archive.sessionID)
	assert.Equal(t, 4, archive.trades)
	assert.Equal(t, 2, archive.unexecuted)
	require.NotNil(t, archive.committed)
	assert.Equal(t, summary.SessionID, archive.committed.ID)
	assert.Equal(t, int64(70), archive.committed.Unexecuted)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(4), snap.OrdersAdmitted)
	assert.Equal(t, uint64(2), snap.RecordsRejected)
}

func TestRunner_NoSnapshots(t *testing.T) {
	input, output := writeSession(t, "10\nA1 S 30 12.00\n")
	var stdout bytes.Buffer

	summary, err := NewRunner(Options{Input: input, Output: output}, &stdout, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "order A1 30 shares unexecuted\n", stdout.String())
	assert.Equal(t, "10.00", domain.FormatPrice(summary.LastTradePrice))
}

func TestRunner_Strict(t *testing.T) {
	input, output := writeSession(t, sampleSession)

	_, err := NewRunner(Options{Input: input, Output: output, Strict: true}, &bytes.Buffer{}, nil).Run(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsRecordError(err))
	assert.ErrorIs(t, err, domain.ErrMissingField)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "strict abort must not write output")
}

func TestRunner_DuplicateOrderID(t *testing.T) {
	input, output := writeSession(t, "10\nA1 S 30 12.00\nA1 B 5 13.00\n")

	summary, err := NewRunner(Options{Input: input, Output: output}, &bytes.Buffer{}, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Orders)
	assert.Equal(t, 1, summary.Rejected)

	_, err = NewRunner(Options{Input: input, Output: output, Strict: true}, &bytes.Buffer{}, nil).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderID)
}

func TestRunner_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := NewRunner(Options{
		Input:  filepath.Join(dir, "nope.txt"),
		Output: filepath.Join(dir, "output.txt"),
	}, &bytes.Buffer{}, nil).Run(context.Background())

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRunner_MissingReferencePrice(t *testing.T) {
	input, output := writeSession(t, "\n\n")

	_, err := NewRunner(Options{Input: input, Output: output}, &bytes.Buffer{}, nil).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingReferencePrice)
}

func TestRunner_Cancelled(t *testing.T) {
	input, output := writeSession(t, sampleSession)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(Options{Input: input, Output: output}, &bytes.Buffer{}, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
