package session

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order_matching/internal/domain"
)

func TestNewReader_ReferencePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: "100\n", want: "100.00"},
		{name: "leading blank lines and trailing tokens", input: "\n  \n20.5 ignored\n", want: "20.50"},
		{name: "empty input", input: "", wantErr: domain.ErrMissingReferencePrice},
		{name: "only blank lines", input: "\n\n", wantErr: domain.ErrMissingReferencePrice},
		{name: "not a number", input: "abc\n", wantErr: domain.ErrInvalidReferencePrice},
		{name: "zero", input: "0\n", wantErr: domain.ErrInvalidReferencePrice},
		{name: "negative", input: "-1\n", wantErr: domain.ErrInvalidReferencePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, domain.FormatPrice(r.ReferencePrice()))
		})
	}
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantID    string
		wantSide  domain.Side
		wantQty   int64
		wantPrice string
		wantField string
		wantErr   error
	}{
		{name: "limit buy", text: "S1 B 100 101.00", wantID: "S1", wantSide: domain.SideBuy, wantQty: 100, wantPrice: "101.00"},
		{name: "market sell", text: "M1 S 10", wantID: "M1", wantSide: domain.SideSell, wantQty: 10, wantPrice: "M"},
		{name: "unparsable price is market", text: "M2 B 5 abc", wantID: "M2", wantSide: domain.SideBuy, wantQty: 5, wantPrice: "M"},
		{name: "negative price is market", text: "M3 S 5 -1", wantID: "M3", wantSide: domain.SideSell, wantQty: 5, wantPrice: "M"},
		{name: "zero price is market", text: "M4 S 5 0", wantID: "M4", wantSide: domain.SideSell, wantQty: 5, wantPrice: "M"},
		{name: "extra tokens ignored", text: "\tA1  S 7 9.999 extra", wantID: "A1", wantSide: domain.SideSell, wantQty: 7, wantPrice: "10.00"},
		{name: "missing quantity", text: "A1 S", wantField: "record", wantErr: domain.ErrMissingField},
		{name: "unknown side", text: "A1 X 10", wantField: "side", wantErr: domain.ErrInvalidSide},
		{name: "word side", text: "A1 Buy 10", wantField: "side", wantErr: domain.ErrInvalidSide},
		{name: "zero quantity", text: "A1 B 0 10", wantField: "quantity", wantErr: domain.ErrInvalidQuantity},
		{name: "fractional quantity", text: "A1 B 1.5 10", wantField: "quantity", wantErr: domain.ErrInvalidQuantity},
		{name: "negative quantity", text: "A1 B -4 10", wantField: "quantity", wantErr: domain.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseRecord(7, tt.text)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				var re *domain.RecordError
				require.True(t, errors.As(err, &re))
				assert.Equal(t, 7, re.Line)
				assert.Equal(t, tt.wantField, re.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 7, rec.Line)
			assert.Equal(t, tt.wantID, rec.ID)
			assert.Equal(t, tt.wantSide, rec.Side)
			assert.Equal(t, tt.wantQty, rec.Quantity)
			assert.Equal(t, tt.wantPrice, rec.Price.String())
		})
	}
}

func TestReader_Next(t *testing.T) {
	input := "100.00\n\nS1 B 100 101.00\nbroken\n\nS2 S 50 99.00\n"
	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "S1", rec.ID)
	assert.Equal(t, 3, rec.Line)

	_, err = r.Next()
	assert.True(t, domain.IsRecordError(err))
	assert.False(t, isFatal(err))

	rec, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "S2", rec.ID)
	assert.Equal(t, 6, rec.Line)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.False(t, isFatal(err))
}
