package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"order_matching/internal/domain"
)

const maxLineBytes = 1 << 20

// Record is one parsed order line. Sequence numbers are assigned later,
// by the runner, to accepted records only.
type Record struct {
	Line     int
	ID       string
	Side     domain.Side
	Quantity int64
	Price    domain.Price
}

// Reader parses a session file: a reference price line followed by one
// order per line. Blank lines are skipped.
type Reader struct {
	scanner   *bufio.Scanner
	line      int
	reference decimal.Decimal
}

// NewReader consumes the reference price line from r.
func NewReader(r io.Reader) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	rd := &Reader{scanner: sc}

	text, ok := rd.nextLine()
	if !ok {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read session: %w", err)
		}
		return nil, domain.ErrMissingReferencePrice
	}

	// Anything after the first token is ignored.
	token := strings.Fields(text)[0]
	ref, err := decimal.NewFromString(token)
	if err != nil || !ref.IsPositive() {
		return nil, &domain.RecordError{
			Line:  rd.line,
			Field: "reference_price",
			Err:   fmt.Errorf("%w: %q", domain.ErrInvalidReferencePrice, token),
		}
	}
	rd.reference = ref
	return rd, nil
}

// ReferencePrice returns the session's starting reference price.
func (r *Reader) ReferencePrice() decimal.Decimal {
	return r.reference
}

// Next returns the next order record, io.EOF when the input is exhausted,
// or a *domain.RecordError for a malformed line. Reading may continue
// after a RecordError.
func (r *Reader) Next() (Record, error) {
	text, ok := r.nextLine()
	if !ok {
		if err := r.scanner.Err(); err != nil {
			return Record{}, fmt.Errorf("failed to read session: %w", err)
		}
		return Record{}, io.EOF
	}
	return ParseRecord(r.line, text)
}

// nextLine advances to the next non-blank line.
func (r *Reader) nextLine() (string, bool) {
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()
		if strings.TrimSpace(text) != "" {
			return text, true
		}
	}
	return "", false
}

// ParseRecord parses "<id> <B|S> <quantity> [<price>]". An absent,
// unparsable or non-positive price means Market. Extra tokens are ignored.
func ParseRecord(line int, text string) (Record, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return Record{}, &domain.RecordError{
			Line:  line,
			Field: "record",
			Err:   fmt.Errorf("%w: want <id> <side> <quantity> [price], got %d fields", domain.ErrMissingField, len(fields)),
		}
	}

	rec := Record{Line: line, ID: fields[0], Price: domain.MarketPrice()}

	if len(fields[1]) != 1 {
		return Record{}, &domain.RecordError{Line: line, Field: "side", Err: fmt.Errorf("%w: %q", domain.ErrInvalidSide, fields[1])}
	}
	side, err := domain.ParseSide(fields[1][0])
	if err != nil {
		return Record{}, &domain.RecordError{Line: line, Field: "side", Err: err}
	}
	rec.Side = side

	qty, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || qty <= 0 {
		return Record{}, &domain.RecordError{Line: line, Field: "quantity", Err: fmt.Errorf("%w: %q", domain.ErrInvalidQuantity, fields[2])}
	}
	rec.Quantity = qty

	if len(fields) >= 4 {
		if p, err := decimal.NewFromString(fields[3]); err == nil && p.IsPositive() {
			rec.Price = domain.LimitPrice(p)
		}
	}
	return rec, nil
}

// isFatal reports whether a Next error must stop the session regardless of
// strict mode.
func isFatal(err error) bool {
	return !errors.Is(err, io.EOF) && !domain.IsRecordError(err)
}
