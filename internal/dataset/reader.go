package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"rail-controls/internal/domain"
)

// RequiredColumns must be present in every transaction batch regardless of
// rail. All other columns are optional and rail-dependent.
var RequiredColumns = []string{"tx_id", "rail", "timestamp", "user_id", "amount", "is_fraud_pattern"}

// Record is one transaction row. Required fields are parsed into typed
// members; every column, optional ones included, stays reachable by name
// through Field.
type Record struct {
	TxID           string
	Rail           domain.Rail
	Timestamp      string
	UserID         string
	Amount         float64
	IsFraudPattern bool

	fields map[string]string
}

// Field returns the raw value of a column for this record. The second return
// is false when the column is absent from the batch schema or the cell is
// empty; callers treat both the same way (a missing signal).
func (r Record) Field(name string) (string, bool) {
	v, ok := r.fields[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Batch is a full transaction dataset plus its column schema.
type Batch struct {
	columns map[string]struct{}
	Records []Record
}

// HasColumn reports whether the column exists in the batch schema.
func (b *Batch) HasColumn(name string) bool {
	_, ok := b.columns[name]
	return ok
}

// Len returns the total transaction population across all rails.
func (b *Batch) Len() int {
	return len(b.Records)
}

// NewBatch builds a batch from a column schema and pre-parsed records,
// enforcing the required-column invariant. Used by Load and by callers that
// assemble batches in memory.
func NewBatch(columns []string, records []Record) (*Batch, error) {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		set[c] = struct{}{}
	}
	for _, required := range RequiredColumns {
		if _, ok := set[required]; !ok {
			return nil, fmt.Errorf("missing required column %q in transaction batch", required)
		}
	}
	return &Batch{columns: set, Records: records}, nil
}

// Load reads the combined transactions CSV and validates the required
// columns before returning. Any missing required column is fatal; optional
// columns may be absent or empty per row.
func Load(path string) (*Batch, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transactions file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header from %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range RequiredColumns {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q in %s", required, path)
		}
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record from %s: %w", path, err)
		}
		line++

		fields := make(map[string]string, len(header))
		for name, i := range index {
			if i < len(row) {
				fields[name] = row[i]
			}
		}

		rec, err := buildRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		records = append(records, rec)
	}

	columns := make([]string, 0, len(index))
	for name := range index {
		columns = append(columns, name)
	}
	return NewBatch(columns, records)
}

// NewRecord builds a record from raw column values, parsing the required
// fields. Empty optional values behave as missing.
func NewRecord(values map[string]string) (Record, error) {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		fields[k] = v
	}
	return buildRecord(fields)
}

func buildRecord(fields map[string]string) (Record, error) {
	rec := Record{
		TxID:      fields["tx_id"],
		Rail:      domain.Rail(fields["rail"]),
		Timestamp: fields["timestamp"],
		UserID:    fields["user_id"],
		fields:    fields,
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(fields["amount"]), 64)
	if err != nil {
		return Record{}, fmt.Errorf("tx %s: parse amount %q: %w", rec.TxID, fields["amount"], err)
	}
	rec.Amount = amount

	label, ok := parseBool(fields["is_fraud_pattern"])
	if !ok {
		return Record{}, fmt.Errorf("tx %s: parse is_fraud_pattern %q", rec.TxID, fields["is_fraud_pattern"])
	}
	rec.IsFraudPattern = label

	return rec, nil
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
