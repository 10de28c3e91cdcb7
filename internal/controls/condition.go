package controls

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldSource exposes named column values of one transaction record. The
// second return is false when the column is absent from the batch schema or
// the value is missing for this record.
type FieldSource interface {
	Field(name string) (string, bool)
}

// ConditionKind discriminates the compiled condition variants.
type ConditionKind int

const (
	// KindEquals compares the field against a scalar (numeric) value.
	KindEquals ConditionKind = iota
	// KindEqualsFold compares the field against a string, case-insensitively.
	KindEqualsFold
	// KindBoolEquals compares the field against a boolean, coercing common
	// string forms ("true"/"false", any case, surrounding whitespace).
	KindBoolEquals
	// KindMembership checks list membership.
	KindMembership
	// KindCompare applies a numeric comparison against a threshold.
	KindCompare
)

// CompareOp enumerates numeric comparison operators.
type CompareOp int

const (
	OpGT CompareOp = iota
	OpGTE
	OpLT
	OpLTE
)

func (op CompareOp) String() string {
	switch op {
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	}
	return "?"
}

// Condition is one compiled condition of a control. The raw key/value pair
// from the control file is resolved into a tagged variant once at load time,
// so the evaluation path never re-parses key suffixes.
type Condition struct {
	// Key is the raw key as authored, kept for diagnostics.
	Key string
	// Field is the resolved column name the condition reads.
	Field string
	Kind  ConditionKind

	Op        CompareOp
	Threshold float64
	Members   []memberValue
	Str       string
	Bool      bool
	Number    float64
}

type memberValue struct {
	text  string
	num   float64
	isNum bool
}

// suffix → operator, longest suffixes first so the day-normalized forms win.
var compareSuffixes = []struct {
	suffix string
	op     CompareOp
	days   bool
}{
	{"_gte_days", OpGTE, true},
	{"_lte_days", OpLTE, true},
	{"_gt_days", OpGT, true},
	{"_lt_days", OpLT, true},
	{"_gte", OpGTE, false},
	{"_lte", OpLTE, false},
	{"_gt", OpGT, false},
	{"_lt", OpLT, false},
}

// canonicalField maps control-file shorthand onto the dataset's "_days"
// column names. Applied to every numeric comparison, day-suffixed or not.
func canonicalField(field string) string {
	switch field {
	case "account_age":
		return "account_age_days"
	case "wallet_age":
		return "wallet_age_days"
	}
	return field
}

// Compile resolves one raw condition key/value pair into its tagged form.
func Compile(key string, expected any) (Condition, error) {
	if field, ok := strings.CutSuffix(key, "_in"); ok {
		members, err := membershipValues(expected)
		if err != nil {
			return Condition{}, fmt.Errorf("condition %q: %w", key, err)
		}
		return Condition{Key: key, Field: field, Kind: KindMembership, Members: members}, nil
	}

	for _, s := range compareSuffixes {
		field, ok := strings.CutSuffix(key, s.suffix)
		if !ok {
			continue
		}
		threshold, err := numericValue(expected)
		if err != nil {
			return Condition{}, fmt.Errorf("condition %q: %w", key, err)
		}
		return Condition{
			Key:       key,
			Field:     canonicalField(field),
			Kind:      KindCompare,
			Op:        s.op,
			Threshold: threshold,
		}, nil
	}

	switch v := expected.(type) {
	case bool:
		return Condition{Key: key, Field: key, Kind: KindBoolEquals, Bool: v}, nil
	case string:
		return Condition{Key: key, Field: key, Kind: KindEqualsFold, Str: v}, nil
	default:
		n, err := numericValue(expected)
		if err != nil {
			return Condition{}, fmt.Errorf("condition %q: unsupported value %v", key, expected)
		}
		return Condition{Key: key, Field: key, Kind: KindEquals, Number: n}, nil
	}
}

// Match evaluates the condition against a single record. A missing field or
// an uncoercible value always yields false, never an error: a malformed or
// absent signal cannot trigger a control.
func (c Condition) Match(rec FieldSource) bool {
	raw, ok := rec.Field(c.Field)
	if !ok {
		return false
	}

	switch c.Kind {
	case KindMembership:
		return c.matchMembership(raw)
	case KindCompare:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return false
		}
		switch c.Op {
		case OpGT:
			return n > c.Threshold
		case OpGTE:
			return n >= c.Threshold
		case OpLT:
			return n < c.Threshold
		case OpLTE:
			return n <= c.Threshold
		}
		return false
	case KindBoolEquals:
		b, ok := coerceBool(raw)
		if !ok {
			return false
		}
		return b == c.Bool
	case KindEqualsFold:
		return strings.EqualFold(raw, c.Str)
	case KindEquals:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return false
		}
		return n == c.Number
	}
	return false
}

func (c Condition) matchMembership(raw string) bool {
	rawNum, rawErr := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	for _, m := range c.Members {
		if raw == m.text {
			return true
		}
		if m.isNum && rawErr == nil && rawNum == m.num {
			return true
		}
	}
	return false
}

func coerceBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func membershipValues(expected any) ([]memberValue, error) {
	list, ok := expected.([]any)
	if !ok {
		return nil, fmt.Errorf("membership value must be a list, got %T", expected)
	}
	members := make([]memberValue, 0, len(list))
	for _, item := range list {
		m := memberValue{text: fmt.Sprintf("%v", item)}
		if n, err := numericValue(item); err == nil {
			m.num = n
			m.isNum = true
		}
		members = append(members, m)
	}
	return members, nil
}

func numericValue(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}
