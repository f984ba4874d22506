package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/betinha/rental-core/internal/finance"
)

// fieldSet applies optional inputs onto an entity and records the column
// updates. The first validation failure sticks in err.
type fieldSet struct {
	updates map[string]any
	err     error
}

func newFieldSet() *fieldSet {
	return &fieldSet{updates: make(map[string]any)}
}

func (f *fieldSet) fail(field, format string, args ...any) {
	if f.err == nil {
		f.err = validationError(field, format, args...)
	}
}

func (f *fieldSet) text(column, field string, src *string, required bool, dst *string) {
	if src == nil {
		return
	}
	v := strings.TrimSpace(*src)
	if required && v == "" {
		f.fail(field, "%s is required", field)
		return
	}
	*dst = v
	f.updates[column] = v
}

// amount parses a non-negative decimal string.
func (f *fieldSet) amount(column, field string, src *string, dst *decimal.Decimal) {
	if src == nil {
		return
	}
	d, err := finance.ParseNonNegative(*src)
	if err != nil {
		f.fail(field, "%s must be a non-negative number", field)
		return
	}
	*dst = d
	f.updates[column] = d
}

func (f *fieldSet) count(column, field string, src *int, dst *int) {
	if src == nil {
		return
	}
	if *src < 0 {
		f.fail(field, "%s must not be negative", field)
		return
	}
	*dst = *src
	f.updates[column] = *src
}

// normalizeEnum lets clients send enum values in any case.
func normalizeEnum(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}
