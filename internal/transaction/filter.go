package transaction

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Values is the loosely typed source of filter parameters. url.Values satisfies it.
type Values interface {
	Get(key string) string
}

// Filter restricts a user's transactions. Nil or empty fields impose no restriction;
// the remaining ones combine with AND.
type Filter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	Categories []string
	Type       *Type
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}

// dateOnlyLen is the length of a bare calendar date such as "2024-03-05".
const dateOnlyLen = len(time.DateOnly)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseFilter validates and normalizes raw query parameters into a Filter.
func ParseFilter(v Values) (Filter, error) {
	var f Filter

	from, err := parseBound(v.Get("date_from"), false)
	if err != nil {
		return Filter{}, invalid(CodeInvalidDate, "date_from", err)
	}

	to, err := parseBound(v.Get("date_to"), true)
	if err != nil {
		return Filter{}, invalid(CodeInvalidDate, "date_to", err)
	}

	f.DateFrom, f.DateTo = from, to

	raw := v.Get("categories")
	if raw == "" {
		raw = v.Get("category")
	}

	f.Categories = SplitCategories(raw)

	if s := strings.TrimSpace(v.Get("type")); s != "" {
		t := Type(s)
		if !t.Valid() {
			return Filter{}, invalid(CodeInvalidType, "type", errors.New("must be income or expense"))
		}

		f.Type = &t
	}

	if f.MinAmount, err = parseAmountBound(v.Get("min_amount")); err != nil {
		return Filter{}, invalid(CodeInvalidMinAmount, "min_amount", err)
	}

	if f.MaxAmount, err = parseAmountBound(v.Get("max_amount")); err != nil {
		return Filter{}, invalid(CodeInvalidMaxAmount, "max_amount", err)
	}

	return f, nil
}

// SplitCategories splits a comma-separated list, dropping blank tokens.
// It returns nil when nothing is left, which means "no category restriction".
func SplitCategories(s string) []string {
	var out []string

	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

// parseBound parses a date or date-time bound. A bare date expands to the first
// instant of the day, or to 23:59:59 of that day when endOfDay is set.
func parseBound(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if len(s) == dateOnlyLen {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, err
		}

		if endOfDay {
			d = d.Add(24*time.Hour - time.Second)
		}

		return &d, nil
	}

	var lastErr error

	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			t = t.UTC()
			return &t, nil
		}

		lastErr = err
	}

	return nil, lastErr
}

func parseAmountBound(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}

	if d.IsNegative() {
		return nil, errors.New("must not be negative")
	}

	return &d, nil
}

// Match reports whether tx satisfies every predicate in f.
func (f Filter) Match(tx *Transaction) bool {
	if f.DateFrom != nil && tx.CreatedAt.Before(*f.DateFrom) {
		return false
	}

	if f.DateTo != nil && tx.CreatedAt.After(*f.DateTo) {
		return false
	}

	if len(f.Categories) > 0 && !slices.Contains(f.Categories, tx.Category) {
		return false
	}

	if f.Type != nil && tx.Type != *f.Type {
		return false
	}

	if f.MinAmount != nil && tx.Amount.LessThan(*f.MinAmount) {
		return false
	}

	if f.MaxAmount != nil && tx.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}

	return true
}

// Newer orders transactions newest-created first, breaking ties by id so that
// pagination windows are stable.
func Newer(a, b *Transaction) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}

	return strings.Compare(b.ID.String(), a.ID.String())
}
