package ledger

import (
	"errors"
	"fmt"
	"time"
)

// MonthLayout is the YYYY-MM key used for startMonth and currentDate.
const MonthLayout = "2006-01"

// ErrInvalidMonth is returned for keys that are not YYYY-MM (or YYYY-MM-DD).
var ErrInvalidMonth = errors.New("invalid month key")

func parseMonth(key string) (time.Time, error) {
	if len(key) == len("2006-01-02") {
		key = key[:len(MonthLayout)]
	}
	t, err := time.Parse(MonthLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, key)
	}
	return t, nil
}

// ValidMonth reports whether key parses as a month key.
func ValidMonth(key string) bool {
	_, err := parseMonth(key)
	return err == nil
}

// CurrentMonth formats t as a month key.
func CurrentMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

// MonthsBetween returns the signed number of whole months from start to asOf.
func MonthsBetween(start, asOf string) (int, error) {
	s, err := parseMonth(start)
	if err != nil {
		return 0, err
	}
	a, err := parseMonth(asOf)
	if err != nil {
		return 0, err
	}
	return (a.Year()-s.Year())*12 + int(a.Month()-s.Month()), nil
}

// IsExpired reports whether item no longer counts at asOf.
//
// Unlimited items (duration -1) never expire. A duration that is pending,
// zero or otherwise non-positive means the item is not configured yet and it
// is kept visible. Month keys that cannot be parsed never expire an item.
func IsExpired(item Item, asOf string) bool {
	if item.Duration.IsPending() {
		return false
	}
	d := item.Duration.Float()
	if d == Unlimited || d <= 0 {
		return false
	}
	passed, err := MonthsBetween(item.StartMonth, asOf)
	if err != nil {
		return false
	}
	return float64(passed) >= d
}

// RemainingMonths returns how many months item still runs at asOf.
// ok is false for unlimited or unconfigured items.
func RemainingMonths(item Item, asOf string) (months int, ok bool) {
	d := item.Duration.Float()
	if item.Duration.IsPending() || d <= 0 {
		return 0, false
	}
	passed, err := MonthsBetween(item.StartMonth, asOf)
	if err != nil {
		return 0, false
	}
	return int(d) - passed, true
}
