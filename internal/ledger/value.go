package ledger

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Num is a numeric item field (cost, vipPrice, duration).
//
// While a user is typing, the field may hold the raw text "" or "-" instead of
// a number. Such a value is Pending: it is kept verbatim during editing and
// only resolved to a number (zero) when read through Float or persisted.
type Num struct {
	v       float64
	raw     string
	pending bool
}

// Number returns a resolved numeric value.
func Number(v float64) Num { return Num{v: v} }

// Pending returns an in-progress value holding raw text.
func Pending(raw string) Num { return Num{raw: raw, pending: true} }

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNum interprets user input for a numeric field.
// "" and "-" stay pending; anything else is parsed from its leading numeric
// prefix and falls back to 0 only when no number can be read at all.
func ParseNum(s string) Num {
	if s == "" || s == "-" {
		return Pending(s)
	}
	return Number(parseLeadingFloat(s))
}

func parseLeadingFloat(s string) float64 {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

// IsPending reports whether the value is still raw text.
func (n Num) IsPending() bool { return n.pending }

// Float resolves the value; pending values read as 0.
func (n Num) Float() float64 {
	if n.pending {
		return 0
	}
	return n.v
}

// Int resolves the value truncated to a whole number.
func (n Num) Int() int { return int(n.Float()) }

func (n Num) String() string {
	if n.pending {
		return n.raw
	}
	return strconv.FormatFloat(n.v, 'f', -1, 64)
}

func (n Num) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Float())
}

func (n *Num) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*n = Number(0)
	case strings.HasPrefix(s, `"`):
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return fmt.Errorf("decode num: %w", err)
		}
		*n = ParseNum(raw)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("decode num: %w", err)
		}
		*n = Number(f)
	}
	return nil
}
