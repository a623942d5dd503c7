package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Amount is either a known price in cents, optionally an estimate, or pending (TBD).
type Amount struct {
	cents     int64
	known     bool
	estimated bool
}

func PendingAmount() Amount { return Amount{} }

func KnownAmount(value float64) Amount {
	return Amount{cents: toCents(value), known: true}
}

func EstimatedAmount(value float64) Amount {
	return Amount{cents: toCents(value), known: true, estimated: true}
}

func AmountFromCents(cents int64, estimated bool) Amount {
	return Amount{cents: cents, known: true, estimated: estimated}
}

func toCents(value float64) int64 {
	return int64(math.Round(value * 100))
}

func (a Amount) IsPending() bool   { return !a.known }
func (a Amount) IsEstimated() bool { return a.known && a.estimated }
func (a Amount) Cents() int64      { return a.cents }

func (a Amount) Float64() float64 {
	return float64(a.cents) / 100
}

// Firm drops the estimate flag.
func (a Amount) Firm() Amount {
	if !a.known {
		return a
	}
	return Amount{cents: a.cents, known: true}
}

// String is the storage form: "150.00", "150.00 (Est)" or "" when pending.
func (a Amount) String() string {
	if !a.known {
		return ""
	}
	s := strconv.FormatFloat(a.Float64(), 'f', 2, 64)
	if a.estimated {
		s += " (Est)"
	}
	return s
}

// Display renders the amount for people: "$150.00", "$150.00 (Est)" or "TBD".
func (a Amount) Display() string {
	if !a.known {
		return "TBD"
	}
	return "$" + a.String()
}

var amountNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParseAmount reads current and legacy forms: "150", "150.00 (Est)", "$1,250 (Est)", "TBD", "".
func ParseAmount(raw string) (Amount, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "tbd", "pending", "n/a":
		return PendingAmount(), nil
	}

	estimated := strings.Contains(strings.ToLower(s), "(est")
	cleaned := strings.ReplaceAll(s, ",", "")
	num := amountNumber.FindString(cleaned)
	if num == "" {
		return Amount{}, fmt.Errorf("invalid amount %q", raw)
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if value < 0 {
		return Amount{}, fmt.Errorf("amount %q must not be negative", raw)
	}

	if estimated {
		return EstimatedAmount(value), nil
	}
	return KnownAmount(value), nil
}

// Scan implements sql.Scanner. NULL is a pending amount.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = PendingAmount()
		return nil
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		return a.Scan(string(v))
	case float64:
		*a = KnownAmount(v)
		return nil
	case int64:
		*a = AmountFromCents(v*100, false)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
}

// Value implements driver.Valuer. A pending amount is stored as NULL.
func (a Amount) Value() (driver.Value, error) {
	if !a.known {
		return nil, nil
	}
	return a.String(), nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Display())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = PendingAmount()
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if num < 0 {
			return fmt.Errorf("amount must not be negative")
		}
		*a = KnownAmount(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount must be a number or string: %w", err)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
