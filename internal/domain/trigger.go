package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Comparison is the relation a trigger waits for between a reserve and its target.
// The numeric values match decimal.Cmp; ComparisonAny is stored as NULL.
type Comparison int

const (
	ComparisonLessThan    Comparison = -1
	ComparisonEqualTo     Comparison = 0
	ComparisonGreaterThan Comparison = 1
	ComparisonAny         Comparison = 2
)

func (c Comparison) String() string {
	switch c {
	case ComparisonLessThan:
		return "less than"
	case ComparisonEqualTo:
		return "equal to"
	case ComparisonGreaterThan:
		return "greater than"
	case ComparisonAny:
		return "any change"
	default:
		return fmt.Sprintf("comparison(%d)", int(c))
	}
}

// Symbol is the short operator form used by the bot and the API.
func (c Comparison) Symbol() string {
	switch c {
	case ComparisonLessThan:
		return "<"
	case ComparisonEqualTo:
		return "="
	case ComparisonGreaterThan:
		return ">"
	default:
		return "any"
	}
}

func (c Comparison) Valid() bool {
	return c >= ComparisonLessThan && c <= ComparisonAny
}

// Code returns the persisted encoding: nil for ComparisonAny.
func (c Comparison) Code() *int {
	if c == ComparisonAny {
		return nil
	}
	code := int(c)
	return &code
}

func ComparisonFromCode(code *int) (Comparison, error) {
	if code == nil {
		return ComparisonAny, nil
	}
	c := Comparison(*code)
	if c == ComparisonAny || !c.Valid() {
		return 0, fmt.Errorf("unknown comparison code %d", *code)
	}
	return c, nil
}

func ParseComparison(input string) (Comparison, error) {
	switch input {
	case ">", "gt", "greater", "greater_than":
		return ComparisonGreaterThan, nil
	case "=", "==", "eq", "equal", "equal_to":
		return ComparisonEqualTo, nil
	case "<", "lt", "less", "less_than":
		return ComparisonLessThan, nil
	case "", "any", "*", "change":
		return ComparisonAny, nil
	default:
		return 0, fmt.Errorf("unknown comparison %q", input)
	}
}

type ReserveTrigger struct {
	ID           string
	Currency     string
	TargetAmount *decimal.Decimal
	Comparison   Comparison
	IsEnabled    bool
	OnlyOnce     bool
	CreatedAt    time.Time
}

// NotificationTag identifies the notification for this trigger so repeated
// firings replace each other instead of stacking up.
func (t ReserveTrigger) NotificationTag() string {
	return "reserve_trigger:" + t.ID
}

// Condition renders the trigger condition, e.g. "btc < 10".
func (t ReserveTrigger) Condition() string {
	if t.Comparison == ComparisonAny || t.TargetAmount == nil {
		return t.Currency + " any change"
	}
	return fmt.Sprintf("%s %s %s", t.Currency, t.Comparison.Symbol(), t.TargetAmount.String())
}
