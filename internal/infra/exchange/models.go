package exchange

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ratesResponse is keyed by pair, "<from>_<to>".
type ratesResponse map[string]pairRate

type pairRate struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Rate    NullableDecimal `json:"rate"`
	Fee     NullableDecimal `json:"fee"`
	Reserve NullableDecimal `json:"reserve"`
	Min     NullableDecimal `json:"min"`
	Max     NullableDecimal `json:"max"`
}

type orderResponse struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	AmountFrom NullableDecimal `json:"amount_from"`
	AmountTo   NullableDecimal `json:"amount_to"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NullableDecimal accepts numbers, quoted numbers and null.
type NullableDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

func (n *NullableDecimal) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		n.Valid = false
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 {
		n.Valid = false
		return nil
	}
	if trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = strings.TrimSpace(strings.Trim(trimmed, "\""))
		if trimmed == "" {
			n.Valid = false
			return nil
		}
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		n.Valid = false
		return err
	}
	n.Decimal = dec
	n.Valid = true
	return nil
}

func (n NullableDecimal) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Decimal.String())
}

func (n NullableDecimal) OrZero() decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}
