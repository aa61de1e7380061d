package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Price is an amount in minor units (cents). Stored as NUMERIC(10,2).
type Price int64

// MaxPrice is the largest value NUMERIC(10,2) holds.
const MaxPrice Price = 9999999999

var (
	errPriceFormat   = errors.New("price must be a decimal number")
	errPricePlaces   = errors.New("price must have at most 2 decimal places")
	errPriceNegative = errors.New("price must be greater than or equal to 0")
	errPriceTooLarge = errors.New("price must have at most 10 digits")
)

// ParsePrice parses a non-negative decimal string such as "12", "12.5" or "12.50".
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	whole, frac, _ := strings.Cut(s, ".")
	if (whole == "" && frac == "") || !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, errPriceFormat
	}
	if len(frac) > 2 {
		return 0, errPricePlaces
	}
	if whole == "" {
		whole = "0"
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > int64(MaxPrice/100) {
		return 0, errPriceTooLarge
	}
	f, _ := strconv.ParseInt(frac, 10, 64)
	p := Price(w*100 + f)
	if neg && p != 0 {
		return 0, errPriceNegative
	}
	if p > MaxPrice {
		return 0, errPriceTooLarge
	}
	return p, nil
}

// ParsePriceJSON accepts a JSON number or a JSON string holding a decimal.
func ParsePriceJSON(raw json.RawMessage) (Price, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errPriceFormat
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, errPriceFormat
		}
		return ParsePrice(s)
	}
	return ParsePrice(string(raw))
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats the price with exactly two decimals.
func (p Price) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the price as a decimal string.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Value implements driver.Valuer.
func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (p *Price) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = 0
		return nil
	case []byte:
		parsed, err := ParsePrice(string(v))
		if err != nil {
			return fmt.Errorf("scan price %q: %w", v, err)
		}
		*p = parsed
		return nil
	case string:
		parsed, err := ParsePrice(v)
		if err != nil {
			return fmt.Errorf("scan price %q: %w", v, err)
		}
		*p = parsed
		return nil
	case int64:
		*p = Price(v * 100)
		return nil
	case float64:
		*p = Price(math.Round(v * 100))
		return nil
	}
	return fmt.Errorf("scan price: unsupported type %T", src)
}
