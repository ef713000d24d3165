package normalize

import (
	"math"
	"strconv"
	"strings"

	"gradscope/domain/dataset"
)

// CoercionConfig defines how raw strings become typed values
type CoercionConfig struct {
	// Lenient accepts currency symbols, thousands separators, percent signs
	// and parenthesised negatives. Strict mode only accepts what
	// strconv.ParseFloat accepts after trimming.
	Lenient bool `json:"lenient"`
	// MissingTokens are treated as missing regardless of mode (compared case-insensitively).
	MissingTokens []string `json:"missing_tokens"`
}

// DefaultCoercionConfig returns strict parsing with the usual NA spellings
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		Lenient:       false,
		MissingTokens: []string{"", "na", "n/a", "nan", "null", "none", "-"},
	}
}

// TypeCoercer converts raw cells into dataset values. It never fails: an
// unparseable cell becomes a missing value.
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]struct{}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	missing := make(map[string]struct{}, len(config.MissingTokens))
	for _, tok := range config.MissingTokens {
		missing[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	return &TypeCoercer{config: config, missing: missing}
}

func (c *TypeCoercer) isMissingToken(s string) bool {
	_, ok := c.missing[strings.ToLower(s)]
	return ok
}

// Numeric coerces a raw cell to a number, or missing.
func (c *TypeCoercer) Numeric(raw string) dataset.Value {
	if f, ok := c.ParseNumeric(raw); ok {
		return dataset.NewNumericValue(f)
	}
	return dataset.NewMissingValue()
}

// ParseNumeric returns the numeric reading of raw and whether it parsed.
func (c *TypeCoercer) ParseNumeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if c.isMissingToken(s) {
		return 0, false
	}
	if c.config.Lenient {
		s = cleanLenientNumber(s)
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

// Year coerces a raw cell to a nullable integer year. Integral floats such as
// "2015.0" are accepted; fractional or non-numeric values become missing.
func (c *TypeCoercer) Year(raw string) dataset.Value {
	if y, ok := c.ParseYear(raw); ok {
		return dataset.NewIntegerValue(y)
	}
	return dataset.NewMissingValue()
}

// ParseYear is the parsing half of Year.
func (c *TypeCoercer) ParseYear(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if c.isMissingToken(s) {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// Categorical keeps the raw text, trimmed. Missing tokens become missing.
func (c *TypeCoercer) Categorical(raw string) dataset.Value {
	s := strings.TrimSpace(raw)
	if c.isMissingToken(s) {
		return dataset.NewMissingValue()
	}
	return dataset.NewStringValue(s)
}

// cleanLenientNumber strips formatting around a number:
// parentheses for negatives, currency symbols, percent signs and thousands separators.
func cleanLenientNumber(s string) string {
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		s = strings.ReplaceAll(s, symbol, "")
	}
	s = strings.TrimSpace(s)

	// Standard format: commas and spaces are thousands separators
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	if isNegative {
		s = "-" + s
	}
	return s
}
