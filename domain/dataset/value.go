package dataset

import (
	"math"
	"strconv"
)

// ValueType defines the storage type for a cell
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeInteger ValueType = "integer"
	ValueTypeMissing ValueType = "missing"
)

// Value is a typed cell. A missing value doubles as the "not a number" marker
// for numeric columns and as the null of nullable integer columns.
type Value struct {
	Type       ValueType `json:"type"`
	StringVal  *string   `json:"string_val,omitempty"`
	NumericVal *float64  `json:"numeric_val,omitempty"`
	IntegerVal *int64    `json:"integer_val,omitempty"`
}

// NewStringValue creates a string value. Empty strings are missing.
func NewStringValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeString, StringVal: &s}
}

// NewNumericValue creates a numeric value. NaN and Inf are stored as missing.
func NewNumericValue(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeNumeric, NumericVal: &n}
}

// NewIntegerValue creates an integer value
func NewIntegerValue(i int64) Value {
	return Value{Type: ValueTypeInteger, IntegerVal: &i}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing reports whether the cell holds no usable value
func (v Value) IsMissing() bool {
	switch v.Type {
	case ValueTypeString:
		return v.StringVal == nil
	case ValueTypeNumeric:
		return v.NumericVal == nil
	case ValueTypeInteger:
		return v.IntegerVal == nil
	}
	return true
}

// Float returns the numeric reading of the cell. Missing and string cells
// return NaN and false.
func (v Value) Float() (float64, bool) {
	switch {
	case v.Type == ValueTypeNumeric && v.NumericVal != nil:
		return *v.NumericVal, true
	case v.Type == ValueTypeInteger && v.IntegerVal != nil:
		return float64(*v.IntegerVal), true
	}
	return math.NaN(), false
}

// SumFloat is the value used when summing: missing counts as zero.
func (v Value) SumFloat() float64 {
	if f, ok := v.Float(); ok {
		return f
	}
	return 0
}

// Int returns the integer reading of the cell
func (v Value) Int() (int64, bool) {
	if v.Type == ValueTypeInteger && v.IntegerVal != nil {
		return *v.IntegerVal, true
	}
	return 0, false
}

// Text renders the cell for string comparison. Missing cells become "".
func (v Value) Text() string {
	switch v.Type {
	case ValueTypeString:
		if v.StringVal != nil {
			return *v.StringVal
		}
	case ValueTypeNumeric:
		if v.NumericVal != nil {
			return strconv.FormatFloat(*v.NumericVal, 'f', -1, 64)
		}
	case ValueTypeInteger:
		if v.IntegerVal != nil {
			return strconv.FormatInt(*v.IntegerVal, 10)
		}
	}
	return ""
}

// String returns a debug representation
func (v Value) String() string {
	if v.IsMissing() {
		return "<missing>"
	}
	return v.Text()
}

// Interface returns the cell as a plain Go value for JSON and spreadsheet output.
func (v Value) Interface() interface{} {
	switch {
	case v.IsMissing():
		return nil
	case v.Type == ValueTypeNumeric:
		return *v.NumericVal
	case v.Type == ValueTypeInteger:
		return *v.IntegerVal
	default:
		return *v.StringVal
	}
}
