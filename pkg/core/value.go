package core

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Scalar cells come back from drivers as int64, float64, string, []byte,
// bool, time.Time or nil. The helpers here give them one total order.

// ToFloat converts a numeric cell to float64. Numeric text is accepted.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(bytes.TrimSpace(x)), 64)
		return f, err == nil
	}
	return 0, false
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// rank orders values of different kinds: nil < numbers < bools < times < text.
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 2
	case time.Time:
		return 3
	case string, []byte:
		return 4
	}
	if isNumber(v) {
		return 1
	}
	return 5
}

// CompareValues returns -1, 0 or +1 comparing a and b.
// Numbers compare numerically regardless of their Go type.
func CompareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case 0:
		return 0
	case 1:
		fa, _ := ToFloat(a)
		fb, _ := ToFloat(b)
		return cmp.Compare(fa, fb)
	case 2:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case 3:
		return a.(time.Time).Compare(b.(time.Time))
	}
	return strings.Compare(FormatValue(a), FormatValue(b))
}

// ValuesEqual reports whether a and b compare equal.
func ValuesEqual(a, b any) bool {
	return CompareValues(a, b) == 0
}

// SortValues returns a sorted copy of values in ascending order.
func SortValues(values []any) []any {
	sorted := slices.Clone(values)
	slices.SortStableFunc(sorted, CompareValues)
	return sorted
}

// FormatValue renders a cell for display and for textual matching.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		if math.Trunc(x) == x && math.Abs(x) < 1e15 {
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case time.Time:
		return x.Format(time.RFC3339)
	}
	return fmt.Sprintf("%v", v)
}

// NormalizeValue converts driver-specific representations to plain scalars.
func NormalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
