package exporter

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Stringify returns the canonical string form of a cell value.
// nil becomes the empty string; it never fails.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return formatBool(val)
	case int:
		return formatInt(int64(val))
	case int8:
		return formatInt(int64(val))
	case int16:
		return formatInt(int64(val))
	case int32:
		return formatInt(int64(val))
	case int64:
		return formatInt(val)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return formatFloat(float64(val), 32)
	case float64:
		return formatFloat(val, 64)
	case json.Number:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		return Stringify(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

// formatFloat uses the shortest representation that round-trips. Magnitudes
// in [1e-6, 1e21) are plain decimals; outside that range the exponent form is
// used with an unpadded exponent ("1e+21", "1.5e-7").
func formatFloat(f float64, bitSize int) string {
	abs := math.Abs(f)
	if abs < 1e21 && (abs >= 1e-6 || abs == 0) {
		return strconv.FormatFloat(f, 'f', -1, bitSize)
	}
	s := strconv.FormatFloat(f, 'e', -1, bitSize)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		// NaN and infinities
		return s
	}
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + exp[:1] + digits
}

// formatInt formats an int64 value in decimal
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatBool formats a boolean value
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
