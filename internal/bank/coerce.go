package bank

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseEnabled coerces a loosely typed JSON value into the schedule flag.
// Booleans, numbers (non-zero is true) and strings such as "true", "1", "on"
// are accepted; a missing value is false.
func ParseEnabled(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return false, invalid(CodeInvalidEnabled, "enabled", err)
		}

		return f != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "", "0", "false", "f", "no", "off":
			return false, nil
		case "1", "true", "t", "yes", "on":
			return true, nil
		}
	}

	return false, invalid(CodeInvalidEnabled, "enabled", fmt.Errorf("cannot read %v as a boolean", v))
}

// ParseIntervalHours coerces a loosely typed JSON value into whole hours.
// A missing value means DefaultIntervalHours. Range checks are left to
// SetSchedule.
func ParseIntervalHours(v any) (int, error) {
	var f float64

	switch x := v.(type) {
	case nil:
		return DefaultIntervalHours, nil
	case float64:
		f = x
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, invalid(CodeInvalidIntervalHours, "intervalHours", err)
		}

		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, invalid(CodeInvalidIntervalHours, "intervalHours", fmt.Errorf("not a number: %q", x))
		}

		f = n
	default:
		return 0, invalid(CodeInvalidIntervalHours, "intervalHours", fmt.Errorf("cannot read %v as hours", v))
	}

	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, invalid(CodeInvalidIntervalHours, "intervalHours", fmt.Errorf("must be a whole number, got %v", f))
	}

	if math.Abs(f) > float64(MaxIntervalHours) {
		return 0, invalid(CodeInvalidIntervalHours, "intervalHours",
			fmt.Errorf("must be at most %d, got %v", MaxIntervalHours, f))
	}

	return int(f), nil
}
