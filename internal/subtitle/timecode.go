package subtitle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatError reports a timestamp that is not of the form H:MM:SS.cc.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid timestamp %q: %s", e.Input, e.Reason)
}

// ParseTimestamp converts an ASS timestamp (H:MM:SS.cc) to seconds.
// Field widths are not validated, so "1:2:3" equals "01:02:03".
func ParseTimestamp(ts string) (float64, error) {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, &FormatError{
			Input:  ts,
			Reason: fmt.Sprintf("expected 3 fields, got %d", len(parts)),
		}
	}

	var values [3]float64
	for i, part := range parts {
		field := strings.TrimSpace(part)
		if hexPrefixed(field) {
			return 0, &FormatError{
				Input:  ts,
				Reason: fmt.Sprintf("field %d is not a decimal number", i+1),
			}
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, &FormatError{
				Input:  ts,
				Reason: fmt.Sprintf("field %d is not a number", i+1),
			}
		}
		values[i] = v
	}

	return values[0]*3600 + values[1]*60 + values[2], nil
}

// ParseFloat also reads hex floats such as 0x1p4; timestamps are decimal.
func hexPrefixed(field string) bool {
	field = strings.TrimLeft(field, "+-")
	return len(field) > 1 && field[0] == '0' && (field[1] == 'x' || field[1] == 'X')
}

// TimestampDuration is ParseTimestamp as a time.Duration.
func TimestampDuration(ts string) (time.Duration, error) {
	seconds, err := ParseTimestamp(ts)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
