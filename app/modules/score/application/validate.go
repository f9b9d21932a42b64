package scoreservice

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MaxIDLength is the longest accepted player or game id, in characters.
	MaxIDLength = 50

	// maxExactFloat is the largest integer a float64 represents exactly.
	maxExactFloat = 1 << 53
)

// ParseScore converts a raw submitted value into a score. Accepted inputs are
// Go integers, finite integral floats, json.Number and base-10 numeric strings.
// Anything negative, fractional or non-numeric yields ErrInvalidScore.
func ParseScore(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("%w: score is required", ErrInvalidScore)
	case int:
		return nonNegative(int64(v))
	case int8:
		return nonNegative(int64(v))
	case int16:
		return nonNegative(int64(v))
	case int32:
		return nonNegative(int64(v))
	case int64:
		return nonNegative(v)
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return fromUint(v)
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case json.Number:
		return fromString(v.String())
	case string:
		return fromString(v)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidScore, raw)
	}
}

func nonNegative(v int64) (int64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrInvalidScore, v)
	}
	return v, nil
}

func fromUint(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d is out of range", ErrInvalidScore, v)
	}
	return int64(v), nil
}

func fromFloat(v float64) (int64, error) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0, fmt.Errorf("%w: %v is not finite", ErrInvalidScore, v)
	case v < 0:
		return 0, fmt.Errorf("%w: %v is negative", ErrInvalidScore, v)
	case v != math.Trunc(v):
		return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidScore, v)
	case v > maxExactFloat:
		return 0, fmt.Errorf("%w: %v is out of range", ErrInvalidScore, v)
	}
	return int64(v), nil
}

func fromString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: score is empty", ErrInvalidScore)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return nonNegative(n)
	}
	// "60.0" and "6e1" are integral numbers in another spelling.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidScore, s)
	}
	return fromFloat(f)
}

// NormalizeID trims an id and checks it is non-empty and at most MaxIDLength characters.
func NormalizeID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	}
	if utf8.RuneCountInString(id) > MaxIDLength {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidArgument, field, MaxIDLength)
	}
	return id, nil
}
