// Package fields holds the naming policy of channel fields and the pure
// operations over a channel's declared field list.
package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/quka-ai/quka-iot/pkg/types"
)

var namePattern = regexp.MustCompile(`^[a-z0-9]+$`)

var (
	ErrInvalidName   = errors.New("invalid field name")
	ErrEmptyFields   = errors.New("empty fields")
	ErrFieldNotFound = errors.New("field not found")
	ErrFieldExist    = errors.New("field already declared")
	ErrNoValidFields = errors.New("no valid fields")
	ErrNotScalar     = errors.New("field value must be a string, number or boolean")
)

func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Normalize validates every name against the policy and collapses duplicates,
// keeping the first occurrence.
func Normalize(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, ErrEmptyFields
	}
	for _, n := range names {
		if !ValidName(n) {
			return nil, fmt.Errorf("%q: %w", n, ErrInvalidName)
		}
	}
	return lo.Uniq(names), nil
}

// Add appends names that are not declared yet. The second result reports
// whether the list changed.
func Add(declared []string, names ...string) ([]string, bool, error) {
	if len(names) == 0 {
		return declared, false, ErrEmptyFields
	}
	names, err := Normalize(names)
	if err != nil {
		return declared, false, err
	}
	res := append([]string{}, declared...)
	changed := false
	for _, n := range names {
		if lo.Contains(res, n) {
			continue
		}
		res = append(res, n)
		changed = true
	}
	return res, changed, nil
}

func Declared(declared []string, name string) bool {
	return lo.Contains(declared, name)
}

// Remove drops the given names and returns the ones that were actually declared.
func Remove(declared []string, names ...string) ([]string, []string) {
	var removed []string
	res := lo.Filter(declared, func(item string, _ int) bool {
		if lo.Contains(names, item) {
			removed = append(removed, item)
			return false
		}
		return true
	})
	return res, removed
}

// Rename replaces oldName with newName keeping its position.
func Rename(declared []string, oldName, newName string) ([]string, error) {
	idx := lo.IndexOf(declared, oldName)
	if idx < 0 {
		return declared, fmt.Errorf("%q: %w", oldName, ErrFieldNotFound)
	}
	if !ValidName(newName) {
		return declared, fmt.Errorf("%q: %w", newName, ErrInvalidName)
	}
	if oldName == newName {
		return declared, nil
	}
	if lo.Contains(declared, newName) {
		return declared, fmt.Errorf("%q: %w", newName, ErrFieldExist)
	}
	res := append([]string{}, declared...)
	res[idx] = newName
	return res, nil
}

// Filter keeps the submitted pairs whose key is declared, in declared order.
// Unknown keys are returned separately so callers can log them.
func Filter(declared []string, submitted map[string]any) (types.FieldData, []string, error) {
	var data types.FieldData
	for _, name := range declared {
		v, ok := submitted[name]
		if !ok {
			continue
		}
		if !IsScalar(v) {
			return nil, nil, fmt.Errorf("%q: %w", name, ErrNotScalar)
		}
		data = append(data, types.FieldValue{Name: name, Value: v})
	}

	var dropped []string
	for k := range submitted {
		if !lo.Contains(declared, k) {
			dropped = append(dropped, k)
		}
	}
	sort.Strings(dropped)

	if len(data) == 0 {
		return nil, dropped, ErrNoValidFields
	}
	return data, dropped, nil
}

func IsScalar(v any) bool {
	switch v.(type) {
	case string, bool, json.Number,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// CoerceQueryValue turns a query-string value into the scalar it spells:
// numbers and booleans are typed, anything else stays a string. Values with
// a leading zero such as "007" stay strings so ids and zip codes survive.
func CoerceQueryValue(raw string) any {
	if hasLeadingZero(raw) {
		return raw
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

func hasLeadingZero(raw string) bool {
	digits := strings.TrimLeft(raw, "+-")
	return len(digits) > 1 && digits[0] == '0' && digits[1] >= '0' && digits[1] <= '9'
}

// ParseList splits a comma separated filter such as "temp,hum".
func ParseList(raw string) []string {
	return lo.Uniq(lo.Compact(lo.Map(strings.Split(raw, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})))
}
