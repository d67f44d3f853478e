package features

import (
	"errors"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// History is the decoded contract list of one application. Elements that are not
// JSON objects are kept as-is and skipped by every calculator. A nil or empty
// History means the applicant has no history at all.
type History []any

// Contract is one element of a History that is a JSON object.
type Contract map[string]any

// DecodeContracts turns the raw contracts field of an application into a History.
// Already decoded lists and objects are used unchanged; text is decoded as JSON.
// Missing, empty, undecodable or scalar values yield nil, never an error.
func DecodeContracts(raw any) History {
	switch value := raw.(type) {
	case nil:
		return nil
	case History:
		return value
	case []any:
		return History(value)
	case []map[string]any:
		history := make(History, 0, len(value))
		for _, contract := range value {
			history = append(history, contract)
		}
		return history
	case map[string]any:
		return objectHistory(value)
	case string:
		return decodeText([]byte(value))
	case []byte:
		return decodeText(value)
	default:
		return nil
	}
}

func decodeText(data []byte) History {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()

	var document any
	if err := decoder.Decode(&document); err != nil {
		return nil
	}
	// anything after the first document makes the field undecodable
	var trailing any
	if err := decoder.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil
	}

	switch value := document.(type) {
	case []any:
		return History(value)
	case map[string]any:
		return objectHistory(value)
	default:
		return nil
	}
}

// A top-level object iterates as its keys: the history is not empty, yet none of
// its elements is a contract.
func objectHistory(object map[string]any) History {
	if object == nil {
		return nil
	}
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	history := make(History, 0, len(keys))
	for _, key := range keys {
		history = append(history, key)
	}
	return history
}

func asContract(element any) (Contract, bool) {
	switch value := element.(type) {
	case Contract:
		return value, value != nil
	case map[string]any:
		return Contract(value), value != nil
	default:
		return nil, false
	}
}

// Has reports whether key is present with a non-null value.
func (c Contract) Has(key string) bool {
	value, ok := c[key]
	return ok && value != nil
}

// Filled reports whether key holds a non-empty value: not null, not an empty
// string, not numeric zero, not false and not an empty list or object.
func (c Contract) Filled(key string) bool {
	value, ok := c[key]
	if !ok {
		return false
	}
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// Text returns the value of key when it is a string.
func (c Contract) Text(key string) (string, bool) {
	text, ok := c[key].(string)
	return text, ok
}

// Date parses the value of key as a DD.MM.YYYY date.
func (c Contract) Date(key string) (time.Time, bool) {
	text, ok := c.Text(key)
	if !ok {
		return time.Time{}, false
	}
	return ParseDate(text, DayMonthYear)
}

// Amount converts the value of key to an integer. Integer text and integral numbers
// convert exactly, fractional numbers truncate toward zero and anything else,
// including decimal text, is rejected. Values beyond the int64 range saturate.
func (c Contract) Amount(key string) (int64, bool) {
	switch v := c[key].(type) {
	case string:
		return parseInteger(strings.TrimSpace(v))
	case json.Number:
		if amount, ok := parseInteger(string(v)); ok {
			return amount, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return truncate(f)
	case float64:
		return truncate(v)
	case int:
		return int64(v), true
	case int64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func parseInteger(text string) (int64, bool) {
	amount, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		// ParseInt already returns the clamped bound on ErrRange
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return amount, true
		}
		return 0, false
	}
	return amount, true
}

func truncate(f float64) (int64, bool) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, false
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	}
	return int64(f), true
}

// addSaturated adds b to a, sticking to the int64 bounds instead of wrapping.
func addSaturated(a, b int64) int64 {
	sum := a + b
	switch {
	case a > 0 && b > 0 && sum < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && sum >= 0:
		return math.MinInt64
	}
	return sum
}
