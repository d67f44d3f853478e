package features

import (
	"math"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContracts(t *testing.T) {
	t.Run("should return nil for missing or empty values", func(t *testing.T) {
		assert.Nil(t, DecodeContracts(nil))
		assert.Nil(t, DecodeContracts(""))
		assert.Nil(t, DecodeContracts("   "))
	})

	t.Run("should return nil for undecodable text", func(t *testing.T) {
		assert.Nil(t, DecodeContracts("[{"))
		assert.Nil(t, DecodeContracts("{'claim_id': 1}"))
		assert.Nil(t, DecodeContracts("[] []"))
	})

	t.Run("should return nil for scalar documents and unsupported types", func(t *testing.T) {
		assert.Nil(t, DecodeContracts("42"))
		assert.Nil(t, DecodeContracts(`"text"`))
		assert.Nil(t, DecodeContracts("null"))
		assert.Nil(t, DecodeContracts(3.5))
	})

	t.Run("should pass structured lists through unchanged", func(t *testing.T) {
		raw := []any{map[string]any{"claim_id": 1}, "not a contract"}

		history := DecodeContracts(raw)

		assert.Equal(t, History(raw), history)
	})

	t.Run("should decode JSON text lists", func(t *testing.T) {
		history := DecodeContracts(`[{"claim_id": 7, "bank": null}, 5]`)

		require.Len(t, history, 2)
		contract, ok := asContract(history[0])
		require.True(t, ok)
		assert.True(t, contract.Has("claim_id"))
		assert.False(t, contract.Has("bank"))
		_, ok = asContract(history[1])
		assert.False(t, ok)
	})

	t.Run("should decode a top-level object into keys that are not contracts", func(t *testing.T) {
		history := DecodeContracts(`{"b": {"claim_id": 1}, "a": 2}`)

		assert.Equal(t, History{"a", "b"}, history)
	})

	t.Run("should decode a structured list and its JSON text to the same history", func(t *testing.T) {
		text := `[{"claim_id":1,"claim_date":"01.01.2024","bank":"ABC","loan_summa":"1000","contract_date":"01.01.2023","summa":1000}]`
		var structured []any
		decoder := json.NewDecoder(strings.NewReader(text))
		decoder.UseNumber()
		require.NoError(t, decoder.Decode(&structured))

		if diff := cmp.Diff(DecodeContracts(structured), DecodeContracts(text)); diff != "" {
			t.Errorf("decoded histories differ (-structured +text):\n%s", diff)
		}
	})
}

func TestContract_Filled(t *testing.T) {
	contract := Contract{
		"empty_string": "",
		"text":         "x",
		"zero":         json.Number("0"),
		"zero_float":   0.0,
		"number":       json.Number("12"),
		"null":         nil,
		"false":        false,
		"empty_list":   []any{},
		"list":         []any{1},
	}

	assert.False(t, contract.Filled("missing"))
	assert.False(t, contract.Filled("empty_string"))
	assert.True(t, contract.Filled("text"))
	assert.False(t, contract.Filled("zero"))
	assert.False(t, contract.Filled("zero_float"))
	assert.True(t, contract.Filled("number"))
	assert.False(t, contract.Filled("null"))
	assert.False(t, contract.Filled("false"))
	assert.False(t, contract.Filled("empty_list"))
	assert.True(t, contract.Filled("list"))
}

func TestContract_Amount(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   int64
		wantOK bool
	}{
		{"integer text", "1000", 1000, true},
		{"padded signed text", " -25 ", -25, true},
		{"decimal text", "1000.50", 0, false},
		{"non-numeric text", "abc", 0, false},
		{"integral JSON number", json.Number("1500"), 1500, true},
		{"fractional JSON number", json.Number("99.9"), 99, true},
		{"negative fractional float", -3.7, -3, true},
		{"native int", 42, 42, true},
		{"text above int64", "99999999999999999999", math.MaxInt64, true},
		{"text below int64", "-99999999999999999999", math.MinInt64, true},
		{"JSON number above int64", json.Number("99999999999999999999"), math.MaxInt64, true},
		{"float above int64", 1e20, math.MaxInt64, true},
		{"missing", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Contract{"amount": tt.value}.Amount("amount")

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
