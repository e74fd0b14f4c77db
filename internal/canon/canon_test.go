package canon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_KeyOrderingIsDeterministic(t *testing.T) {
	a := map[string]any{"b": 1, "a": 2, "c": 3}
	got, err := Encode(a)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1,"c":3}`, string(got))
}

func TestEncode_IntegersHaveNoFractionalPart(t *testing.T) {
	got, err := Encode(map[string]any{"n": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"n":3}`, string(got))
}

func TestEncode_NonFiniteNumberRejected(t *testing.T) {
	_, err := Encode(map[string]any{"n": math.Inf(1)})
	require.Error(t, err)
}

func TestEncode_DuplicateKeyRejected(t *testing.T) {
	raw := []byte(`{"a":1,"a":2}`)
	_, err := Encode(raw)
	require.Error(t, err)
}

func TestEncode_ControlCharactersEscaped(t *testing.T) {
	got, err := Encode(map[string]any{"s": "a\x01b"})
	require.NoError(t, err)
	assert.Equal(t, `{"s":"ab"}`, string(got))
}

func TestEncode_NoWhitespace(t *testing.T) {
	got, err := Encode([]any{1, 2, 3})
	require.NoError(t, err)
	assert.NotContains(t, string(got), " ")
	assert.Equal(t, "[1,2,3]", string(got))
}

func TestEncode_Idempotent(t *testing.T) {
	v := map[string]any{"z": []any{1, "two", true, nil}, "a": 1}
	first, err := Encode(v)
	require.NoError(t, err)

	decoded, err := parseJSON(first)
	require.NoError(t, err)

	second, err := Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestHash_StableAcrossRuns(t *testing.T) {
	v := map[string]any{"x": 1, "y": "two"}
	h1, err := Hash(v)
	require.NoError(t, err)
	h2, err := Hash(v)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}
