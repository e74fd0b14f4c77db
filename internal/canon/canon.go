// Package canon implements the json-c14n-v1 canonical JSON encoding and the
// SHA-256 hashing built on top of it (spec §4.1). It is the only path to a
// hash anywhere in the reasoning kernel: the State Manager, Step Registry,
// and Trace Writer all call Hash (or Encode, when they need the raw bytes)
// rather than reaching for encoding/json directly.
//
// Canonicalization rules: UTF-8 output; object keys sorted by raw byte
// order with duplicate keys rejected; array order preserved; strings
// escaped per JSON with lowercase \uXXXX for control codes; integers
// emitted with no fractional part; non-finite floats rejected; booleans
// and null in lowercase; no whitespace between tokens.
//
// Grounded on the "encode the record without its hash field, then hash"
// idiom used throughout tamper-evident audit logs in the retrieved example
// pack (see DESIGN.md).
package canon

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
)

// Encode serializes v into its canonical byte representation.
//
// v may be raw JSON text ([]byte or json.RawMessage) — in which case it is
// parsed with duplicate-object-key detection — or any Go value
// encoding/json can marshal (structs, maps, slices, scalars). Values that
// arrive as raw bytes are the only ones that can legally contain a
// duplicate key (a literal Go map cannot), so that is where the rejection
// rule bites in practice: model-provider output bytes, request bodies, and
// any other externally-sourced JSON text routed through the encoder before
// being hashed.
//
// Encode fails with internal/errors.ErrCanonicalization on duplicate
// object keys, non-finite numbers, or non-string map keys.
func Encode(v any) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 256)
	buf, err = appendValue(buf, normalized)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Hash returns the lowercase hex SHA-256 digest of v's canonical encoding.
func Hash(v any) (string, error) {
	b, err := Encode(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// normalize reduces v to a tree of map[string]any / []any / json.Number /
// string / bool / nil, routing everything through the duplicate-checking
// parser below.
func normalize(v any) (any, error) {
	var data []byte
	switch raw := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		data = raw
	case json.RawMessage:
		data = raw
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", reasonerrors.ErrCanonicalization, err)
		}
		data = b
	}
	return parseJSON(data)
}

// parseJSON parses JSON text into a normalized tree, rejecting duplicate
// object keys. It reuses encoding/json's tokenizer (dec.Token) rather than
// hand-rolling a lexer, while adding the duplicate-key check stdlib's own
// map-decoding silently omits.
func parseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON value", reasonerrors.ErrCanonicalization)
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reasonerrors.ErrCanonicalization, err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("%w: unexpected delimiter %q", reasonerrors.ErrCanonicalization, t)
		}
	default:
		return tok, nil
	}
}

func parseObject(dec *json.Decoder) (map[string]any, error) {
	m := make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", reasonerrors.ErrCanonicalization, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string object key", reasonerrors.ErrCanonicalization)
		}
		if _, exists := m[key]; exists {
			return nil, fmt.Errorf("%w: duplicate key %q", reasonerrors.ErrCanonicalization, key)
		}
		val, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		m[key] = val
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return nil, fmt.Errorf("%w: %w", reasonerrors.ErrCanonicalization, err)
	}
	return m, nil
}

func parseArray(dec *json.Decoder) ([]any, error) {
	arr := make([]any, 0)
	for dec.More() {
		val, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := dec.Token(); err != nil { // consume closing ']'
		return nil, fmt.Errorf("%w: %w", reasonerrors.ErrCanonicalization, err)
	}
	return arr, nil
}

// appendValue writes v's canonical bytes to buf, returning the extended
// slice. v must already be normalized (map[string]any, []any, json.Number,
// string, bool, or nil).
func appendValue(buf []byte, v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return append(buf, "null"...), nil
	case bool:
		if val {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case json.Number:
		return appendNumber(buf, val)
	case string:
		return appendString(buf, val), nil
	case map[string]any:
		return appendObject(buf, val)
	case []any:
		return appendArray(buf, val)
	default:
		return nil, fmt.Errorf("%w: unsupported value type %T", reasonerrors.ErrCanonicalization, v)
	}
}

func appendNumber(buf []byte, n json.Number) ([]byte, error) {
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid number %q", reasonerrors.ErrCanonicalization, n)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: non-finite number %q", reasonerrors.ErrCanonicalization, n)
	}
	// Integers are emitted with no fractional part.
	if i, ierr := n.Int64(); ierr == nil {
		return append(buf, strconv.FormatInt(i, 10)...), nil
	}
	return append(buf, strconv.FormatFloat(f, 'g', -1, 64)...), nil
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if r < 0x20 {
				buf = append(buf, fmt.Sprintf(`\u%04x`, r)...)
			} else {
				buf = append(buf, string(r)...)
			}
		}
	}
	return append(buf, '"')
}

func appendObject(buf []byte, m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf = append(buf, '{')
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendString(buf, k)
		buf = append(buf, ':')
		var err error
		buf, err = appendValue(buf, m[k])
		if err != nil {
			return nil, err
		}
	}
	return append(buf, '}'), nil
}

func appendArray(buf []byte, arr []any) ([]byte, error) {
	buf = append(buf, '[')
	for i, elem := range arr {
		if i > 0 {
			buf = append(buf, ',')
		}
		var err error
		buf, err = appendValue(buf, elem)
		if err != nil {
			return nil, err
		}
	}
	return append(buf, ']'), nil
}
