// Package loop implements the Loop Controller (spec §4.7): evaluating a
// stop condition against the post-state of the loop's end_step and issuing
// repeat/stop/max_iterations_reached decisions. The controller never
// mutates ReasoningState; it only decides what the engine does next and
// what control record the Trace Writer appends.
package loop

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
)

// pathPrefix is the only root a stop-condition path may resolve against.
// Restricting the grammar to this prefix (spec §9 Redesign Flags) keeps
// evaluation a bounded dotted-path lookup instead of an arbitrary
// expression language.
const pathPrefix = "artifacts."

// ResolvePath walks path (artifacts.<name>(.<key>)*) against state's
// artifacts map. A missing node at any step is treated as absent (ok=false),
// not an error, per spec §4.7 step 1.
func ResolvePath(state domain.ReasoningState, path string) (value any, ok bool, err error) {
	if !strings.HasPrefix(path, pathPrefix) {
		return nil, false, fmt.Errorf("%w: path %q must begin with %q", reasonerrors.ErrStopConditionInvalid, path, pathPrefix)
	}
	segments := strings.Split(strings.TrimPrefix(path, pathPrefix), ".")
	if len(segments) == 0 || segments[0] == "" {
		return nil, false, fmt.Errorf("%w: path %q names no artifact", reasonerrors.ErrStopConditionInvalid, path)
	}

	root, present := state.Artifacts[segments[0]]
	if !present {
		return nil, false, nil
	}

	// Within a single process run an artifact value is whatever native Go
	// value the step's Artifact.CanonicalPayload() returned (e.g. the
	// unexported verificationOutput struct Verify builds), not a
	// map[string]any — that shape only appears after a trace is replayed
	// through encoding/json. Route it through the same JSON round trip
	// internal/steps/artifact_io.go's readArtifact uses so the dotted walk
	// below always sees the same map[string]any/[]any/json-scalar shape
	// regardless of where the state came from.
	current, err := normalizeArtifactValue(root)
	if err != nil {
		return nil, false, err
	}

	for _, key := range segments[1:] {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false, nil
		}
		current, present = m[key]
		if !present {
			return nil, false, nil
		}
	}
	return current, true, nil
}

// normalizeArtifactValue reduces v to the map[string]any/[]any/json-scalar
// tree encoding/json would produce on decode, so ResolvePath's dotted walk
// never has to type-switch over every concrete Artifact payload type the
// step registry might return.
func normalizeArtifactValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reasonerrors.ErrStopConditionInvalid, err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", reasonerrors.ErrStopConditionInvalid, err)
	}
	return out, nil
}

// Evaluate implements spec §4.7 step 2: operator(actual, value) with types
// required to match. equals/not_equals compare across any comparable pair;
// ordering operators (gt/gte/lt/lte) require both sides to be numeric and
// fail closed (return false, not an error) on a type mismatch or an absent
// path, matching "fails closed on mismatch".
func Evaluate(actual any, present bool, operator constants.StopOperator, expected any) bool {
	switch operator {
	case constants.StopOperatorEquals:
		return present && equalValues(actual, expected)
	case constants.StopOperatorNotEquals:
		return !present || !equalValues(actual, expected)
	case constants.StopOperatorGT, constants.StopOperatorGTE, constants.StopOperatorLT, constants.StopOperatorLTE:
		if !present {
			return false
		}
		a, aOK := asFloat(actual)
		b, bOK := asFloat(expected)
		if !aOK || !bOK {
			return false
		}
		switch operator {
		case constants.StopOperatorGT:
			return a > b
		case constants.StopOperatorGTE:
			return a >= b
		case constants.StopOperatorLT:
			return a < b
		case constants.StopOperatorLTE:
			return a <= b
		}
	}
	return false
}

func equalValues(a, b any) bool {
	if af, aOK := asFloat(a); aOK {
		if bf, bOK := asFloat(b); bOK {
			return af == bf
		}
	}
	return a == b
}

// asFloat reports whether v is a JSON-shaped numeric value and its
// representation as a float64, the common denominator for json.Number,
// int, int64, and float64 (the canonical encoder and decoders all funnel
// numbers through one of these).
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
