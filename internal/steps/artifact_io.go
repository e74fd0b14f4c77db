package steps

import "encoding/json"

// readArtifact decodes the artifact stored under key into target. Because
// artifacts.<key> may hold either a native Go value (within a single
// process run) or a map[string]any (after being read back from a replayed
// trace), readArtifact always routes through one JSON round-trip so every
// step sees the same concrete shape regardless of where the state came
// from. Returns ok=false if key is absent; target is left untouched in
// that case.
func readArtifact(artifacts map[string]any, key string, target any) (ok bool) {
	raw, present := artifacts[key]
	if !present {
		return false
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(b, target); err != nil {
		return false
	}
	return true
}
