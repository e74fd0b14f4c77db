package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mrz1836/reasonkernel/internal/canon"
	"github.com/mrz1836/reasonkernel/internal/constants"
	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
)

// RawRecord is an unparsed trace line together with enough decoded fields
// to determine its kind before the caller commits to a full struct decode.
type RawRecord struct {
	Index       int    `json:"index"`
	ControlType string `json:"control_type"`
	RecordHash  string `json:"record_hash"`
	PrevHash    string `json:"prev_hash"`
}

// Kind reports whether the record is the header, a step record, or a
// control record.
func (r RawRecord) Kind() constants.RecordKind {
	switch {
	case r.Index == 0:
		return constants.RecordKindHeader
	case r.ControlType == "loop":
		return constants.RecordKindControl
	default:
		return constants.RecordKindStep
	}
}

// Verify recomputes each record's hash from its own bytes and checks it
// against the recorded record_hash, and checks that each record's
// prev_hash matches the previous record's record_hash and that index is
// strictly monotonic. It reads the entire trace before returning, since a
// single broken link invalidates everything after it.
func Verify(src io.Reader) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var lastHash string
	var lastIndex = -1

	for scanner.Scan() {
		line := scanner.Bytes()
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("%w: malformed record: %w", reasonerrors.ErrTraceChainBroken, err)
		}

		index, _ := rec["index"].(float64)
		if int(index) != lastIndex+1 {
			return fmt.Errorf("%w: index %d is not monotonic after %d", reasonerrors.ErrTraceChainBroken, int(index), lastIndex)
		}

		recordHash, _ := rec["record_hash"].(string)
		prevHash, _ := rec["prev_hash"].(string)
		if lastIndex >= 0 && prevHash != lastHash {
			return fmt.Errorf("%w: prev_hash at index %d does not match prior record_hash", reasonerrors.ErrTraceChainBroken, int(index))
		}

		delete(rec, "record_hash")
		recomputed, err := canon.Hash(rec)
		if err != nil {
			return err
		}
		if recomputed != recordHash {
			return fmt.Errorf("%w: record_hash mismatch at index %d", reasonerrors.ErrHashMismatch, int(index))
		}

		lastHash = recordHash
		lastIndex = int(index)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if lastIndex < 0 {
		return fmt.Errorf("%w: empty trace", reasonerrors.ErrTraceChainBroken)
	}
	return nil
}
