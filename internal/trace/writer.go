// Package trace implements the Trace Writer (spec §4.5): an append-only,
// hash-chained NDJSON sink for header, step, and control records. Every
// record's record_hash is the canonical-encoder hash of the record with
// record_hash itself omitted, and every record but the header carries the
// prior record's record_hash as prev_hash, making the sequence
// tamper-evident.
//
// Grounded on the teacher's internal/task/store.go append-only checkpoint
// persistence idiom, generalized from task checkpoints to the kernel's
// three record kinds.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/reasonkernel/internal/canon"
	"github.com/mrz1836/reasonkernel/internal/domain"
	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
)

// Writer appends NDJSON records to an underlying io.Writer, chaining each
// record's hash to the one before it. A Writer is not safe for concurrent
// use by multiple goroutines without external synchronization beyond what
// its own mutex provides for the append itself, because the engine runner
// is expected to be the sole sequential writer for a given trace.
type Writer struct {
	mu         sync.Mutex
	bw         *bufio.Writer
	log        zerolog.Logger
	lastHash   string
	lastIndex  int
	haveHeader bool
}

// NewWriter constructs a Writer over dst. log receives writer-level
// diagnostics only (e.g. "header written"); it never sees the hashed
// record bytes themselves, since the canonical encoding — not a
// human-readable log line — is what downstream verification trusts.
func NewWriter(dst io.Writer, log zerolog.Logger) *Writer {
	return &Writer{
		bw:  bufio.NewWriter(dst),
		log: log,
	}
}

// WriteHeader appends the trace's index-0 header record. It must be called
// exactly once, before any step or control record. The header carries no
// prev_hash (spec §4.5); it is the chain's root.
func (w *Writer) WriteHeader(h domain.TraceHeader) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.haveHeader {
		return fmt.Errorf("%w: header already written", reasonerrors.ErrTraceChainBroken)
	}
	h.Index = 0

	hash, err := recordHash(headerWithoutHash(h))
	if err != nil {
		return err
	}
	h.RecordHash = hash

	if err := w.appendLine(h); err != nil {
		return err
	}
	w.haveHeader = true
	w.lastHash = hash
	w.lastIndex = 0
	w.log.Debug().Str("trace_id", h.TraceID).Msg("trace header written")
	return nil
}

// WriteStep appends a step record. index must be exactly lastIndex+1;
// prev_hash is filled in automatically from the previous record's
// record_hash.
func (w *Writer) WriteStep(r domain.TraceStepRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.haveHeader {
		return fmt.Errorf("%w: header has not been written", reasonerrors.ErrTraceChainBroken)
	}
	if err := w.checkIndex(r.Index); err != nil {
		return err
	}
	r.PrevHash = w.lastHash

	hash, err := recordHash(stepWithoutHash(r))
	if err != nil {
		return err
	}
	r.RecordHash = hash

	if err := w.appendLine(r); err != nil {
		return err
	}
	w.lastHash = hash
	w.lastIndex = r.Index
	return nil
}

// WriteControl appends a control record emitted by the loop controller.
func (w *Writer) WriteControl(r domain.TraceControlRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.haveHeader {
		return fmt.Errorf("%w: header has not been written", reasonerrors.ErrTraceChainBroken)
	}
	if err := w.checkIndex(r.Index); err != nil {
		return err
	}
	r.ControlType = "loop"
	r.PrevHash = w.lastHash

	hash, err := recordHash(controlWithoutHash(r))
	if err != nil {
		return err
	}
	r.RecordHash = hash

	if err := w.appendLine(r); err != nil {
		return err
	}
	w.lastHash = hash
	w.lastIndex = r.Index
	return nil
}

// Flush flushes any buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bw.Flush()
}

func (w *Writer) checkIndex(index int) error {
	if index != w.lastIndex+1 {
		return fmt.Errorf("%w: index %d is not monotonic after %d", reasonerrors.ErrTraceChainBroken, index, w.lastIndex)
	}
	return nil
}

// appendLine encodes v through the same canonical encoder used for hashing
// and writes it as one LF-terminated line, so the persisted wire bytes are
// themselves canonical JSON (sorted keys, no whitespace, lowercase
// \uXXXX escapes) as spec §4.5/§6 requires for the trace file format, not
// merely hashed with that encoding.
func (w *Writer) appendLine(v any) error {
	b, err := canon.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %w", reasonerrors.ErrCanonicalization, err)
	}
	if _, err := w.bw.Write(b); err != nil {
		return err
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return err
	}
	return nil
}

// recordHash computes the canonical-encoder SHA-256 hash of a record with
// its record_hash field already blanked out.
func recordHash(v any) (string, error) {
	hash, err := canon.Hash(v)
	if err != nil {
		return "", err
	}
	return hash, nil
}

// stepWithoutHash and controlWithoutHash return a shallow copy of r with
// RecordHash cleared, so recordHash is computed over the record as it will
// be verified: every field except the hash itself.
func headerWithoutHash(h domain.TraceHeader) domain.TraceHeader {
	h.RecordHash = ""
	return h
}

func stepWithoutHash(r domain.TraceStepRecord) domain.TraceStepRecord {
	r.RecordHash = ""
	return r
}

func controlWithoutHash(r domain.TraceControlRecord) domain.TraceControlRecord {
	r.RecordHash = ""
	return r
}
