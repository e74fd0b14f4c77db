// Package schema implements the structural validators for ProblemSpec,
// ReasoningState, StepResult, and trace records (spec §4.2). Validators are
// pure: they never mutate their input and never consult external
// resources. Rejections enumerate every violated rule rather than failing
// on the first one, so a caller can fix a malformed input in one pass.
package schema

import (
	"fmt"
	"strings"

	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
)

// Violation is one broken rule, carrying the taxonomy code and a
// human-readable description of what failed.
type Violation struct {
	Code    string
	Message string
}

// Result is the outcome of a validation pass: either Valid (no
// violations), or a non-empty Violations slice enumerating every rule that
// failed.
type Result struct {
	Violations []Violation
}

// Valid reports whether the validation pass found no violations.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Err returns a single error summarizing every violation, or nil when
// Valid(). The returned error wraps internal/errors.ErrSchemaInvalid so
// callers can check it with errors.Is.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		msgs = append(msgs, fmt.Sprintf("%s: %s", v.Code, v.Message))
	}
	return fmt.Errorf("%w: %s", reasonerrors.ErrSchemaInvalid, strings.Join(msgs, "; "))
}

// collector accumulates violations across a validation pass.
type collector struct {
	violations []Violation
}

func (c *collector) add(code, format string, args ...any) {
	c.violations = append(c.violations, Violation{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *collector) result() Result {
	return Result{Violations: c.violations}
}
