package schema

import (
	"strings"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
)

// ValidateStepResult enforces spec.md §3's StepResult contract: output
// required iff success, errors required iff failed, skipped carries
// neither, and started_at <= finished_at.
func ValidateStepResult(r domain.StepResult) Result {
	c := &collector{}

	if strings.TrimSpace(string(r.Step)) == "" {
		c.add("schema_invalid", "step must be non-empty")
	}
	if !registeredStep(r.Step) {
		c.add("step_unknown", "step %q is not registered", r.Step)
	}
	if r.FinishedAt.Before(r.StartedAt) {
		c.add("schema_invalid", "finished_at must not be before started_at")
	}

	switch r.Status {
	case constants.StepStatusSuccess:
		if r.Output == nil {
			c.add("step_contract_violation", "status success requires output")
		}
		if len(r.Errors) != 0 {
			c.add("step_contract_violation", "status success must not carry errors")
		}
		if r.OutputHash == "" {
			c.add("schema_invalid", "status success requires output_hash")
		}
	case constants.StepStatusFailed:
		if len(r.Errors) == 0 {
			c.add("step_contract_violation", "status failed requires at least one error")
		}
		if r.Output != nil {
			c.add("step_contract_violation", "status failed must not carry output")
		}
		for i, e := range r.Errors {
			if strings.TrimSpace(e.Code) == "" {
				c.add("schema_invalid", "errors[%d].code must be non-empty", i)
			}
			if strings.TrimSpace(e.Message) == "" {
				c.add("schema_invalid", "errors[%d].message must be non-empty", i)
			}
		}
	case constants.StepStatusSkipped:
		if r.Output != nil {
			c.add("step_contract_violation", "status skipped must not carry output")
		}
		if len(r.Errors) != 0 {
			c.add("step_contract_violation", "status skipped must not carry errors")
		}
	default:
		c.add("schema_invalid", "status %q is not one of success, failed, skipped", r.Status)
	}

	if r.InputHash == "" {
		c.add("schema_invalid", "input_hash must be set")
	}

	return c.result()
}

func registeredStep(name constants.StepName) bool {
	for _, s := range constants.GraphOrder {
		if s == name {
			return true
		}
	}
	return false
}
