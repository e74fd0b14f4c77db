package loop

import (
	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
)

// Decision is the outcome of one evaluation at the end_step boundary,
// shaped to feed straight into a trace.ControlRecord.
type Decision struct {
	Action        constants.LoopAction
	LoopIteration int
	StartStep     constants.StepName
	EndStep       constants.StepName
}

// Controller evaluates a single ProblemSpec's loop configuration. It holds
// no mutable state across calls; loop_iteration is threaded through by the
// caller (internal/engine), which is the only component that knows how
// many iterations have elapsed.
type Controller struct {
	cfg domain.LoopConfig
}

// New constructs a Controller for the given, already-validated
// LoopConfig. The legacy Equals field is folded into StopCondition.Operator
// up front so the rest of the controller only ever looks at one shape.
func New(cfg domain.LoopConfig) *Controller {
	normalizeLegacyEquals(&cfg)
	return &Controller{cfg: cfg}
}

func normalizeLegacyEquals(cfg *domain.LoopConfig) {
	if cfg.StopCondition.Operator == "" && cfg.Equals != nil {
		cfg.StopCondition.Operator = string(constants.StopOperatorEquals)
	}
	if cfg.StopCondition.Value == nil && cfg.Equals != nil {
		cfg.StopCondition.Value = cfg.Equals
	}
}

// Decide implements spec §4.7's decision protocol, run once after end_step
// executes against postState (the ReasoningState immediately after the
// end_step's StepResult has been applied). priorIterations is the count of
// repeats already taken (0 before the first pass has even finished); the
// pass that just finished is iteration priorIterations+1, and that is the
// number recorded on the returned Decision regardless of its action, per
// spec §8 scenario 3 ("stop on first check" reports loop_iteration=1, not
// 0).
func (c *Controller) Decide(postState domain.ReasoningState, priorIterations int) Decision {
	actual, present, _ := ResolvePath(postState, c.cfg.StopCondition.Path)
	satisfied := Evaluate(actual, present, constants.StopOperator(c.cfg.StopCondition.Operator), c.cfg.StopCondition.Value)

	currentIteration := priorIterations + 1

	decision := Decision{
		LoopIteration: currentIteration,
		StartStep:     constants.StepName(c.cfg.StartStep),
		EndStep:       constants.StepName(c.cfg.EndStep),
	}

	switch {
	case satisfied:
		decision.Action = constants.LoopActionStop
	case currentIteration < c.cfg.MaxIterations:
		decision.Action = constants.LoopActionRepeat
	default:
		decision.Action = constants.LoopActionMaxIterations
	}

	return decision
}

// StartStep returns the configured loop start step.
func (c *Controller) StartStep() constants.StepName { return constants.StepName(c.cfg.StartStep) }

// EndStep returns the configured loop end step.
func (c *Controller) EndStep() constants.StepName { return constants.StepName(c.cfg.EndStep) }
