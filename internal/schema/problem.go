package schema

import (
	"strconv"
	"strings"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
)

// SupportedMajorVersion is the MAJOR component of the semver strings this
// engine accepts. Higher MINOR/PATCH values are accepted once every
// required field is understood (spec §3).
const SupportedMajorVersion = 1

// ValidateProblemSpec enforces every rule spec.md §3 attaches to
// ProblemSpec. It never mutates p.
func ValidateProblemSpec(p domain.ProblemSpec) Result {
	c := &collector{}

	major, ok := parseMajorVersion(p.Version)
	if !ok {
		c.add("schema_invalid", "version %q is not a valid semver string", p.Version)
	} else if major != SupportedMajorVersion {
		c.add("version_unsupported", "major version %d is not supported (expected %d)", major, SupportedMajorVersion)
	}

	if strings.TrimSpace(p.ID) == "" {
		c.add("schema_invalid", "id must be non-empty")
	}
	if p.CreatedAt.IsZero() {
		c.add("schema_invalid", "created_at must be set")
	}
	if strings.TrimSpace(p.Inputs.Prompt) == "" {
		c.add("schema_invalid", "inputs.prompt must be non-empty after trimming whitespace")
	}
	validateNonEmptyStrings(c, "inputs.constraints", p.Inputs.Constraints)
	validateNonEmptyStrings(c, "inputs.goals", p.Inputs.Goals)

	if p.Settings.Loop != nil && p.Settings.Loop.Enabled {
		validateLoopConfig(c, *p.Settings.Loop)
	}
	for i, vp := range p.Settings.VerificationPaths {
		if strings.TrimSpace(vp.Name) == "" {
			c.add("schema_invalid", "settings.verification_paths[%d].name must be non-empty", i)
		}
	}

	return c.result()
}

func validateNonEmptyStrings(c *collector, field string, values []string) {
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			c.add("schema_invalid", "%s[%d] must be non-empty", field, i)
		}
	}
}

func validateLoopConfig(c *collector, loop domain.LoopConfig) {
	startIdx := stepGraphIndex(loop.StartStep)
	endIdx := stepGraphIndex(loop.EndStep)
	if startIdx < 0 {
		c.add("loop_config_invalid", "start_step %q is not a registered step", loop.StartStep)
	}
	if endIdx < 0 {
		c.add("loop_config_invalid", "end_step %q is not a registered step", loop.EndStep)
	}
	if startIdx >= 0 && endIdx >= 0 && startIdx > endIdx {
		c.add("loop_config_invalid", "start_step %q must not be after end_step %q in graph order", loop.StartStep, loop.EndStep)
	}
	if loop.MaxIterations <= 0 {
		c.add("loop_config_invalid", "max_iterations must be greater than zero, got %d", loop.MaxIterations)
	}
	validateStopCondition(c, loop.StopCondition, loop.Equals)
}

func validateStopCondition(c *collector, sc domain.StopCondition, legacyEquals any) {
	operator := sc.Operator
	if operator == "" && legacyEquals != nil {
		operator = string(constants.StopOperatorEquals)
	}
	if !strings.HasPrefix(sc.Path, "artifacts.") {
		c.add("stop_condition_invalid", "path %q must begin with \"artifacts.\"", sc.Path)
	}
	switch constants.StopOperator(operator) {
	case constants.StopOperatorEquals, constants.StopOperatorNotEquals,
		constants.StopOperatorGT, constants.StopOperatorGTE,
		constants.StopOperatorLT, constants.StopOperatorLTE:
	default:
		c.add("stop_condition_invalid", "operator %q is not recognized", operator)
	}
	value := sc.Value
	if value == nil {
		value = legacyEquals
	}
	switch value.(type) {
	case string, bool, int, int64, float64:
	default:
		if value == nil {
			c.add("stop_condition_invalid", "value must be set")
		} else {
			c.add("stop_condition_invalid", "value must be a string, integer, or boolean")
		}
	}
}

func stepGraphIndex(name string) int {
	for i, s := range constants.GraphOrder {
		if string(s) == name {
			return i
		}
	}
	return -1
}

func parseMajorVersion(version string) (int, bool) {
	parts := strings.SplitN(version, ".", 2)
	if len(parts) == 0 || parts[0] == "" {
		return 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return 0, false
	}
	return major, true
}
