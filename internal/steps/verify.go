package steps

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
)

type verifyInputs struct {
	Paths    []domain.VerificationPath `json:"paths"`
	Compute  computeOutput             `json:"compute"`
	Evidence evidenceOutput            `json:"evidence"`
}

// verificationPathResult is one configured path's pass/fail signal.
type verificationPathResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
}

// verificationOutput is the aggregate artifact written to
// artifacts.verification (spec §4.4).
type verificationOutput struct {
	Status constants.VerificationStatus `json:"status"`
	Paths  []verificationPathResult     `json:"paths"`
}

// Verify evaluates every configured verification path concurrently via
// errgroup (grounded on the teacher's parallel-validation fan-out idiom)
// and aggregates them into artifacts.verification.status: passed iff every
// path passed. A path with EvidenceRequired fails unless
// artifacts.acquire_evidence recorded Found=true for a subgoal matching
// its name; a path without that requirement always passes, since the core
// engine has no richer evaluator to consult without an external
// collaborator.
func Verify(ctx context.Context, state domain.ReasoningState, deps Dependencies) domain.StepResult {
	started := deps.Clock.Now()

	var compute computeOutput
	readArtifact(state.Artifacts, "compute", &compute)
	var evidence evidenceOutput
	readArtifact(state.Artifacts, "acquire_evidence", &evidence)

	paths := state.Problem.Settings.VerificationPaths
	inputs := verifyInputs{Paths: paths, Compute: compute, Evidence: evidence}

	results := make([]verificationPathResult, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}
			results[i] = verificationPathResult{Name: p.Name, Passed: evaluatePath(p, evidence)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		finished := deps.Clock.Now()
		return failure(constants.StepVerify, started, finished, inputs, "collaborator_timeout", err.Error())
	}

	status := constants.VerificationPassed
	for _, r := range results {
		if !r.Passed {
			status = constants.VerificationFailed
			break
		}
	}

	finished := deps.Clock.Now()
	return success(constants.StepVerify, started, finished, inputs, domain.RawArtifact{Key: "verification", Payload: verificationOutput{Status: status, Paths: results}}, nil)
}

func evaluatePath(p domain.VerificationPath, evidence evidenceOutput) bool {
	if !p.EvidenceRequired {
		return true
	}
	for _, item := range evidence.Items {
		if item.Subgoal == p.Name && item.Found {
			return true
		}
	}
	return false
}
