package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/kyledewey/gradr/internal/testoutput"
)

// Phase names the stage of a build that produced a failure, matching
// the wire representation the dashboard consumes.
type Phase string

const (
	PhaseSetupEnv Phase = "setup_env_failure"
	PhaseBuild    Phase = "build_failure"
	PhaseTest     Phase = "test_failure"
)

// BuildResult is a tagged union over the four possible outcomes of a
// WholeBuild: a failure in one of three phases, or a successful test
// run carrying per-test verdicts. Exactly one of the fields is set.
type BuildResult struct {
	Failure *FailureResult
	Success *SuccessResult
}

// FailureResult describes which phase failed and why.
type FailureResult struct {
	Phase   Phase
	Message string
}

// SuccessResult carries the aggregated per-test verdicts from a
// completed test phase.
type SuccessResult struct {
	Tests map[string]testoutput.Verdict
}

func SetupEnvFailure(err error) BuildResult {
	return BuildResult{Failure: &FailureResult{Phase: PhaseSetupEnv, Message: err.Error()}}
}

func BuildFailure(err error) BuildResult {
	return BuildResult{Failure: &FailureResult{Phase: PhaseBuild, Message: err.Error()}}
}

func TestFailure(err error) BuildResult {
	return BuildResult{Failure: &FailureResult{Phase: PhaseTest, Message: err.Error()}}
}

func TestSuccess(tests map[string]testoutput.Verdict) BuildResult {
	return BuildResult{Success: &SuccessResult{Tests: tests}}
}

// wireFailure and wireSuccess mirror the on-the-wire JSON shapes:
// {"setup_env_failure": "<msg>"} or {"success": {"test1": true, ...}}.
type wireFailure map[Phase]string
type wireSuccess struct {
	Success map[string]bool `json:"success"`
}

func (r BuildResult) MarshalJSON() ([]byte, error) {
	if r.Failure != nil {
		return json.Marshal(wireFailure{r.Failure.Phase: r.Failure.Message})
	}
	if r.Success != nil {
		tests := make(map[string]bool, len(r.Success.Tests))
		for name, v := range r.Success.Tests {
			tests[name] = v == testoutput.Pass
		}
		return json.Marshal(wireSuccess{Success: tests})
	}
	return nil, fmt.Errorf("build result has neither a failure nor a success set")
}

func (r *BuildResult) UnmarshalJSON(data []byte) error {
	var success wireSuccess
	if err := json.Unmarshal(data, &success); err == nil && success.Success != nil {
		tests := make(map[string]testoutput.Verdict, len(success.Success))
		for name, passed := range success.Success {
			if passed {
				tests[name] = testoutput.Pass
			} else {
				tests[name] = testoutput.Fail
			}
		}
		r.Success = &SuccessResult{Tests: tests}
		return nil
	}

	var failure wireFailure
	if err := json.Unmarshal(data, &failure); err != nil {
		return fmt.Errorf("build result is neither a success nor a recognized failure shape: %w", err)
	}
	for _, phase := range []Phase{PhaseSetupEnv, PhaseBuild, PhaseTest} {
		if msg, ok := failure[phase]; ok {
			r.Failure = &FailureResult{Phase: phase, Message: msg}
			return nil
		}
	}
	return fmt.Errorf("build result failure shape has no recognized phase key")
}
