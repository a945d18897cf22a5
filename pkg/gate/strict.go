package gate

import "fmt"

// Strictness decides whether a missing baseline fails the run. When not
// set explicitly it is derived from a CI-presence signal: CI runs are
// strict by default, local runs are lenient.
func Strictness(explicit *bool, ciPresent bool) bool {
	if explicit != nil {
		return *explicit
	}
	return ciPresent
}

// Finalize applies strict-mode policy to a comparison outcome. This is
// the single place the process exit status is decided: the cmd layer
// maps Passed to the exit code and nothing else does.
func Finalize(o *Outcome, strict bool) *Outcome {
	if !o.BaselineFound {
		if strict {
			o.Passed = false
			o.Rationale = fmt.Sprintf("baseline missing in strict mode: no baseline document at %s", o.BaselinePath)
		} else {
			o.Passed = true
			o.Skipped = true
			o.Rationale = fmt.Sprintf("no baseline document at %s; comparison skipped (set strict mode to fail instead)", o.BaselinePath)
		}
		return o
	}
	o.Passed = len(o.Violations) == 0
	return o
}

// ExitCode maps a finalized outcome to the process exit status the CI
// caller reads.
func ExitCode(o *Outcome) int {
	if o.Passed {
		return 0
	}
	return 1
}
