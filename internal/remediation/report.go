/*
Copyright (c) 2025 Fsas Technologies Inc., or its subsidiaries. All Rights Reserved.

Licensed under the Mozilla Public License Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://mozilla.org/MPL/2.0/


Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package remediation

import (
	"fmt"
	"strings"

	"terraform-provider-efibootorder/internal/bootorder"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

// Outcome is the final classification of a host run.
type Outcome string

const (
	OutcomeCompliant          Outcome = "compliant"
	OutcomeNonCompliant       Outcome = "non-compliant"
	OutcomeFixed              Outcome = "fixed"
	OutcomeVerificationFailed Outcome = "verification-failed"
	OutcomeFailed             Outcome = "failed"
)

var outcomes = []Outcome{OutcomeCompliant, OutcomeNonCompliant, OutcomeFixed, OutcomeVerificationFailed, OutcomeFailed}

// Fatal reports whether the outcome makes the whole run unsuccessful.
func (o Outcome) Fatal() bool {
	return o == OutcomeVerificationFailed || o == OutcomeFailed
}

func outcomeOf(state string) Outcome {
	switch state {
	case StateCompliant:
		return OutcomeCompliant
	case StateSkipped:
		return OutcomeNonCompliant
	case StateFixed:
		return OutcomeFixed
	case StateVerificationFailed:
		return OutcomeVerificationFailed
	default:
		return OutcomeFailed
	}
}

// HostResult is everything learned about one host during a run.
type HostResult struct {
	Host    string
	State   string
	Outcome Outcome

	Current   bootorder.Order
	Positions bootorder.Positions
	Planned   bootorder.Order
	Diff      []bootorder.DiffLine

	// Err is set for fatal outcomes only.
	Err      error
	Warnings []error
}

// Report collects the results of a run in host input order.
type Report struct {
	Results []HostResult
}

// Err returns all fatal host errors, or nil.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, res := range r.Results {
		if res.Outcome.Fatal() && res.Err != nil {
			result = multierror.Append(result, res.Err)
		}
	}
	return result.ErrorOrNil()
}

// ExitCode is 1 if any host ended in a fatal state, otherwise 0.
func (r *Report) ExitCode() int {
	if lo.SomeBy(r.Results, func(res HostResult) bool { return res.Outcome.Fatal() }) {
		return 1
	}
	return 0
}

// Count returns the number of hosts that ended with outcome.
func (r *Report) Count(outcome Outcome) int {
	return lo.CountBy(r.Results, func(res HostResult) bool { return res.Outcome == outcome })
}

// Summary renders a single line such as "3 hosts: 1 compliant, 2 fixed".
func (r *Report) Summary() string {
	parts := lo.FilterMap(outcomes, func(o Outcome, _ int) (string, bool) {
		n := r.Count(o)
		return fmt.Sprintf("%d %s", n, o), n > 0
	})

	noun := "hosts"
	if len(r.Results) == 1 {
		noun = "host"
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d %s", len(r.Results), noun)
	}
	return fmt.Sprintf("%d %s: %s", len(r.Results), noun, strings.Join(parts, ", "))
}
