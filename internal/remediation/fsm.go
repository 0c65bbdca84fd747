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
	"context"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/looplab/fsm"
)

// Host states. A host run starts in StateFetch and ends in one of the terminal
// states.
const (
	StateFetch              = "fetch"
	StateClassify           = "classify"
	StateValidate           = "validate"
	StateCompliant          = "compliant"
	StatePlan               = "plan"
	StateSkipped            = "skipped"
	StateWrite              = "write"
	StateReset              = "reset"
	StateReverify           = "reverify"
	StateFixed              = "fixed"
	StateVerificationFailed = "verification-failed"
	StateFailed             = "failed"
)

const (
	EventFetched    = "fetched"
	EventClassified = "classified"
	EventCompliant  = "compliant"
	EventViolated   = "violated"
	EventSkipped    = "skipped"
	EventPlanned    = "planned"
	EventWritten    = "written"
	EventReset      = "reset"
	EventVerified   = "verified"
	EventMismatched = "mismatched"
	EventFailed     = "failed"
)

// Events returns the transition table of a single host run.
func Events() fsm.Events {
	return fsm.Events{
		{Name: EventFetched, Src: []string{StateFetch}, Dst: StateClassify},
		{Name: EventClassified, Src: []string{StateClassify}, Dst: StateValidate},
		{Name: EventCompliant, Src: []string{StateValidate}, Dst: StateCompliant},
		{Name: EventViolated, Src: []string{StateValidate}, Dst: StatePlan},
		// report-only runs stop after printing the plan
		{Name: EventSkipped, Src: []string{StatePlan}, Dst: StateSkipped},
		{Name: EventPlanned, Src: []string{StatePlan}, Dst: StateWrite},
		{Name: EventWritten, Src: []string{StateWrite}, Dst: StateReset},
		// a failed reset is only a warning, verification still runs
		{Name: EventReset, Src: []string{StateReset}, Dst: StateReverify},
		{Name: EventVerified, Src: []string{StateReverify}, Dst: StateFixed},
		{Name: EventMismatched, Src: []string{StateReverify}, Dst: StateVerificationFailed},
		{Name: EventFailed, Src: []string{StateFetch, StateClassify, StateWrite}, Dst: StateFailed},
	}
}

// IsTerminal reports whether no further event is expected in state.
func IsTerminal(state string) bool {
	switch state {
	case StateCompliant, StateSkipped, StateFixed, StateVerificationFailed, StateFailed:
		return true
	}
	return false
}

func newHostFSM(host string) *fsm.FSM {
	return fsm.NewFSM(
		StateFetch,
		Events(),
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				tflog.Debug(ctx, "remediation: state changed", map[string]interface{}{
					"host":  host,
					"event": e.Event,
					"from":  e.Src,
					"to":    e.Dst,
				})
			},
		},
	)
}
