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

// Package remediation checks and repairs the boot order of a set of hosts.
package remediation

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"terraform-provider-efibootorder/internal/bootorder"

	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/looplab/fsm"
	"golang.org/x/sync/errgroup"
)

// BootOrderClient reads, writes and applies the boot order of a host.
type BootOrderClient interface {
	Fetch(ctx context.Context, host string) (bootorder.Order, error)
	Write(ctx context.Context, host string, order bootorder.Order) error
	Reset(ctx context.Context, host string) error
}

// endpointNamer is implemented by clients that address hosts under a
// different name than the one given by the operator.
type endpointNamer interface {
	CanonicalHost(host string) string
}

type Options struct {
	// Rules defaults to bootorder.DefaultRules.
	Rules bootorder.RuleSet
	// Fix authorizes writing the planned order and resetting the host.
	Fix bool
	// Out receives the status lines and diffs, io.Discard when nil.
	Out io.Writer
	// Locks is shared by controllers that may touch the same endpoints.
	Locks *SyncPool
}

type Controller struct {
	client BootOrderClient
	rules  bootorder.RuleSet
	fix    bool
	locks  *SyncPool

	outMu sync.Mutex
	out   io.Writer
}

func New(client BootOrderClient, opts Options) (*Controller, error) {
	if client == nil {
		return nil, fmt.Errorf("boot order client must not be nil")
	}

	rules := opts.Rules
	if rules == nil {
		rules = bootorder.DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	locks := opts.Locks
	if locks == nil {
		locks = InitSyncPoolInstance()
	}

	return &Controller{
		client: client,
		rules:  rules,
		fix:    opts.Fix,
		locks:  locks,
		out:    out,
	}, nil
}

// Run processes hosts one after another. A failing host never stops the
// remaining ones.
func (c *Controller) Run(ctx context.Context, hosts []string) *Report {
	report := &Report{Results: make([]HostResult, 0, len(hosts))}
	for _, host := range hosts {
		report.Results = append(report.Results, c.RunHost(ctx, host))
	}
	return report
}

// RunParallel processes at most workers hosts at a time. Results keep the
// order of hosts.
func (c *Controller) RunParallel(ctx context.Context, hosts []string, workers int) *Report {
	if workers <= 1 {
		return c.Run(ctx, hosts)
	}

	results := make([]HostResult, len(hosts))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, host := range hosts {
		i, host := i, host
		g.Go(func() error {
			results[i] = c.RunHost(ctx, host)
			return nil
		})
	}
	_ = g.Wait()

	return &Report{Results: results}
}

// RunHost performs one fetch, check and optional fix cycle on host.
func (c *Controller) RunHost(ctx context.Context, host string) HostResult {
	ctx = tflog.SetField(ctx, "host", host)
	tflog.Info(ctx, "remediation: host starts", map[string]interface{}{"fix": c.fix})

	endpoint := host
	if namer, ok := c.client.(endpointNamer); ok {
		endpoint = namer.CanonicalHost(host)
	}
	operation := "boot_order_report"
	if c.fix {
		operation = "boot_order_fix"
	}
	c.locks.Lock(ctx, endpoint, operation)
	defer c.locks.Unlock(ctx, endpoint, operation)

	run := &hostRun{
		Controller: c,
		fsm:        newHostFSM(host),
		result:     HostResult{Host: host},
	}

	for !IsTerminal(run.fsm.Current()) {
		event := run.step(ctx)
		if err := run.fsm.Event(ctx, event); err != nil {
			run.result.State = run.fsm.Current()
			run.result.Outcome = OutcomeFailed
			run.result.Err = fmt.Errorf("%s: unexpected event %s in state %s: %w", host, event, run.fsm.Current(), err)
			tflog.Error(ctx, "remediation: host ends", map[string]interface{}{"error": run.result.Err.Error()})
			return run.result
		}
	}

	run.result.State = run.fsm.Current()
	run.result.Outcome = outcomeOf(run.result.State)

	fields := map[string]interface{}{"outcome": string(run.result.Outcome)}
	if run.result.Err != nil {
		fields["error"] = run.result.Err.Error()
		tflog.Error(ctx, "remediation: host ends", fields)
	} else {
		tflog.Info(ctx, "remediation: host ends", fields)
	}

	return run.result
}

// print writes lines as one block so parallel hosts never interleave.
func (c *Controller) print(lines ...string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	fmt.Fprintln(c.out, strings.Join(lines, "\n"))
}

// hostRun carries the state of one host through the state machine.
type hostRun struct {
	*Controller
	fsm    *fsm.FSM
	result HostResult
}

// step performs the work of the current state and returns the event it
// produced.
func (r *hostRun) step(ctx context.Context) string {
	host := r.result.Host

	switch r.fsm.Current() {
	case StateFetch:
		order, err := r.client.Fetch(ctx, host)
		if err != nil {
			r.result.Err = err
			return EventFailed
		}
		r.result.Current = order
		return EventFetched

	case StateClassify:
		positions, err := bootorder.Classify(r.result.Current, r.rules)
		if err != nil {
			r.result.Err = fmt.Errorf("%s: %w", host, err)
			return EventFailed
		}
		r.result.Positions = positions
		return EventClassified

	case StateValidate:
		if bootorder.IsOrdered(r.result.Positions) {
			r.print(host + " ok")
			return EventCompliant
		}
		return EventViolated

	case StatePlan:
		r.result.Planned = bootorder.Plan(r.result.Current, r.result.Positions)
		r.result.Diff = bootorder.Diff(r.result.Current, r.result.Planned)

		lines := make([]string, 0, len(r.result.Diff)+1)
		lines = append(lines, host)
		for _, line := range r.result.Diff {
			lines = append(lines, line.String())
		}
		r.print(lines...)

		if !r.fix {
			tflog.Warn(ctx, "remediation: boot order is not compliant, not fixing")
			return EventSkipped
		}
		return EventPlanned

	case StateWrite:
		if err := r.client.Write(ctx, host, r.result.Planned); err != nil {
			r.result.Err = err
			return EventFailed
		}
		return EventWritten

	case StateReset:
		if err := r.client.Reset(ctx, host); err != nil {
			tflog.Warn(ctx, "remediation: reset failed, boot order stays written", map[string]interface{}{"error": err.Error()})
			r.result.Warnings = append(r.result.Warnings, err)
		}
		return EventReset

	case StateReverify:
		got, err := r.client.Fetch(ctx, host)
		if err != nil {
			r.result.Err = &VerificationError{Host: host, Planned: r.result.Planned, Err: err}
			return EventMismatched
		}
		if !got.Equal(r.result.Planned) {
			r.result.Err = &VerificationError{Host: host, Planned: r.result.Planned, Got: got}
			return EventMismatched
		}
		return EventVerified
	}

	return ""
}
