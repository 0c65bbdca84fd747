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

package bmc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/stmcginnis/gofish/redfish"
)

func (s *session) system(op, path string) (*redfish.ComputerSystem, error) {
	system, err := redfish.GetComputerSystem(s.api, path)
	if err != nil {
		return nil, &TransportError{Host: s.host, Op: op, Err: fmt.Errorf("error while reading system resource %s: %w", path, err)}
	}
	return system, nil
}

// isPoweredOn returns information whether host reports power state On.
func (s *session) isPoweredOn(op, path string) (bool, error) {
	system, err := s.system(op, path)
	if err != nil {
		return false, err
	}

	return system.PowerState == redfish.OnPowerState, nil
}

// restarts reports whether resetType takes a running host down and brings it
// back up.
func restarts(resetType redfish.ResetType) bool {
	switch resetType {
	case redfish.GracefulRestartResetType, redfish.ForceRestartResetType, redfish.PowerCycleResetType:
		return true
	default:
		return false
	}
}

// waitUntilHostStateChanged polls the system resource until the host power
// state matches expectedPoweredOn or budget expires.
func waitUntilHostStateChanged(ctx context.Context, s *session, cfg Config, expectedPoweredOn bool, budget time.Duration) error {
	if budget < 0 {
		budget = 0
	}
	attempts := uint(budget/cfg.PowerPollInterval) + 1

	err := retry.Do(
		func() error {
			poweredOn, err := s.isPoweredOn("reset", cfg.SystemPath)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if poweredOn != expectedPoweredOn {
				return fmt.Errorf("host state has not been changed within given timeout %s", cfg.ResetTimeout)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(cfg.PowerPollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			return transportErr
		}
		return &TransportError{Host: s.host, Op: "reset", Err: err}
	}

	return nil
}

// resetOrPowerOn powers on host if it's currently powered off or performs the
// configured reset type if host is on. With a positive ResetTimeout it waits
// until the host reports being powered on again. A restarted host first has to
// leave power state On, both phases share the ResetTimeout budget.
func resetOrPowerOn(ctx context.Context, s *session, cfg Config) error {
	system, err := s.system("reset", cfg.SystemPath)
	if err != nil {
		return err
	}

	resetType := cfg.ResetType
	if system.PowerState == redfish.OffPowerState {
		tflog.Info(ctx, "bmc: host is powered off, powering on instead of reset", map[string]interface{}{"host": s.host})
		resetType = redfish.OnResetType
	}

	if err := system.Reset(resetType); err != nil {
		return &TransportError{Host: s.host, Op: "reset", Err: fmt.Errorf("%s request failed: %w", resetType, err)}
	}

	if cfg.ResetTimeout <= 0 {
		return nil
	}

	deadline := time.Now().Add(cfg.ResetTimeout)
	if restarts(resetType) {
		if err := waitUntilHostStateChanged(ctx, s, cfg, false, cfg.ResetTimeout); err != nil {
			return err
		}
		tflog.Debug(ctx, "bmc: host went down after reset", map[string]interface{}{"host": s.host, "reset_type": string(resetType)})
	}

	return waitUntilHostStateChanged(ctx, s, cfg, true, time.Until(deadline))
}
