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

// Package bootorder classifies firmware boot entries, checks the required
// network, disk, shell ordering and plans a corrected order.
package bootorder

import (
	"fmt"
	"strings"
)

// DeviceClass identifies one of the boot device kinds whose relative order is enforced.
type DeviceClass string

const (
	Network DeviceClass = "network"
	Disk    DeviceClass = "disk"
	Shell   DeviceClass = "shell"
)

// Default descriptor fragments as reported by Supermicro firmware.
const (
	DefaultNetworkMatch = "F0) UEFI PXE IPv4"
	DefaultDiskMatch    = "UEFI Hard Disk"
	DefaultShellMatch   = "EFI Shell"
)

// TargetSequence is the required relative order of the device classes.
var TargetSequence = []DeviceClass{Network, Disk, Shell}

func (c DeviceClass) String() string {
	return string(c)
}

// DeviceClassFromString parses a class name as used in configuration files.
func DeviceClassFromString(input string) (DeviceClass, error) {
	switch DeviceClass(strings.ToLower(input)) {
	case Network:
		return Network, nil
	case Disk:
		return Disk, nil
	case Shell:
		return Shell, nil
	default:
		return "", fmt.Errorf("unknown device class: %s", input)
	}
}

// Matcher decides whether a boot entry descriptor belongs to a device class.
type Matcher interface {
	Match(entry Entry) bool
	String() string
}

// Substring matches entries containing a fixed fragment.
type Substring string

func (s Substring) Match(entry Entry) bool {
	return strings.Contains(string(entry), string(s))
}

func (s Substring) String() string {
	return fmt.Sprintf("contains %q", string(s))
}

// Rule binds a device class to its matcher.
type Rule struct {
	Class   DeviceClass
	Matcher Matcher
}

// RuleSet holds one rule per device class of the target sequence.
type RuleSet map[DeviceClass]Rule

// DefaultRules returns the rule table for Supermicro X11/X12 descriptors.
func DefaultRules() RuleSet {
	rs, _ := NewSubstringRules(map[DeviceClass]string{
		Network: DefaultNetworkMatch,
		Disk:    DefaultDiskMatch,
		Shell:   DefaultShellMatch,
	})
	return rs
}

// NewSubstringRules builds a rule set from class to fragment pairs, e.g. read from
// a configuration file. Every class of the target sequence must have a non-empty fragment.
func NewSubstringRules(fragments map[DeviceClass]string) (RuleSet, error) {
	rs := RuleSet{}
	for class, fragment := range fragments {
		if fragment == "" {
			return nil, fmt.Errorf("empty match string for device class %s", class)
		}
		rs[class] = Rule{Class: class, Matcher: Substring(fragment)}
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}

	return rs, nil
}

// Validate checks that the rule set covers exactly the target sequence.
func (rs RuleSet) Validate() error {
	for _, class := range TargetSequence {
		rule, ok := rs[class]
		if !ok || rule.Matcher == nil {
			return fmt.Errorf("no match rule for device class %s", class)
		}
	}

	if len(rs) != len(TargetSequence) {
		return fmt.Errorf("rule set has %d rules, expected %d", len(rs), len(TargetSequence))
	}

	return nil
}
