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

package bootorder

import "fmt"

// Plan returns a permutation of order with the classified entries moved to the
// front in target sequence, followed by all other entries in their original
// relative order. An order that already satisfies IsOrdered is returned unchanged.
func Plan(order Order, positions Positions) Order {
	if IsOrdered(positions) {
		return order.Clone()
	}

	planned := make(Order, 0, len(order))
	placed := make(map[int]bool, len(TargetSequence))

	for _, class := range TargetSequence {
		index := positions[class]
		planned = append(planned, order[index])
		placed[index] = true
	}

	for i, entry := range order {
		if placed[i] {
			continue
		}
		planned = append(planned, entry)
	}

	return planned
}

// DiffLine describes one position of a current/planned order comparison.
type DiffLine struct {
	Current Entry
	Planned Entry
}

// Changed reports whether the entry at this position moves.
func (d DiffLine) Changed() bool {
	return d.Current != d.Planned
}

func (d DiffLine) String() string {
	if d.Changed() {
		return fmt.Sprintf("%s ===> %s", d.Current, d.Planned)
	}
	return string(d.Current)
}

// Diff pairs current and planned entries position by position.
func Diff(current, planned Order) []DiffLine {
	n := len(current)
	if len(planned) > n {
		n = len(planned)
	}

	lines := make([]DiffLine, 0, n)
	for i := 0; i < n; i++ {
		var line DiffLine
		if i < len(current) {
			line.Current = current[i]
		}
		if i < len(planned) {
			line.Planned = planned[i]
		}
		lines = append(lines, line)
	}
	return lines
}
