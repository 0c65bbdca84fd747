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

// Classify resolves every device class of the target sequence to the index of
// its unique matching entry.
func Classify(order Order, rules RuleSet) (Positions, error) {
	positions := Positions{}
	owner := map[int]DeviceClass{}

	for _, class := range TargetSequence {
		indices := matchingIndices(order, rules[class].Matcher)
		if len(indices) != 1 {
			return nil, &AmbiguousDeviceError{Class: class, Matches: len(indices)}
		}

		index := indices[0]
		if other, taken := owner[index]; taken {
			return nil, &AmbiguousDeviceError{Class: class, Matches: 1, Overlaps: other}
		}

		owner[index] = class
		positions[class] = index
	}

	return positions, nil
}

func matchingIndices(order Order, m Matcher) []int {
	var indices []int
	if m == nil {
		return indices
	}

	for i, entry := range order {
		if m.Match(entry) {
			indices = append(indices, i)
		}
	}
	return indices
}
