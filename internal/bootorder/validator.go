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

// IsOrdered reports whether network boots before disk and disk before shell.
// Positions of unclassified entries do not matter.
func IsOrdered(positions Positions) bool {
	network, ok := positions[Network]
	if !ok {
		return false
	}
	disk, ok := positions[Disk]
	if !ok {
		return false
	}
	shell, ok := positions[Shell]
	if !ok {
		return false
	}

	return network < disk && disk < shell
}
