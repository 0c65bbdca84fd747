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

// AmbiguousDeviceError is returned when a device class cannot be resolved to
// exactly one boot entry. Rearranging such a list could move the wrong device.
type AmbiguousDeviceError struct {
	Class   DeviceClass
	Matches int
	// Overlaps is set when the only matching entry is also the unique match of another class.
	Overlaps DeviceClass
}

func (e *AmbiguousDeviceError) Error() string {
	if e.Overlaps != "" {
		return fmt.Sprintf("device class %s: matching entry is also the %s entry", e.Class, e.Overlaps)
	}
	return fmt.Sprintf("device class %s: found %d entries, expected exactly one", e.Class, e.Matches)
}
