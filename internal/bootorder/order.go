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

import "github.com/samber/lo"

// Entry is a boot device descriptor exactly as reported by the firmware.
type Entry string

// Order is a boot device list, index 0 is attempted first.
type Order []Entry

// Positions maps each device class to the index of its unique entry.
type Positions map[DeviceClass]int

// OrderFromStrings converts a raw descriptor list into an Order.
func OrderFromStrings(raw []string) Order {
	return lo.Map(raw, func(s string, _ int) Entry {
		return Entry(s)
	})
}

// Strings returns the descriptors as plain strings, e.g. for a request payload.
func (o Order) Strings() []string {
	return lo.Map(o, func(e Entry, _ int) string {
		return string(e)
	})
}

// Clone returns an independent copy of the order.
func (o Order) Clone() Order {
	if o == nil {
		return nil
	}
	c := make(Order, len(o))
	copy(c, o)
	return c
}

// Equal compares two orders element by element.
func (o Order) Equal(other Order) bool {
	if len(o) != len(other) {
		return false
	}
	for i := range o {
		if o[i] != other[i] {
			return false
		}
	}
	return true
}
