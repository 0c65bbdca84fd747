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

import "strings"

const (
	DefaultDomain = "ipmi.sepia.ceph.com"
	DefaultMarker = "ipmi"
)

// CanonicalHost returns the management network name of host. Names already
// containing marker are returned as given, all others get domain appended.
// An empty domain disables the rewrite, an empty marker treats any dotted name
// as qualified.
func CanonicalHost(host, domain, marker string) string {
	if domain == "" {
		return host
	}

	if marker == "" {
		marker = "."
	}

	if strings.Contains(host, marker) {
		return host
	}

	return host + "." + strings.TrimPrefix(domain, ".")
}
