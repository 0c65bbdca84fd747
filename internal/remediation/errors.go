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
	"fmt"

	"terraform-provider-efibootorder/internal/bootorder"
)

// VerificationError is returned when the boot order read back after a write
// differs from the planned order, or could not be read at all.
type VerificationError struct {
	Host    string
	Planned bootorder.Order
	Got     bootorder.Order
	Err     error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: verification failed, unable to read back boot order: %s", e.Host, e.Err)
	}
	return fmt.Sprintf("%s: verification failed, boot order is %v, expected %v", e.Host, e.Got.Strings(), e.Planned.Strings())
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}
