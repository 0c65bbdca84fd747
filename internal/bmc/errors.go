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
	"errors"
	"fmt"
)

var errMissingField = errors.New("field not present in response")

// TransportError reports a failure to talk to the management endpoint:
// connection, TLS, authentication, HTTP status or timeout.
type TransportError struct {
	Host string
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s failed: %s", e.Host, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a response that does not have the expected shape.
type ProtocolError struct {
	Host  string
	Field string
	Err   error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: unexpected response for %s: %s", e.Host, e.Field, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
