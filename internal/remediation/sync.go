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
	"context"
	"sync"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Synchronization must be done per management endpoint, so every host can be
// controlled separately while two runs never touch the same BMC at once.
type SyncPool struct {
	lock sync.Mutex
	pool map[string]*endpointLock
}

// endpointLock remembers which operation holds the endpoint, holder is
// guarded by the pool lock.
type endpointLock struct {
	mu     sync.Mutex
	holder string
}

func InitSyncPoolInstance() *SyncPool {
	return &SyncPool{
		pool: make(map[string]*endpointLock),
	}
}

func (sp *SyncPool) getEndpointLock(endpoint string) *endpointLock {
	sp.lock.Lock()
	defer sp.lock.Unlock()

	el, ok := sp.pool[endpoint]
	if !ok {
		el = &endpointLock{}
		sp.pool[endpoint] = el
	}
	return el
}

// holder returns the operation currently holding endpoint, empty if free.
func (sp *SyncPool) holder(endpoint string) string {
	el := sp.getEndpointLock(endpoint)

	sp.lock.Lock()
	defer sp.lock.Unlock()
	return el.holder
}

func (sp *SyncPool) Lock(ctx context.Context, endpoint string, operation string) {
	fields := map[string]interface{}{"endpoint": endpoint, "operation": operation}
	el := sp.getEndpointLock(endpoint)

	if busy := sp.holder(endpoint); busy != "" {
		tflog.Debug(ctx, "Waiting for endpoint mutex", map[string]interface{}{"endpoint": endpoint, "operation": operation, "holder": busy})
	} else {
		tflog.Trace(ctx, "Before locking endpoint mutex", fields)
	}

	el.mu.Lock()

	sp.lock.Lock()
	el.holder = operation
	sp.lock.Unlock()

	tflog.Debug(ctx, "Successfully locked endpoint mutex", fields)
}

func (sp *SyncPool) Unlock(ctx context.Context, endpoint string, operation string) {
	el := sp.getEndpointLock(endpoint)

	sp.lock.Lock()
	el.holder = ""
	sp.lock.Unlock()

	el.mu.Unlock()

	tflog.Debug(ctx, "Successfully unlocked endpoint mutex", map[string]interface{}{"endpoint": endpoint, "operation": operation})
}
