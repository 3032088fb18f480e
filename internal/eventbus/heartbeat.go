// bmcd is a BMC-resident Redfish service.
// Copyright (C) 2025  Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package eventbus

import (
	"context"
	"time"

	"bmcd/internal/registry"
)

// StartHeartbeat publishes the compiled-in Heartbeat registry's
// RedfishServiceFunctional message on interval until ctx is cancelled,
// supplementing the teacher spec with the heartbeat event registry
// original_source carries (SPEC_FULL.md §10). It runs in its own
// goroutine; callers stop it by cancelling ctx.
func (b *Bus) StartHeartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.Publish(ctx, registry.Heartbeat, "RedfishServiceFunctional")
			}
		}
	}()
}
