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

package taskengine

import "bmcd/internal/bus"

// CompleteOnSignal implements the generalized Crashdump/OnDemand
// completion rule (spec.md §9 Open Question): a task created against a
// bus match-topic (e.g. a long-running firmware or log-collection job
// dispatched over the BMC's internal bus) is completed the first time
// any properties-changed signal on iface is observed for that topic, with
// no inspection of the signal's payload — the original's permissive
// behavior. The returned Cancel drops the subscription; callers should
// invoke it once the task reaches a terminal state some other way too,
// to avoid leaking the subscription.
func CompleteOnSignal(t *Task, client bus.Client, iface string) bus.Cancel {
	return client.Subscribe(t.MatchTopic(), func(sig bus.Signal) {
		if t.IsTerminal() {
			return
		}
		if !bus.PropertyChanged(sig, iface) {
			return
		}
		t.Complete(false)
	})
}
