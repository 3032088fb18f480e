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

package rhttp

import "bmcd/internal/ojson"

// JSONObject is the insertion-order-preserving JSON object type used for
// every Response body. It is an alias of ojson.Object: the ordered-map
// implementation lives in internal/ojson so leaf packages (registry,
// rferr, router, taskengine) can build ordered documents without
// importing rhttp.
type JSONObject = ojson.Object

// NewJSONObject returns an empty ordered JSON object.
func NewJSONObject() *JSONObject {
	return ojson.NewObject()
}
