/* Copyright 2025 Quill Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package repository implements per-entity CRUD over the local store.
// Repositories mutate the store only; they never talk to the network or
// the sync queue. Propagating a local write to the remote side is the
// caller's responsibility.
package repository

import (
	"database/sql"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when an operation references an id that does not
// exist in the local store
var ErrNotFound = errors.New("not found")

// nullableID converts an optional id to a driver-level value
func nullableID(id *string) interface{} {
	if id == nil {
		return nil
	}

	return *id
}

// idFromNullable converts a driver-level value back to an optional id
func idFromNullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}

	s := v.String
	return &s
}
