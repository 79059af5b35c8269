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

// Package conflict implements last-write-wins resolution between the local
// and the remote copy of an entity.
//
// The policy trusts device-local clocks: a replica with a skewed clock can
// make a genuinely older edit look newer.
package conflict

// Syncable is an entity that can be compared for conflict resolution
type Syncable interface {
	Key() string
	ModifiedAt() int64
}

// Resolve returns the winning version of an entity present on both
// replicas. The local copy wins on a timestamp tie, so that in-flight local
// edits are not overwritten needlessly by an equal remote state.
func Resolve[T Syncable](local, remote T) T {
	if local.ModifiedAt() >= remote.ModifiedAt() {
		return local
	}

	return remote
}

// ResolveAll merges two whole collections. Every id present in either input
// appears in the result exactly once: ids known locally come first in the
// locals' order, each resolved against the matching remote if one exists;
// ids present only remotely are appended in the remotes' order.
func ResolveAll[T Syncable](locals, remotes []T) []T {
	remoteByID := make(map[string]T, len(remotes))
	for _, r := range remotes {
		remoteByID[r.Key()] = r
	}

	seen := make(map[string]bool, len(locals))
	merged := make([]T, 0, len(locals)+len(remotes))

	for _, l := range locals {
		if r, ok := remoteByID[l.Key()]; ok {
			merged = append(merged, Resolve(l, r))
		} else {
			merged = append(merged, l)
		}
		seen[l.Key()] = true
	}

	for _, r := range remotes {
		if !seen[r.Key()] {
			merged = append(merged, r)
		}
	}

	return merged
}
