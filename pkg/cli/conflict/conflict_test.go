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

package conflict

import (
	"fmt"
	"testing"

	"github.com/quillnotes/quill/pkg/assert"
	"github.com/quillnotes/quill/pkg/cli/entity"
)

func newNote(id string, updatedAt int64, title string) entity.Note {
	return entity.Note{
		ID:        id,
		OwnerID:   "owner-1",
		Title:     title,
		UpdatedAt: updatedAt,
	}
}

func TestResolve(t *testing.T) {
	testCases := []struct {
		localUpdatedAt  int64
		remoteUpdatedAt int64
		expected        string
	}{
		{
			localUpdatedAt:  200,
			remoteUpdatedAt: 100,
			expected:        "local",
		},
		{
			localUpdatedAt:  100,
			remoteUpdatedAt: 200,
			expected:        "remote",
		},
		{
			localUpdatedAt:  100,
			remoteUpdatedAt: 100,
			expected:        "local",
		},
		{
			localUpdatedAt:  0,
			remoteUpdatedAt: 0,
			expected:        "local",
		},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("local %d remote %d", tc.localUpdatedAt, tc.remoteUpdatedAt), func(t *testing.T) {
			local := newNote("n1", tc.localUpdatedAt, "local")
			remote := newNote("n1", tc.remoteUpdatedAt, "remote")

			got := Resolve(local, remote)

			assert.Equal(t, got.Title, tc.expected, "winner mismatch")
		})
	}
}

func TestResolveAll(t *testing.T) {
	t.Run("overlapping ids resolve by timestamp", func(t *testing.T) {
		locals := []entity.Note{
			newNote("n1", 100, "n1-local"),
			newNote("n2", 300, "n2-local"),
		}
		remotes := []entity.Note{
			newNote("n1", 200, "n1-remote"),
			newNote("n2", 250, "n2-remote"),
		}

		got := ResolveAll(locals, remotes)

		assert.Equal(t, len(got), 2, "result length mismatch")
		assert.Equal(t, got[0].Title, "n1-remote", "n1 winner mismatch")
		assert.Equal(t, got[1].Title, "n2-local", "n2 winner mismatch")
	})

	t.Run("local-only ids are kept", func(t *testing.T) {
		locals := []entity.Note{newNote("n1", 100, "n1-local")}
		remotes := []entity.Note{}

		got := ResolveAll(locals, remotes)

		assert.Equal(t, len(got), 1, "result length mismatch")
		assert.Equal(t, got[0].Title, "n1-local", "n1 mismatch")
	})

	t.Run("remote-only ids are appended after locals", func(t *testing.T) {
		locals := []entity.Note{newNote("n2", 100, "n2-local")}
		remotes := []entity.Note{
			newNote("n3", 100, "n3-remote"),
			newNote("n4", 100, "n4-remote"),
		}

		got := ResolveAll(locals, remotes)

		assert.Equal(t, len(got), 3, "result length mismatch")
		assert.Equal(t, got[0].ID, "n2", "first id mismatch")
		assert.Equal(t, got[1].ID, "n3", "second id mismatch")
		assert.Equal(t, got[2].ID, "n4", "third id mismatch")
	})

	t.Run("every id appears exactly once", func(t *testing.T) {
		locals := []entity.Note{
			newNote("n1", 100, "a"),
			newNote("n2", 100, "b"),
		}
		remotes := []entity.Note{
			newNote("n2", 200, "c"),
			newNote("n3", 100, "d"),
		}

		got := ResolveAll(locals, remotes)

		counts := map[string]int{}
		for _, n := range got {
			counts[n.ID]++
		}

		assert.DeepEqual(t, counts, map[string]int{"n1": 1, "n2": 1, "n3": 1}, "id multiplicity mismatch")
	})

	t.Run("empty inputs", func(t *testing.T) {
		got := ResolveAll([]entity.Note{}, []entity.Note{})

		assert.Equal(t, len(got), 0, "result length mismatch")
	})
}
