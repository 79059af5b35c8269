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

package syncqueue

import (
	"encoding/json"
	"testing"

	"github.com/quillnotes/quill/pkg/assert"
	"github.com/quillnotes/quill/pkg/cli/database"
	"github.com/quillnotes/quill/pkg/cli/entity"
	"github.com/quillnotes/quill/pkg/clock"
)

func newTestQueue(t *testing.T) *Queue {
	db := database.InitTestDB(t)
	return New(db, clock.NewMock())
}

func TestEnqueue(t *testing.T) {
	q := newTestQueue(t)

	err := q.Enqueue(entity.KindNote, "n1", OpCreate, json.RawMessage(`{"title":"A"}`))
	assert.NoError(t, err, "enqueueing")

	items, err := q.GetPending()
	assert.NoError(t, err, "getting pending")

	assert.Equal(t, len(items), 1, "pending count mismatch")
	assert.Equal(t, items[0].Kind, entity.KindNote, "kind mismatch")
	assert.Equal(t, items[0].EntityID, "n1", "entity id mismatch")
	assert.Equal(t, items[0].Operation, OpCreate, "operation mismatch")
	assert.Equal(t, items[0].Status, StatusPending, "status mismatch")
	assert.Equal(t, items[0].RetryCount, 0, "retry count mismatch")
	assert.DeepEqual(t, items[0].Payload, json.RawMessage(`{"title":"A"}`), "payload mismatch")
}

func TestEnqueueNilPayload(t *testing.T) {
	q := newTestQueue(t)

	err := q.Enqueue(entity.KindNote, "n1", OpDelete, nil)
	assert.NoError(t, err, "enqueueing")

	items, err := q.GetPending()
	assert.NoError(t, err, "getting pending")

	assert.Equal(t, len(items), 1, "pending count mismatch")
	assert.True(t, items[0].Payload == nil, "payload should be nil")
}

func TestGetPendingFIFO(t *testing.T) {
	q := newTestQueue(t)

	// repeated entity ids must not disturb the order
	assert.NoError(t, q.Enqueue(entity.KindNote, "X", OpCreate, nil), "enqueueing X create")
	assert.NoError(t, q.Enqueue(entity.KindNote, "Y", OpCreate, nil), "enqueueing Y create")
	assert.NoError(t, q.Enqueue(entity.KindNote, "X", OpUpdate, nil), "enqueueing X update")

	items, err := q.GetPending()
	assert.NoError(t, err, "getting pending")

	assert.Equal(t, len(items), 3, "pending count mismatch")
	assert.Equal(t, items[0].EntityID, "X", "first entity mismatch")
	assert.Equal(t, items[0].Operation, OpCreate, "first operation mismatch")
	assert.Equal(t, items[1].EntityID, "Y", "second entity mismatch")
	assert.Equal(t, items[2].EntityID, "X", "third entity mismatch")
	assert.Equal(t, items[2].Operation, OpUpdate, "third operation mismatch")

	assert.True(t, items[0].LocalSeq < items[1].LocalSeq, "sequence not increasing")
	assert.True(t, items[1].LocalSeq < items[2].LocalSeq, "sequence not increasing")
}

func TestRetryExhaustion(t *testing.T) {
	q := newTestQueue(t)

	assert.NoError(t, q.Enqueue(entity.KindNote, "n1", OpCreate, nil), "enqueueing")

	items, err := q.GetPending()
	assert.NoError(t, err, "getting pending")
	seq := items[0].LocalSeq

	// first two failures return the item to pending
	for attempt := 1; attempt <= 2; attempt++ {
		assert.NoError(t, q.MarkSyncing(seq), "marking syncing")
		assert.NoError(t, q.MarkFailed(seq, attempt), "marking failed")

		items, err = q.GetPending()
		assert.NoError(t, err, "getting pending")
		assert.Equal(t, len(items), 1, "item should still be pending")
		assert.Equal(t, items[0].RetryCount, attempt, "retry count mismatch")
	}

	// the third failure parks it as failed
	assert.NoError(t, q.MarkSyncing(seq), "marking syncing")
	assert.NoError(t, q.MarkFailed(seq, 3), "marking failed")

	items, err = q.GetPending()
	assert.NoError(t, err, "getting pending")
	assert.Equal(t, len(items), 0, "failed item must not be pending")

	failed, err := q.GetFailed()
	assert.NoError(t, err, "getting failed")
	assert.Equal(t, len(failed), 1, "failed count mismatch")
	assert.Equal(t, failed[0].RetryCount, 3, "failed retry count mismatch")
}

func TestMarkDoneIdempotent(t *testing.T) {
	q := newTestQueue(t)

	assert.NoError(t, q.Enqueue(entity.KindNote, "n1", OpCreate, nil), "enqueueing")

	items, err := q.GetPending()
	assert.NoError(t, err, "getting pending")
	seq := items[0].LocalSeq

	assert.NoError(t, q.MarkDone(seq), "marking done")
	assert.NoError(t, q.MarkDone(seq), "marking done again should be a no-op")

	count, err := q.CountPending()
	assert.NoError(t, err, "counting pending")
	assert.Equal(t, count, 0, "pending count mismatch")
}

func TestClearFailed(t *testing.T) {
	q := newTestQueue(t)

	assert.NoError(t, q.Enqueue(entity.KindNote, "n1", OpCreate, nil), "enqueueing n1")
	assert.NoError(t, q.Enqueue(entity.KindNote, "n2", OpCreate, nil), "enqueueing n2")

	items, err := q.GetPending()
	assert.NoError(t, err, "getting pending")

	// park the first item, leave the second pending
	assert.NoError(t, q.MarkFailed(items[0].LocalSeq, MaxRetry), "parking n1")

	n, err := q.ClearFailed()
	assert.NoError(t, err, "clearing failed")
	assert.Equal(t, n, int64(1), "cleared count mismatch")

	count, err := q.CountFailed()
	assert.NoError(t, err, "counting failed")
	assert.Equal(t, count, 0, "failed count mismatch")

	count, err = q.CountPending()
	assert.NoError(t, err, "counting pending")
	assert.Equal(t, count, 1, "pending item must survive clearing")
}
