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

// Package syncqueue implements the durable FIFO queue of pending remote
// mutations. The queue is the single source of truth for what the client
// still owes the server; replay order equals enqueue order.
package syncqueue

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/quillnotes/quill/pkg/cli/database"
	"github.com/quillnotes/quill/pkg/cli/entity"
	"github.com/quillnotes/quill/pkg/clock"
)

// Operation is the kind of remote mutation an item represents
type Operation string

// The operations
const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Status is the lifecycle state of a queue item
type Status string

// The statuses. There is no "done" status: success removes the item.
const (
	StatusPending Status = "pending"
	StatusSyncing Status = "syncing"
	StatusFailed  Status = "failed"
)

// MaxRetry is the number of failed attempts after which an item is parked
// as failed and no longer returned by GetPending
const MaxRetry = 3

// Item is one pending remote mutation
type Item struct {
	LocalSeq   int64
	Kind       entity.Kind
	EntityID   string
	Operation  Operation
	Payload    json.RawMessage
	Status     Status
	RetryCount int
	CreatedAt  int64
}

// Queue provides access to the persistent mutation queue. All status
// transitions go through the Queue; no other component writes these rows.
type Queue struct {
	db    *database.DB
	clock clock.Clock
}

// New returns a queue backed by the given database
func New(db *database.DB, c clock.Clock) *Queue {
	return &Queue{db: db, clock: c}
}

// Enqueue appends a pending item, assigning the next local sequence number
func (q *Queue) Enqueue(kind entity.Kind, entityID string, op Operation, payload json.RawMessage) error {
	var payloadVal interface{}
	if payload != nil {
		payloadVal = string(payload)
	}

	_, err := q.db.Exec(`INSERT INTO sync_queue
		(entity_type, entity_id, operation, payload, status, retry_count, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		string(kind), entityID, string(op), payloadVal, string(StatusPending), clock.Millis(q.clock))
	if err != nil {
		return errors.Wrapf(err, "enqueueing %s %s for %s", op, kind, entityID)
	}

	return nil
}

// GetPending returns all pending items ordered by local sequence number.
// The order is the replay order: mutations to the same entity are sent in
// the order they were committed locally.
func (q *Queue) GetPending() ([]Item, error) {
	rows, err := q.db.Query(`SELECT local_seq, entity_type, entity_id, operation, payload, status, retry_count, created_at
		FROM sync_queue WHERE status = ? ORDER BY local_seq ASC`, string(StatusPending))
	if err != nil {
		return nil, errors.Wrap(err, "querying pending items")
	}
	defer rows.Close()

	var ret []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning a pending item")
		}

		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating pending items")
	}

	return ret, nil
}

// GetFailed returns all failed items ordered by local sequence number
func (q *Queue) GetFailed() ([]Item, error) {
	rows, err := q.db.Query(`SELECT local_seq, entity_type, entity_id, operation, payload, status, retry_count, created_at
		FROM sync_queue WHERE status = ? ORDER BY local_seq ASC`, string(StatusFailed))
	if err != nil {
		return nil, errors.Wrap(err, "querying failed items")
	}
	defer rows.Close()

	var ret []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning a failed item")
		}

		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating failed items")
	}

	return ret, nil
}

// MarkSyncing transitions an item to the syncing state
func (q *Queue) MarkSyncing(localSeq int64) error {
	if _, err := q.db.Exec("UPDATE sync_queue SET status = ? WHERE local_seq = ?",
		string(StatusSyncing), localSeq); err != nil {
		return errors.Wrapf(err, "marking item %d as syncing", localSeq)
	}

	return nil
}

// MarkDone removes a successfully synced item. Success is terminal and not
// retained; removing an already-removed sequence number is a no-op.
func (q *Queue) MarkDone(localSeq int64) error {
	if _, err := q.db.Exec("DELETE FROM sync_queue WHERE local_seq = ?", localSeq); err != nil {
		return errors.Wrapf(err, "removing item %d", localSeq)
	}

	return nil
}

// MarkFailed records a failed attempt. The item returns to pending until it
// has failed MaxRetry times, after which it is parked as failed and only
// ClearFailed can remove it.
func (q *Queue) MarkFailed(localSeq int64, newRetryCount int) error {
	status := StatusPending
	if newRetryCount >= MaxRetry {
		status = StatusFailed
	}

	if _, err := q.db.Exec("UPDATE sync_queue SET status = ?, retry_count = ? WHERE local_seq = ?",
		string(status), newRetryCount, localSeq); err != nil {
		return errors.Wrapf(err, "marking item %d as failed", localSeq)
	}

	return nil
}

// ClearFailed purges all failed items. This is the manual recovery path,
// triggered by the user rather than by the engine.
func (q *Queue) ClearFailed() (int64, error) {
	res, err := q.db.Exec("DELETE FROM sync_queue WHERE status = ?", string(StatusFailed))
	if err != nil {
		return 0, errors.Wrap(err, "clearing failed items")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting cleared items")
	}

	return n, nil
}

// CountPending returns the number of pending items
func (q *Queue) CountPending() (int, error) {
	return q.countByStatus(StatusPending)
}

// CountFailed returns the number of failed items
func (q *Queue) CountFailed() (int, error) {
	return q.countByStatus(StatusFailed)
}

func (q *Queue) countByStatus(status Status) (int, error) {
	var count int
	if err := q.db.QueryRow("SELECT count(*) FROM sync_queue WHERE status = ?", string(status)).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "counting %s items", status)
	}

	return count, nil
}

func scanItem(rows *sql.Rows) (Item, error) {
	var item Item
	var kind, op, status string
	var payload sql.NullString

	if err := rows.Scan(&item.LocalSeq, &kind, &item.EntityID, &op, &payload, &status, &item.RetryCount, &item.CreatedAt); err != nil {
		return item, err
	}

	item.Kind = entity.Kind(kind)
	item.Operation = Operation(op)
	item.Status = Status(status)
	if payload.Valid {
		item.Payload = json.RawMessage(payload.String)
	}

	return item, nil
}
