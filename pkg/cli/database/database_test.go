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

package database

import (
	"database/sql"
	"testing"

	"github.com/quillnotes/quill/pkg/assert"
	"github.com/quillnotes/quill/pkg/cli/consts"
)

func TestInitSchema(t *testing.T) {
	db := InitTestDB(t)

	var version int
	assert.NoError(t, GetSystem(db, consts.SystemSchema, &version), "getting schema version")
	assert.Equal(t, version, len(migrationSequence), "schema version mismatch")

	// every table the migrations declare exists
	for _, table := range []string{"notes", "folders", "projects", "tasks", "sync_queue", "system"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, "finding table "+table)
	}
}

func TestInitSchemaIdempotent(t *testing.T) {
	db := InitTestDB(t)

	assert.NoError(t, InitSchema(db), "re-running schema init")

	var version int
	assert.NoError(t, GetSystem(db, consts.SystemSchema, &version), "getting schema version")
	assert.Equal(t, version, len(migrationSequence), "schema version should be unchanged")
}

func TestSystemRoundtrip(t *testing.T) {
	db := InitTestDB(t)

	err := GetSystem(db, "missing-key", new(string))
	assert.Equal(t, err, sql.ErrNoRows, "missing key should surface sql.ErrNoRows")

	assert.NoError(t, UpsertSystem(db, "some-key", "v1"), "inserting")

	var val string
	assert.NoError(t, GetSystem(db, "some-key", &val), "getting")
	assert.Equal(t, val, "v1", "value mismatch")

	assert.NoError(t, UpsertSystem(db, "some-key", "v2"), "updating")
	assert.NoError(t, GetSystem(db, "some-key", &val), "getting again")
	assert.Equal(t, val, "v2", "updated value mismatch")

	assert.NoError(t, DeleteSystem(db, "some-key"), "deleting")
	err = GetSystem(db, "some-key", &val)
	assert.Equal(t, err, sql.ErrNoRows, "deleted key should be missing")
}

func TestTransactionRollback(t *testing.T) {
	db := InitTestDB(t)

	tx, err := db.Begin()
	assert.NoError(t, err, "beginning a transaction")

	MustExec(t, "inserting in tx", tx, "INSERT INTO system (key, value) VALUES (?, ?)", "tx-key", "v")
	assert.NoError(t, tx.Rollback(), "rolling back")

	err = GetSystem(db, "tx-key", new(string))
	assert.Equal(t, err, sql.ErrNoRows, "rolled back write should not be visible")
}
