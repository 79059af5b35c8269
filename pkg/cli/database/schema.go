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

	"github.com/pkg/errors"

	"github.com/quillnotes/quill/pkg/cli/consts"
)

// migration is an additive change to the local schema. Migrations are never
// edited once released; new changes append to the sequence.
type migration struct {
	name string
	run  func(db *DB) error
}

var migrationSequence = []migration{
	{
		name: "notes-and-folders",
		run: func(db *DB) error {
			_, err := db.Exec(`CREATE TABLE IF NOT EXISTS notes
				(
					id text PRIMARY KEY,
					owner_id text NOT NULL,
					folder_id text,
					title text NOT NULL,
					content text NOT NULL DEFAULT '',
					is_pinned bool NOT NULL DEFAULT false,
					is_archived bool NOT NULL DEFAULT false,
					is_trashed bool NOT NULL DEFAULT false,
					created_at integer NOT NULL,
					updated_at integer NOT NULL
				)`)
			if err != nil {
				return errors.Wrap(err, "creating notes table")
			}

			_, err = db.Exec(`CREATE TABLE IF NOT EXISTS folders
				(
					id text PRIMARY KEY,
					owner_id text NOT NULL,
					parent_id text,
					name text NOT NULL,
					icon text,
					color text,
					is_expanded bool NOT NULL DEFAULT true,
					position integer NOT NULL,
					created_at integer NOT NULL,
					updated_at integer NOT NULL
				)`)
			if err != nil {
				return errors.Wrap(err, "creating folders table")
			}

			_, err = db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes(owner_id);
				CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder_id);
				CREATE INDEX IF NOT EXISTS idx_folders_owner ON folders(owner_id);
				CREATE INDEX IF NOT EXISTS idx_folders_parent ON folders(parent_id);`)
			if err != nil {
				return errors.Wrap(err, "creating note and folder indices")
			}

			return nil
		},
	},
	{
		name: "projects-and-tasks",
		run: func(db *DB) error {
			_, err := db.Exec(`CREATE TABLE IF NOT EXISTS projects
				(
					id text PRIMARY KEY,
					owner_id text NOT NULL,
					name text NOT NULL,
					description text NOT NULL DEFAULT '',
					created_at integer NOT NULL,
					updated_at integer NOT NULL
				)`)
			if err != nil {
				return errors.Wrap(err, "creating projects table")
			}

			_, err = db.Exec(`CREATE TABLE IF NOT EXISTS tasks
				(
					id text PRIMARY KEY,
					project_id text NOT NULL,
					title text NOT NULL,
					description text NOT NULL DEFAULT '',
					is_completed bool NOT NULL DEFAULT false,
					position integer NOT NULL,
					created_at integer NOT NULL,
					updated_at integer NOT NULL
				)`)
			if err != nil {
				return errors.Wrap(err, "creating tasks table")
			}

			_, err = db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id);
				CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);`)
			if err != nil {
				return errors.Wrap(err, "creating project and task indices")
			}

			return nil
		},
	},
	{
		name: "project-color",
		run: func(db *DB) error {
			_, err := db.Exec("ALTER TABLE projects ADD COLUMN color text NOT NULL DEFAULT 'blue'")
			if err != nil {
				return errors.Wrap(err, "adding color column to projects")
			}

			return nil
		},
	},
	{
		name: "sync-queue",
		run: func(db *DB) error {
			_, err := db.Exec(`CREATE TABLE IF NOT EXISTS sync_queue
				(
					local_seq integer PRIMARY KEY AUTOINCREMENT,
					entity_type text NOT NULL,
					entity_id text NOT NULL,
					operation text NOT NULL,
					payload text,
					status text NOT NULL DEFAULT 'pending',
					retry_count integer NOT NULL DEFAULT 0,
					created_at integer NOT NULL
				)`)
			if err != nil {
				return errors.Wrap(err, "creating sync_queue table")
			}

			_, err = db.Exec("CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)")
			if err != nil {
				return errors.Wrap(err, "creating sync_queue index")
			}

			return nil
		},
	},
}

// InitSchema creates the system table and brings the schema up to date by
// applying any migrations past the recorded schema version. Each migration
// runs in its own transaction.
func InitSchema(db *DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS system
		(
			key text NOT NULL,
			value text NOT NULL
		)`)
	if err != nil {
		return errors.Wrap(err, "creating system table")
	}

	_, err = db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_system_key ON system(key)")
	if err != nil {
		return errors.Wrap(err, "creating system index")
	}

	var version int
	err = GetSystem(db, consts.SystemSchema, &version)
	if err == sql.ErrNoRows {
		if err := InsertSystem(db, consts.SystemSchema, 0); err != nil {
			return errors.Wrap(err, "initializing schema version")
		}
		version = 0
	} else if err != nil {
		return errors.Wrap(err, "getting schema version")
	}

	for i := version; i < len(migrationSequence); i++ {
		m := migrationSequence[i]

		tx, err := db.Begin()
		if err != nil {
			return errors.Wrapf(err, "beginning a transaction for migration %s", m.name)
		}

		if err := m.run(tx); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "running migration %s", m.name)
		}
		if err := UpdateSystem(tx, consts.SystemSchema, i+1); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "updating schema version after %s", m.name)
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "committing migration %s", m.name)
		}
	}

	return nil
}
