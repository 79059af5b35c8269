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

package repository

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/quillnotes/quill/pkg/cli/database"
	"github.com/quillnotes/quill/pkg/cli/entity"
	"github.com/quillnotes/quill/pkg/cli/utils"
	"github.com/quillnotes/quill/pkg/clock"
)

// TaskCreateInput holds the caller-supplied fields of a new task
type TaskCreateInput struct {
	ProjectID   string
	Title       string
	Description string
}

// TaskUpdateInput holds a partial update to a task. Nil fields are left
// untouched.
type TaskUpdateInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
	Position    *int
}

// TaskRepo accesses the tasks in the local store
type TaskRepo struct {
	db    *database.DB
	clock clock.Clock
}

// NewTaskRepo returns a task repository backed by the given database
func NewTaskRepo(db *database.DB, c clock.Clock) *TaskRepo {
	return &TaskRepo{db: db, clock: c}
}

// WithDB returns a copy of the repository bound to the given database
func (r *TaskRepo) WithDB(db *database.DB) *TaskRepo {
	return &TaskRepo{db: db, clock: r.clock}
}

const taskColumns = "id, project_id, title, description, is_completed, position, created_at, updated_at"

// GetByProject returns the tasks of a project ordered by position
func (r *TaskRepo) GetByProject(projectID string) ([]entity.Task, error) {
	rows, err := r.db.Query("SELECT "+taskColumns+` FROM tasks
		WHERE project_id = ? ORDER BY position ASC`, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	defer rows.Close()

	var ret []entity.Task
	for rows.Next() {
		var t entity.Task

		err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.IsCompleted,
			&t.Position, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scanning a task")
		}

		ret = append(ret, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating tasks")
	}

	return ret, nil
}

// GetByID returns a task by id. It returns ErrNotFound if the task does not
// exist.
func (r *TaskRepo) GetByID(id string) (entity.Task, error) {
	var t entity.Task

	err := r.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id).
		Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.IsCompleted,
			&t.Position, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	} else if err != nil {
		return t, errors.Wrapf(err, "finding task %s", id)
	}

	return t, nil
}

// Create inserts a new task and returns it. The task is appended after the
// project's existing tasks.
func (r *TaskRepo) Create(input TaskCreateInput) (entity.Task, error) {
	var max sql.NullInt64
	err := r.db.QueryRow("SELECT MAX(position) FROM tasks WHERE project_id = ?", input.ProjectID).Scan(&max)
	if err != nil {
		return entity.Task{}, errors.Wrap(err, "finding max task position")
	}

	position := 0
	if max.Valid {
		position = int(max.Int64) + 1
	}

	id, err := utils.GenerateUUID()
	if err != nil {
		return entity.Task{}, err
	}

	now := clock.Millis(r.clock)
	t := entity.Task{
		ID:          id,
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = r.db.Exec(`INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Title, t.Description, t.IsCompleted, t.Position, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return entity.Task{}, errors.Wrap(err, "inserting task")
	}

	return t, nil
}

// Update merges the given fields into an existing task, refreshes its
// updated_at and returns the result. It returns ErrNotFound if the task does
// not exist.
func (r *TaskRepo) Update(id string, input TaskUpdateInput) (entity.Task, error) {
	t, err := r.GetByID(id)
	if err != nil {
		return entity.Task{}, err
	}

	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.IsCompleted != nil {
		t.IsCompleted = *input.IsCompleted
	}
	if input.Position != nil {
		t.Position = *input.Position
	}
	t.UpdatedAt = clock.Millis(r.clock)

	_, err = r.db.Exec(`UPDATE tasks SET title = ?, description = ?, is_completed = ?,
		position = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Description, t.IsCompleted, t.Position, t.UpdatedAt, t.ID)
	if err != nil {
		return entity.Task{}, errors.Wrapf(err, "updating task %s", id)
	}

	return t, nil
}

// Delete removes a task. Deleting a nonexistent task is a no-op.
func (r *TaskRepo) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM tasks WHERE id = ?", id); err != nil {
		return errors.Wrapf(err, "deleting task %s", id)
	}

	return nil
}

// Put writes a task as-is, preserving its timestamps
func (r *TaskRepo) Put(t entity.Task) error {
	_, err := r.db.Exec(`INSERT OR REPLACE INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Title, t.Description, t.IsCompleted, t.Position, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return errors.Wrapf(err, "putting task %s", t.ID)
	}

	return nil
}
