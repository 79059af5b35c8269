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

// defaultProjectColor is used when a new project does not name a color
const defaultProjectColor = "blue"

// ProjectCreateInput holds the caller-supplied fields of a new project
type ProjectCreateInput struct {
	Name        string
	Description string
	Color       string
}

// ProjectUpdateInput holds a partial update to a project. Nil fields are
// left untouched.
type ProjectUpdateInput struct {
	Name        *string
	Description *string
	Color       *string
}

// ProjectRepo accesses the projects in the local store
type ProjectRepo struct {
	db    *database.DB
	clock clock.Clock
}

// NewProjectRepo returns a project repository backed by the given database
func NewProjectRepo(db *database.DB, c clock.Clock) *ProjectRepo {
	return &ProjectRepo{db: db, clock: c}
}

// WithDB returns a copy of the repository bound to the given database
func (r *ProjectRepo) WithDB(db *database.DB) *ProjectRepo {
	return &ProjectRepo{db: db, clock: r.clock}
}

const projectColumns = "id, owner_id, name, description, color, created_at, updated_at"

// GetAll returns all of the owner's projects, newest first
func (r *ProjectRepo) GetAll(ownerID string) ([]entity.Project, error) {
	rows, err := r.db.Query("SELECT "+projectColumns+` FROM projects
		WHERE owner_id = ? ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	defer rows.Close()

	var ret []entity.Project
	for rows.Next() {
		var p entity.Project

		err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Color, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scanning a project")
		}

		ret = append(ret, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating projects")
	}

	return ret, nil
}

// GetByID returns a project by id. It returns ErrNotFound if the project
// does not exist.
func (r *ProjectRepo) GetByID(id string) (entity.Project, error) {
	var p entity.Project

	err := r.db.QueryRow("SELECT "+projectColumns+" FROM projects WHERE id = ?", id).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Color, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	} else if err != nil {
		return p, errors.Wrapf(err, "finding project %s", id)
	}

	return p, nil
}

// Create inserts a new project and returns it
func (r *ProjectRepo) Create(ownerID string, input ProjectCreateInput) (entity.Project, error) {
	color := input.Color
	if color == "" {
		color = defaultProjectColor
	}

	id, err := utils.GenerateUUID()
	if err != nil {
		return entity.Project{}, err
	}

	now := clock.Millis(r.clock)
	p := entity.Project{
		ID:          id,
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Color:       color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = r.db.Exec(`INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.Name, p.Description, p.Color, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return entity.Project{}, errors.Wrap(err, "inserting project")
	}

	return p, nil
}

// Update merges the given fields into an existing project, refreshes its
// updated_at and returns the result. It returns ErrNotFound if the project
// does not exist.
func (r *ProjectRepo) Update(id string, input ProjectUpdateInput) (entity.Project, error) {
	p, err := r.GetByID(id)
	if err != nil {
		return entity.Project{}, err
	}

	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Color != nil {
		p.Color = *input.Color
	}
	p.UpdatedAt = clock.Millis(r.clock)

	_, err = r.db.Exec(`UPDATE projects SET name = ?, description = ?, color = ?, updated_at = ?
		WHERE id = ?`, p.Name, p.Description, p.Color, p.UpdatedAt, p.ID)
	if err != nil {
		return entity.Project{}, errors.Wrapf(err, "updating project %s", id)
	}

	return p, nil
}

// Delete removes a project row only. Its tasks are not touched; cascading is
// the caller's responsibility.
func (r *ProjectRepo) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM projects WHERE id = ?", id); err != nil {
		return errors.Wrapf(err, "deleting project %s", id)
	}

	return nil
}

// Put writes a project as-is, preserving its timestamps
func (r *ProjectRepo) Put(p entity.Project) error {
	_, err := r.db.Exec(`INSERT OR REPLACE INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.Name, p.Description, p.Color, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return errors.Wrapf(err, "putting project %s", p.ID)
	}

	return nil
}
