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

// FolderCreateInput holds the caller-supplied fields of a new folder
type FolderCreateInput struct {
	ParentID *string
	Name     string
	Icon     string
	Color    string
}

// FolderUpdateInput holds a partial update to a folder. Nil fields are left
// untouched. SetParent distinguishes "do not move" from "move to the top
// level": when it is true, ParentID is applied even if nil.
type FolderUpdateInput struct {
	ParentID   *string
	SetParent  bool
	Name       *string
	Icon       *string
	Color      *string
	IsExpanded *bool
	Position   *int
}

// FolderRepo accesses the folders in the local store
type FolderRepo struct {
	db    *database.DB
	clock clock.Clock
}

// NewFolderRepo returns a folder repository backed by the given database
func NewFolderRepo(db *database.DB, c clock.Clock) *FolderRepo {
	return &FolderRepo{db: db, clock: c}
}

// WithDB returns a copy of the repository bound to the given database
func (r *FolderRepo) WithDB(db *database.DB) *FolderRepo {
	return &FolderRepo{db: db, clock: r.clock}
}

const folderColumns = "id, owner_id, parent_id, name, icon, color, is_expanded, position, created_at, updated_at"

// GetAll returns all of the owner's folders ordered by position
func (r *FolderRepo) GetAll(ownerID string) ([]entity.Folder, error) {
	rows, err := r.db.Query("SELECT "+folderColumns+` FROM folders
		WHERE owner_id = ? ORDER BY position ASC`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying folders")
	}
	defer rows.Close()

	return scanFolders(rows)
}

// GetByParent returns the child folders of a parent ordered by position. A
// nil parentID selects the top-level folders.
func (r *FolderRepo) GetByParent(ownerID string, parentID *string) ([]entity.Folder, error) {
	var rows *sql.Rows
	var err error

	if parentID == nil {
		rows, err = r.db.Query("SELECT "+folderColumns+` FROM folders
			WHERE owner_id = ? AND parent_id IS NULL ORDER BY position ASC`, ownerID)
	} else {
		rows, err = r.db.Query("SELECT "+folderColumns+` FROM folders
			WHERE owner_id = ? AND parent_id = ? ORDER BY position ASC`, ownerID, *parentID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying folders by parent")
	}
	defer rows.Close()

	return scanFolders(rows)
}

// GetByID returns a folder by id. It returns ErrNotFound if the folder does
// not exist.
func (r *FolderRepo) GetByID(id string) (entity.Folder, error) {
	row := r.db.QueryRow("SELECT "+folderColumns+" FROM folders WHERE id = ?", id)

	folder, err := scanFolder(row)
	if err == sql.ErrNoRows {
		return folder, ErrNotFound
	} else if err != nil {
		return folder, errors.Wrapf(err, "finding folder %s", id)
	}

	return folder, nil
}

// Create inserts a new folder and returns it. The folder is appended after
// its siblings: its position is one past the current maximum among folders
// with the same parent.
func (r *FolderRepo) Create(ownerID string, input FolderCreateInput) (entity.Folder, error) {
	position, err := r.nextPosition(ownerID, input.ParentID)
	if err != nil {
		return entity.Folder{}, err
	}

	id, err := utils.GenerateUUID()
	if err != nil {
		return entity.Folder{}, err
	}

	now := clock.Millis(r.clock)
	folder := entity.Folder{
		ID:         id,
		OwnerID:    ownerID,
		ParentID:   input.ParentID,
		Name:       input.Name,
		Icon:       input.Icon,
		Color:      input.Color,
		IsExpanded: true,
		Position:   position,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err = r.db.Exec(`INSERT INTO folders (`+folderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		folder.ID, folder.OwnerID, nullableID(folder.ParentID), folder.Name, folder.Icon,
		folder.Color, folder.IsExpanded, folder.Position, folder.CreatedAt, folder.UpdatedAt)
	if err != nil {
		return entity.Folder{}, errors.Wrap(err, "inserting folder")
	}

	return folder, nil
}

// Update merges the given fields into an existing folder, refreshes its
// updated_at and returns the result. It returns ErrNotFound if the folder
// does not exist.
func (r *FolderRepo) Update(id string, input FolderUpdateInput) (entity.Folder, error) {
	folder, err := r.GetByID(id)
	if err != nil {
		return entity.Folder{}, err
	}

	if input.SetParent {
		folder.ParentID = input.ParentID
	}
	if input.Name != nil {
		folder.Name = *input.Name
	}
	if input.Icon != nil {
		folder.Icon = *input.Icon
	}
	if input.Color != nil {
		folder.Color = *input.Color
	}
	if input.IsExpanded != nil {
		folder.IsExpanded = *input.IsExpanded
	}
	if input.Position != nil {
		folder.Position = *input.Position
	}
	folder.UpdatedAt = clock.Millis(r.clock)

	_, err = r.db.Exec(`UPDATE folders SET parent_id = ?, name = ?, icon = ?, color = ?,
		is_expanded = ?, position = ?, updated_at = ? WHERE id = ?`,
		nullableID(folder.ParentID), folder.Name, folder.Icon, folder.Color,
		folder.IsExpanded, folder.Position, folder.UpdatedAt, folder.ID)
	if err != nil {
		return entity.Folder{}, errors.Wrapf(err, "updating folder %s", id)
	}

	return folder, nil
}

// Delete removes a folder row only. Notes and child folders are not touched;
// cascading is the caller's responsibility so that each removal can be
// queued for the remote side individually.
func (r *FolderRepo) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM folders WHERE id = ?", id); err != nil {
		return errors.Wrapf(err, "deleting folder %s", id)
	}

	return nil
}

// Put writes a folder as-is, preserving its timestamps
func (r *FolderRepo) Put(folder entity.Folder) error {
	_, err := r.db.Exec(`INSERT OR REPLACE INTO folders (`+folderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		folder.ID, folder.OwnerID, nullableID(folder.ParentID), folder.Name, folder.Icon,
		folder.Color, folder.IsExpanded, folder.Position, folder.CreatedAt, folder.UpdatedAt)
	if err != nil {
		return errors.Wrapf(err, "putting folder %s", folder.ID)
	}

	return nil
}

func (r *FolderRepo) nextPosition(ownerID string, parentID *string) (int, error) {
	var max sql.NullInt64
	var err error

	if parentID == nil {
		err = r.db.QueryRow(`SELECT MAX(position) FROM folders
			WHERE owner_id = ? AND parent_id IS NULL`, ownerID).Scan(&max)
	} else {
		err = r.db.QueryRow(`SELECT MAX(position) FROM folders
			WHERE owner_id = ? AND parent_id = ?`, ownerID, *parentID).Scan(&max)
	}
	if err != nil {
		return 0, errors.Wrap(err, "finding max folder position")
	}

	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func scanFolder(row *sql.Row) (entity.Folder, error) {
	var folder entity.Folder
	var parentID, icon, color sql.NullString

	err := row.Scan(&folder.ID, &folder.OwnerID, &parentID, &folder.Name, &icon, &color,
		&folder.IsExpanded, &folder.Position, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		return folder, err
	}

	folder.ParentID = idFromNullable(parentID)
	folder.Icon = icon.String
	folder.Color = color.String
	return folder, nil
}

func scanFolders(rows *sql.Rows) ([]entity.Folder, error) {
	var ret []entity.Folder

	for rows.Next() {
		var folder entity.Folder
		var parentID, icon, color sql.NullString

		err := rows.Scan(&folder.ID, &folder.OwnerID, &parentID, &folder.Name, &icon, &color,
			&folder.IsExpanded, &folder.Position, &folder.CreatedAt, &folder.UpdatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scanning a folder")
		}

		folder.ParentID = idFromNullable(parentID)
		folder.Icon = icon.String
		folder.Color = color.String
		ret = append(ret, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating folders")
	}

	return ret, nil
}
