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

// NoteCreateInput holds the caller-supplied fields of a new note
type NoteCreateInput struct {
	FolderID *string
	Title    string
	Content  string
}

// NoteUpdateInput holds a partial update to a note. Nil fields are left
// untouched. SetFolder distinguishes "do not move" from "move to the top
// level": when it is true, FolderID is applied even if nil.
type NoteUpdateInput struct {
	FolderID   *string
	SetFolder  bool
	Title      *string
	Content    *string
	IsPinned   *bool
	IsArchived *bool
	IsTrashed  *bool
}

// NoteRepo accesses the notes in the local store
type NoteRepo struct {
	db    *database.DB
	clock clock.Clock
}

// NewNoteRepo returns a note repository backed by the given database
func NewNoteRepo(db *database.DB, c clock.Clock) *NoteRepo {
	return &NoteRepo{db: db, clock: c}
}

// WithDB returns a copy of the repository bound to the given database. It is
// used to run reads and writes inside a caller-managed transaction.
func (r *NoteRepo) WithDB(db *database.DB) *NoteRepo {
	return &NoteRepo{db: db, clock: r.clock}
}

const noteColumns = "id, owner_id, folder_id, title, content, is_pinned, is_archived, is_trashed, created_at, updated_at"

// GetAll returns the owner's notes that are not in the trash, newest first
func (r *NoteRepo) GetAll(ownerID string) ([]entity.Note, error) {
	rows, err := r.db.Query("SELECT "+noteColumns+` FROM notes
		WHERE owner_id = ? AND is_trashed = false ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}
	defer rows.Close()

	return scanNotes(rows)
}

// GetAllIncludingTrashed returns every note of the owner, trashed or not.
// The pull-merge reads through this so that a trashed local note still
// competes with its remote copy instead of being resurrected.
func (r *NoteRepo) GetAllIncludingTrashed(ownerID string) ([]entity.Note, error) {
	rows, err := r.db.Query("SELECT "+noteColumns+` FROM notes
		WHERE owner_id = ? ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}
	defer rows.Close()

	return scanNotes(rows)
}

// GetByFolder returns the notes in a folder, newest first. A nil folderID
// selects the top-level notes.
func (r *NoteRepo) GetByFolder(ownerID string, folderID *string) ([]entity.Note, error) {
	var rows *sql.Rows
	var err error

	if folderID == nil {
		rows, err = r.db.Query("SELECT "+noteColumns+` FROM notes
			WHERE owner_id = ? AND folder_id IS NULL AND is_trashed = false
			ORDER BY updated_at DESC`, ownerID)
	} else {
		rows, err = r.db.Query("SELECT "+noteColumns+` FROM notes
			WHERE owner_id = ? AND folder_id = ? AND is_trashed = false
			ORDER BY updated_at DESC`, ownerID, *folderID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying notes by folder")
	}
	defer rows.Close()

	return scanNotes(rows)
}

// GetByID returns a note by id. It returns ErrNotFound if the note does not
// exist.
func (r *NoteRepo) GetByID(id string) (entity.Note, error) {
	row := r.db.QueryRow("SELECT "+noteColumns+" FROM notes WHERE id = ?", id)

	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return note, ErrNotFound
	} else if err != nil {
		return note, errors.Wrapf(err, "finding note %s", id)
	}

	return note, nil
}

// Create inserts a new note and returns it. The repository assigns the id
// and the timestamps.
func (r *NoteRepo) Create(ownerID string, input NoteCreateInput) (entity.Note, error) {
	id, err := utils.GenerateUUID()
	if err != nil {
		return entity.Note{}, err
	}

	now := clock.Millis(r.clock)
	note := entity.Note{
		ID:        id,
		OwnerID:   ownerID,
		FolderID:  input.FolderID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = r.db.Exec(`INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.OwnerID, nullableID(note.FolderID), note.Title, note.Content,
		note.IsPinned, note.IsArchived, note.IsTrashed, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return entity.Note{}, errors.Wrap(err, "inserting note")
	}

	return note, nil
}

// Update merges the given fields into an existing note, refreshes its
// updated_at and returns the result. It returns ErrNotFound if the note does
// not exist.
func (r *NoteRepo) Update(id string, input NoteUpdateInput) (entity.Note, error) {
	note, err := r.GetByID(id)
	if err != nil {
		return entity.Note{}, err
	}

	if input.SetFolder {
		note.FolderID = input.FolderID
	}
	if input.Title != nil {
		note.Title = *input.Title
	}
	if input.Content != nil {
		note.Content = *input.Content
	}
	if input.IsPinned != nil {
		note.IsPinned = *input.IsPinned
	}
	if input.IsArchived != nil {
		note.IsArchived = *input.IsArchived
	}
	if input.IsTrashed != nil {
		note.IsTrashed = *input.IsTrashed
	}
	note.UpdatedAt = clock.Millis(r.clock)

	_, err = r.db.Exec(`UPDATE notes SET folder_id = ?, title = ?, content = ?,
		is_pinned = ?, is_archived = ?, is_trashed = ?, updated_at = ? WHERE id = ?`,
		nullableID(note.FolderID), note.Title, note.Content,
		note.IsPinned, note.IsArchived, note.IsTrashed, note.UpdatedAt, note.ID)
	if err != nil {
		return entity.Note{}, errors.Wrapf(err, "updating note %s", id)
	}

	return note, nil
}

// Delete removes a note. Deleting a nonexistent note is a no-op.
func (r *NoteRepo) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM notes WHERE id = ?", id); err != nil {
		return errors.Wrapf(err, "deleting note %s", id)
	}

	return nil
}

// Put writes a note as-is, preserving its timestamps. It is used by the
// pull-merge, which must store resolved winners without touching updated_at.
func (r *NoteRepo) Put(note entity.Note) error {
	_, err := r.db.Exec(`INSERT OR REPLACE INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.OwnerID, nullableID(note.FolderID), note.Title, note.Content,
		note.IsPinned, note.IsArchived, note.IsTrashed, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return errors.Wrapf(err, "putting note %s", note.ID)
	}

	return nil
}

func scanNote(row *sql.Row) (entity.Note, error) {
	var note entity.Note
	var folderID sql.NullString

	err := row.Scan(&note.ID, &note.OwnerID, &folderID, &note.Title, &note.Content,
		&note.IsPinned, &note.IsArchived, &note.IsTrashed, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return note, err
	}

	note.FolderID = idFromNullable(folderID)
	return note, nil
}

func scanNotes(rows *sql.Rows) ([]entity.Note, error) {
	var ret []entity.Note

	for rows.Next() {
		var note entity.Note
		var folderID sql.NullString

		err := rows.Scan(&note.ID, &note.OwnerID, &folderID, &note.Title, &note.Content,
			&note.IsPinned, &note.IsArchived, &note.IsTrashed, &note.CreatedAt, &note.UpdatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scanning a note")
		}

		note.FolderID = idFromNullable(folderID)
		ret = append(ret, note)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating notes")
	}

	return ret, nil
}
