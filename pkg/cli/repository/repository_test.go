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
	"testing"
	"time"

	"github.com/quillnotes/quill/pkg/assert"
	"github.com/quillnotes/quill/pkg/cli/database"
	"github.com/quillnotes/quill/pkg/cli/entity"
	"github.com/quillnotes/quill/pkg/clock"
)

const testOwner = "owner-1"

func newTestEnv(t *testing.T) (*database.DB, *clock.Mock) {
	return database.InitTestDB(t), clock.NewMock()
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestNoteCreate(t *testing.T) {
	db, c := newTestEnv(t)
	repo := NewNoteRepo(db, c)

	note, err := repo.Create(testOwner, NoteCreateInput{Title: "groceries", Content: "milk"})
	assert.NoError(t, err, "creating note")

	assert.NotEqual(t, note.ID, "", "id should be assigned")
	assert.Equal(t, note.OwnerID, testOwner, "owner mismatch")
	assert.True(t, note.FolderID == nil, "folder should be nil")
	assert.Equal(t, note.CreatedAt, clock.Millis(c), "created_at mismatch")
	assert.Equal(t, note.UpdatedAt, note.CreatedAt, "updated_at should equal created_at")

	got, err := repo.GetByID(note.ID)
	assert.NoError(t, err, "finding note")
	assert.DeepEqual(t, got, note, "stored note mismatch")
}

func TestNoteGetAllExcludesTrashed(t *testing.T) {
	db, c := newTestEnv(t)
	repo := NewNoteRepo(db, c)

	older, err := repo.Create(testOwner, NoteCreateInput{Title: "older"})
	assert.NoError(t, err, "creating older note")

	c.Advance(time.Minute)
	newer, err := repo.Create(testOwner, NoteCreateInput{Title: "newer"})
	assert.NoError(t, err, "creating newer note")

	c.Advance(time.Minute)
	trashed, err := repo.Create(testOwner, NoteCreateInput{Title: "trashed"})
	assert.NoError(t, err, "creating trashed note")
	_, err = repo.Update(trashed.ID, NoteUpdateInput{IsTrashed: boolptr(true)})
	assert.NoError(t, err, "trashing note")

	got, err := repo.GetAll(testOwner)
	assert.NoError(t, err, "getting all notes")

	assert.Equal(t, len(got), 2, "note count mismatch")
	assert.Equal(t, got[0].ID, newer.ID, "newest note should come first")
	assert.Equal(t, got[1].ID, older.ID, "older note should come last")
}

func TestNoteUpdatePartial(t *testing.T) {
	db, c := newTestEnv(t)
	repo := NewNoteRepo(db, c)

	note, err := repo.Create(testOwner, NoteCreateInput{Title: "before", Content: "body"})
	assert.NoError(t, err, "creating note")

	c.Advance(time.Minute)
	got, err := repo.Update(note.ID, NoteUpdateInput{Title: strptr("after")})
	assert.NoError(t, err, "updating note")

	assert.Equal(t, got.Title, "after", "title should change")
	assert.Equal(t, got.Content, "body", "content should be untouched")
	assert.True(t, got.UpdatedAt > note.UpdatedAt, "updated_at should advance")
	assert.Equal(t, got.CreatedAt, note.CreatedAt, "created_at should not change")
}

func TestNoteUpdateMoveToRoot(t *testing.T) {
	db, c := newTestEnv(t)
	folders := NewFolderRepo(db, c)
	notes := NewNoteRepo(db, c)

	folder, err := folders.Create(testOwner, FolderCreateInput{Name: "work"})
	assert.NoError(t, err, "creating folder")

	note, err := notes.Create(testOwner, NoteCreateInput{FolderID: &folder.ID, Title: "n"})
	assert.NoError(t, err, "creating note")

	// SetFolder with a nil FolderID moves the note to the top level
	got, err := notes.Update(note.ID, NoteUpdateInput{SetFolder: true})
	assert.NoError(t, err, "moving note")
	assert.True(t, got.FolderID == nil, "folder should be nil after the move")

	// without SetFolder the folder is untouched
	moved, err := notes.Update(note.ID, NoteUpdateInput{FolderID: &folder.ID, SetFolder: true})
	assert.NoError(t, err, "moving note back")
	got, err = notes.Update(moved.ID, NoteUpdateInput{Title: strptr("renamed")})
	assert.NoError(t, err, "renaming note")
	assert.DeepEqual(t, got.FolderID, &folder.ID, "folder should be untouched")
}

func TestNoteUpdateNotFound(t *testing.T) {
	db, c := newTestEnv(t)
	repo := NewNoteRepo(db, c)

	_, err := repo.Update("no-such-id", NoteUpdateInput{Title: strptr("x")})
	assert.Equal(t, err, ErrNotFound, "error mismatch")
}

func TestNotePutPreservesTimestamps(t *testing.T) {
	db, c := newTestEnv(t)
	repo := NewNoteRepo(db, c)

	note := entity.Note{
		ID:        "n-remote",
		OwnerID:   testOwner,
		Title:     "from remote",
		CreatedAt: 1000,
		UpdatedAt: 2000,
	}
	assert.NoError(t, repo.Put(note), "putting note")

	got, err := repo.GetByID("n-remote")
	assert.NoError(t, err, "finding note")
	assert.Equal(t, got.CreatedAt, int64(1000), "created_at mismatch")
	assert.Equal(t, got.UpdatedAt, int64(2000), "updated_at mismatch")

	// a second put replaces the row instead of erroring
	note.Title = "edited"
	assert.NoError(t, repo.Put(note), "putting note again")

	got, err = repo.GetByID("n-remote")
	assert.NoError(t, err, "finding note")
	assert.Equal(t, got.Title, "edited", "title mismatch")
}

func TestFolderPositionAppend(t *testing.T) {
	db, c := newTestEnv(t)
	repo := NewFolderRepo(db, c)

	first, err := repo.Create(testOwner, FolderCreateInput{Name: "a"})
	assert.NoError(t, err, "creating first folder")
	second, err := repo.Create(testOwner, FolderCreateInput{Name: "b"})
	assert.NoError(t, err, "creating second folder")

	assert.Equal(t, first.Position, 0, "first position mismatch")
	assert.Equal(t, second.Position, 1, "second position mismatch")

	// positions are per parent, not global
	child, err := repo.Create(testOwner, FolderCreateInput{ParentID: &first.ID, Name: "c"})
	assert.NoError(t, err, "creating child folder")
	assert.Equal(t, child.Position, 0, "child position mismatch")
}

func TestFolderGetByParent(t *testing.T) {
	db, c := newTestEnv(t)
	repo := NewFolderRepo(db, c)

	top, err := repo.Create(testOwner, FolderCreateInput{Name: "top"})
	assert.NoError(t, err, "creating top folder")
	child, err := repo.Create(testOwner, FolderCreateInput{ParentID: &top.ID, Name: "child"})
	assert.NoError(t, err, "creating child folder")

	roots, err := repo.GetByParent(testOwner, nil)
	assert.NoError(t, err, "getting top-level folders")
	assert.Equal(t, len(roots), 1, "top-level count mismatch")
	assert.Equal(t, roots[0].ID, top.ID, "top-level id mismatch")

	children, err := repo.GetByParent(testOwner, &top.ID)
	assert.NoError(t, err, "getting child folders")
	assert.Equal(t, len(children), 1, "child count mismatch")
	assert.Equal(t, children[0].ID, child.ID, "child id mismatch")
}

func TestFolderDeleteLeavesChildren(t *testing.T) {
	db, c := newTestEnv(t)
	folders := NewFolderRepo(db, c)
	notes := NewNoteRepo(db, c)

	folder, err := folders.Create(testOwner, FolderCreateInput{Name: "f"})
	assert.NoError(t, err, "creating folder")
	note, err := notes.Create(testOwner, NoteCreateInput{FolderID: &folder.ID, Title: "n"})
	assert.NoError(t, err, "creating note")

	assert.NoError(t, folders.Delete(folder.ID), "deleting folder")

	_, err = folders.GetByID(folder.ID)
	assert.Equal(t, err, ErrNotFound, "folder should be gone")

	// the contained note is untouched; cascading is the workspace's job
	_, err = notes.GetByID(note.ID)
	assert.NoError(t, err, "note should survive the folder delete")
}

func TestProjectDefaultColor(t *testing.T) {
	db, c := newTestEnv(t)
	repo := NewProjectRepo(db, c)

	p, err := repo.Create(testOwner, ProjectCreateInput{Name: "launch"})
	assert.NoError(t, err, "creating project")
	assert.Equal(t, p.Color, "blue", "default color mismatch")

	p, err = repo.Create(testOwner, ProjectCreateInput{Name: "ops", Color: "red"})
	assert.NoError(t, err, "creating colored project")
	assert.Equal(t, p.Color, "red", "explicit color mismatch")
}

func TestTaskPositionAppend(t *testing.T) {
	db, c := newTestEnv(t)
	projects := NewProjectRepo(db, c)
	tasks := NewTaskRepo(db, c)

	p, err := projects.Create(testOwner, ProjectCreateInput{Name: "launch"})
	assert.NoError(t, err, "creating project")

	first, err := tasks.Create(TaskCreateInput{ProjectID: p.ID, Title: "one"})
	assert.NoError(t, err, "creating first task")
	second, err := tasks.Create(TaskCreateInput{ProjectID: p.ID, Title: "two"})
	assert.NoError(t, err, "creating second task")

	assert.Equal(t, first.Position, 0, "first position mismatch")
	assert.Equal(t, second.Position, 1, "second position mismatch")

	got, err := tasks.GetByProject(p.ID)
	assert.NoError(t, err, "getting tasks")
	assert.Equal(t, len(got), 2, "task count mismatch")
	assert.Equal(t, got[0].ID, first.ID, "task order mismatch")
	assert.Equal(t, got[1].ID, second.ID, "task order mismatch")
}

func TestTaskToggle(t *testing.T) {
	db, c := newTestEnv(t)
	projects := NewProjectRepo(db, c)
	tasks := NewTaskRepo(db, c)

	p, err := projects.Create(testOwner, ProjectCreateInput{Name: "launch"})
	assert.NoError(t, err, "creating project")
	task, err := tasks.Create(TaskCreateInput{ProjectID: p.ID, Title: "ship"})
	assert.NoError(t, err, "creating task")

	got, err := tasks.Update(task.ID, TaskUpdateInput{IsCompleted: boolptr(true)})
	assert.NoError(t, err, "completing task")
	assert.Equal(t, got.IsCompleted, true, "task should be completed")
	assert.Equal(t, got.Title, "ship", "title should be untouched")
}
