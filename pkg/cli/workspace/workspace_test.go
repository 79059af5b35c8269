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

package workspace

import (
	"encoding/json"
	"testing"

	"github.com/quillnotes/quill/pkg/assert"
	"github.com/quillnotes/quill/pkg/cli/connectivity"
	"github.com/quillnotes/quill/pkg/cli/database"
	"github.com/quillnotes/quill/pkg/cli/entity"
	"github.com/quillnotes/quill/pkg/cli/repository"
	"github.com/quillnotes/quill/pkg/cli/sync"
	"github.com/quillnotes/quill/pkg/cli/syncqueue"
	"github.com/quillnotes/quill/pkg/clock"
)

const testOwner = "owner-1"

// nullAPI satisfies the engine without a server; workspace tests run the
// engine offline so that every write stays observable in the queue
type nullAPI struct{}

func (nullAPI) ListNotes() ([]entity.Note, error)                     { return nil, nil }
func (nullAPI) CreateNote(string, json.RawMessage) error              { return nil }
func (nullAPI) UpdateNote(string, json.RawMessage) error              { return nil }
func (nullAPI) DeleteNote(string) error                               { return nil }
func (nullAPI) ListFolders() ([]entity.Folder, error)                 { return nil, nil }
func (nullAPI) CreateFolder(string, json.RawMessage) error            { return nil }
func (nullAPI) UpdateFolder(string, json.RawMessage) error            { return nil }
func (nullAPI) DeleteFolder(string) error                             { return nil }
func (nullAPI) ListProjects() ([]entity.Project, error)               { return nil, nil }
func (nullAPI) CreateProject(string, json.RawMessage) error           { return nil }
func (nullAPI) UpdateProject(string, json.RawMessage) error           { return nil }
func (nullAPI) DeleteProject(string) error                            { return nil }
func (nullAPI) ListTasks(string) ([]entity.Task, error)               { return nil, nil }
func (nullAPI) CreateTask(string, string, json.RawMessage) error      { return nil }
func (nullAPI) UpdateTask(string, string, json.RawMessage) error      { return nil }
func (nullAPI) DeleteTask(string, string) error                       { return nil }

func newTestWorkspace(t *testing.T) (*Workspace, *syncqueue.Queue, sync.Repos) {
	db := database.InitTestDB(t)
	c := clock.NewMock()

	repos := sync.Repos{
		Notes:    repository.NewNoteRepo(db, c),
		Folders:  repository.NewFolderRepo(db, c),
		Projects: repository.NewProjectRepo(db, c),
		Tasks:    repository.NewTaskRepo(db, c),
	}
	queue := syncqueue.New(db, c)
	engine := sync.New(db, repos, queue, nullAPI{}, connectivity.NewSwitch(false), c)

	return New(repos, engine), queue, repos
}

func TestCreateNoteOffline(t *testing.T) {
	w, queue, repos := newTestWorkspace(t)

	note, err := w.CreateNote(testOwner, repository.NoteCreateInput{Title: "hello", Content: "world"})
	assert.NoError(t, err, "creating note")

	// the local write is visible immediately
	got, err := repos.Notes.GetByID(note.ID)
	assert.NoError(t, err, "finding note")
	assert.Equal(t, got.Title, "hello", "title mismatch")

	// and the mutation waits in the queue
	items, err := queue.GetPending()
	assert.NoError(t, err, "getting pending")
	assert.Equal(t, len(items), 1, "pending count mismatch")
	assert.Equal(t, items[0].Kind, entity.KindNote, "kind mismatch")
	assert.Equal(t, items[0].EntityID, note.ID, "entity id mismatch")
	assert.Equal(t, items[0].Operation, syncqueue.OpCreate, "operation mismatch")

	var payload struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	assert.NoError(t, json.Unmarshal(items[0].Payload, &payload), "unmarshaling payload")
	assert.Equal(t, payload.Title, "hello", "payload title mismatch")
	assert.Equal(t, payload.Content, "world", "payload content mismatch")
}

func TestUpdateNotePayloadIsPartial(t *testing.T) {
	w, queue, _ := newTestWorkspace(t)

	note, err := w.CreateNote(testOwner, repository.NoteCreateInput{Title: "before", Content: "body"})
	assert.NoError(t, err, "creating note")

	title := "after"
	_, err = w.UpdateNote(note.ID, repository.NoteUpdateInput{Title: &title})
	assert.NoError(t, err, "updating note")

	items, err := queue.GetPending()
	assert.NoError(t, err, "getting pending")
	assert.Equal(t, len(items), 2, "pending count mismatch")

	var fields map[string]interface{}
	assert.NoError(t, json.Unmarshal(items[1].Payload, &fields), "unmarshaling payload")
	assert.Equal(t, len(fields), 1, "update payload should carry only the changed field")
	assert.Equal(t, fields["title"], "after", "payload title mismatch")
}

func TestDeleteFolderCascade(t *testing.T) {
	w, queue, _ := newTestWorkspace(t)

	f1, err := w.CreateFolder(testOwner, repository.FolderCreateInput{Name: "f1"})
	assert.NoError(t, err, "creating f1")
	f2, err := w.CreateFolder(testOwner, repository.FolderCreateInput{ParentID: &f1.ID, Name: "f2"})
	assert.NoError(t, err, "creating f2")
	n1, err := w.CreateNote(testOwner, repository.NoteCreateInput{FolderID: &f1.ID, Title: "n1"})
	assert.NoError(t, err, "creating n1")
	n2, err := w.CreateNote(testOwner, repository.NoteCreateInput{FolderID: &f2.ID, Title: "n2"})
	assert.NoError(t, err, "creating n2")

	assert.NoError(t, w.DeleteFolder(testOwner, f1.ID), "deleting f1")

	items, err := queue.GetPending()
	assert.NoError(t, err, "getting pending")

	// four creates followed by the cascade; the folder itself goes last
	var deletes []syncqueue.Item
	for _, item := range items {
		if item.Operation == syncqueue.OpDelete {
			deletes = append(deletes, item)
		}
	}

	assert.Equal(t, len(deletes), 4, "delete count mismatch")
	assert.Equal(t, deletes[0].EntityID, n1.ID, "contained note should go first")
	assert.Equal(t, deletes[1].EntityID, n2.ID, "nested note should go before its folder")
	assert.Equal(t, deletes[2].EntityID, f2.ID, "child folder should go before the parent")
	assert.Equal(t, deletes[3].EntityID, f1.ID, "the deleted folder itself goes last")
}

func TestDeleteProjectCascade(t *testing.T) {
	w, queue, repos := newTestWorkspace(t)

	p, err := w.CreateProject(testOwner, repository.ProjectCreateInput{Name: "launch"})
	assert.NoError(t, err, "creating project")
	task, err := w.CreateTask(repository.TaskCreateInput{ProjectID: p.ID, Title: "ship"})
	assert.NoError(t, err, "creating task")

	assert.NoError(t, w.DeleteProject(p.ID), "deleting project")

	_, err = repos.Projects.GetByID(p.ID)
	assert.Equal(t, err, repository.ErrNotFound, "project should be gone")
	_, err = repos.Tasks.GetByID(task.ID)
	assert.Equal(t, err, repository.ErrNotFound, "task should be gone")

	items, err := queue.GetPending()
	assert.NoError(t, err, "getting pending")

	var deletes []syncqueue.Item
	for _, item := range items {
		if item.Operation == syncqueue.OpDelete {
			deletes = append(deletes, item)
		}
	}

	assert.Equal(t, len(deletes), 2, "delete count mismatch")
	assert.Equal(t, deletes[0].EntityID, task.ID, "task should go before its project")
	assert.Equal(t, deletes[1].EntityID, p.ID, "project goes last")

	// the task removal is routed by project
	var payload struct {
		ProjectID string `json:"projectId"`
	}
	assert.NoError(t, json.Unmarshal(deletes[0].Payload, &payload), "unmarshaling payload")
	assert.Equal(t, payload.ProjectID, p.ID, "payload project mismatch")
}

func TestToggleTask(t *testing.T) {
	w, _, repos := newTestWorkspace(t)

	p, err := w.CreateProject(testOwner, repository.ProjectCreateInput{Name: "launch"})
	assert.NoError(t, err, "creating project")
	task, err := w.CreateTask(repository.TaskCreateInput{ProjectID: p.ID, Title: "ship"})
	assert.NoError(t, err, "creating task")

	got, err := w.ToggleTask(task.ID)
	assert.NoError(t, err, "toggling task")
	assert.Equal(t, got.IsCompleted, true, "task should be completed")

	got2, err := w.ToggleTask(task.ID)
	assert.NoError(t, err, "toggling task back")
	assert.Equal(t, got2.IsCompleted, false, "task should be uncompleted")

	stored, err := repos.Tasks.GetByID(task.ID)
	assert.NoError(t, err, "finding task")
	assert.Equal(t, stored.IsCompleted, false, "stored state mismatch")
}
