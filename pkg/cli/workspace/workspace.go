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

// Package workspace exposes the user-facing operations over notes, folders,
// projects and tasks. Every mutation commits locally first and then hands
// the remote side of the write to the sync engine; the caller observes the
// local result immediately whether or not the connection is up.
package workspace

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/quillnotes/quill/pkg/cli/entity"
	"github.com/quillnotes/quill/pkg/cli/repository"
	"github.com/quillnotes/quill/pkg/cli/sync"
	"github.com/quillnotes/quill/pkg/cli/syncqueue"
)

// Workspace bundles the repositories with the engine that propagates their
// writes
type Workspace struct {
	repos  sync.Repos
	engine *sync.Engine
}

// New returns a workspace over the given repositories and engine
func New(repos sync.Repos, engine *sync.Engine) *Workspace {
	return &Workspace{repos: repos, engine: engine}
}

type notePayload struct {
	FolderID *string `json:"folderId"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
}

// CreateNote creates a note locally and queues it for the server
func (w *Workspace) CreateNote(ownerID string, input repository.NoteCreateInput) (entity.Note, error) {
	note, err := w.repos.Notes.Create(ownerID, input)
	if err != nil {
		return entity.Note{}, errors.Wrap(err, "creating note")
	}

	payload, err := json.Marshal(notePayload{
		FolderID: note.FolderID,
		Title:    note.Title,
		Content:  note.Content,
	})
	if err != nil {
		return entity.Note{}, errors.Wrap(err, "marshaling payload")
	}

	if err := w.engine.Write(entity.KindNote, note.ID, syncqueue.OpCreate, payload); err != nil {
		return entity.Note{}, err
	}

	return note, nil
}

// UpdateNote applies a partial update locally and queues it for the server.
// The queued payload carries only the fields the caller changed.
func (w *Workspace) UpdateNote(id string, input repository.NoteUpdateInput) (entity.Note, error) {
	note, err := w.repos.Notes.Update(id, input)
	if err != nil {
		return entity.Note{}, err
	}

	fields := map[string]interface{}{}
	if input.SetFolder {
		fields["folderId"] = input.FolderID
	}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Content != nil {
		fields["content"] = *input.Content
	}
	if input.IsPinned != nil {
		fields["isPinned"] = *input.IsPinned
	}
	if input.IsArchived != nil {
		fields["isArchived"] = *input.IsArchived
	}
	if input.IsTrashed != nil {
		fields["isTrashed"] = *input.IsTrashed
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return entity.Note{}, errors.Wrap(err, "marshaling payload")
	}

	if err := w.engine.Write(entity.KindNote, note.ID, syncqueue.OpUpdate, payload); err != nil {
		return entity.Note{}, err
	}

	return note, nil
}

// DeleteNote removes a note locally and queues the removal for the server
func (w *Workspace) DeleteNote(id string) error {
	if err := w.repos.Notes.Delete(id); err != nil {
		return err
	}

	return w.engine.Write(entity.KindNote, id, syncqueue.OpDelete, nil)
}

type folderPayload struct {
	ParentID *string `json:"parentId"`
	Name     string  `json:"name"`
	Icon     string  `json:"icon,omitempty"`
	Color    string  `json:"color,omitempty"`
	Position int     `json:"position"`
}

// CreateFolder creates a folder locally and queues it for the server
func (w *Workspace) CreateFolder(ownerID string, input repository.FolderCreateInput) (entity.Folder, error) {
	folder, err := w.repos.Folders.Create(ownerID, input)
	if err != nil {
		return entity.Folder{}, errors.Wrap(err, "creating folder")
	}

	payload, err := json.Marshal(folderPayload{
		ParentID: folder.ParentID,
		Name:     folder.Name,
		Icon:     folder.Icon,
		Color:    folder.Color,
		Position: folder.Position,
	})
	if err != nil {
		return entity.Folder{}, errors.Wrap(err, "marshaling payload")
	}

	if err := w.engine.Write(entity.KindFolder, folder.ID, syncqueue.OpCreate, payload); err != nil {
		return entity.Folder{}, err
	}

	return folder, nil
}

// UpdateFolder applies a partial update locally and queues it for the server
func (w *Workspace) UpdateFolder(id string, input repository.FolderUpdateInput) (entity.Folder, error) {
	folder, err := w.repos.Folders.Update(id, input)
	if err != nil {
		return entity.Folder{}, err
	}

	fields := map[string]interface{}{}
	if input.SetParent {
		fields["parentId"] = input.ParentID
	}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Icon != nil {
		fields["icon"] = *input.Icon
	}
	if input.Color != nil {
		fields["color"] = *input.Color
	}
	if input.IsExpanded != nil {
		fields["isExpanded"] = *input.IsExpanded
	}
	if input.Position != nil {
		fields["position"] = *input.Position
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return entity.Folder{}, errors.Wrap(err, "marshaling payload")
	}

	if err := w.engine.Write(entity.KindFolder, folder.ID, syncqueue.OpUpdate, payload); err != nil {
		return entity.Folder{}, err
	}

	return folder, nil
}

// DeleteFolder removes a folder together with its notes and subfolders.
// The cascade works depth first: the contained notes go, then each child
// folder recursively, and the folder itself last. Each removal is queued
// individually so the server applies the same order.
func (w *Workspace) DeleteFolder(ownerID, id string) error {
	notes, err := w.repos.Notes.GetByFolder(ownerID, &id)
	if err != nil {
		return errors.Wrap(err, "listing contained notes")
	}
	for _, note := range notes {
		if err := w.DeleteNote(note.ID); err != nil {
			return errors.Wrapf(err, "deleting contained note %s", note.ID)
		}
	}

	children, err := w.repos.Folders.GetByParent(ownerID, &id)
	if err != nil {
		return errors.Wrap(err, "listing child folders")
	}
	for _, child := range children {
		if err := w.DeleteFolder(ownerID, child.ID); err != nil {
			return errors.Wrapf(err, "deleting child folder %s", child.ID)
		}
	}

	if err := w.repos.Folders.Delete(id); err != nil {
		return err
	}

	return w.engine.Write(entity.KindFolder, id, syncqueue.OpDelete, nil)
}

type projectPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CreateProject creates a project locally and queues it for the server
func (w *Workspace) CreateProject(ownerID string, input repository.ProjectCreateInput) (entity.Project, error) {
	project, err := w.repos.Projects.Create(ownerID, input)
	if err != nil {
		return entity.Project{}, errors.Wrap(err, "creating project")
	}

	payload, err := json.Marshal(projectPayload{
		Name:        project.Name,
		Description: project.Description,
		Color:       project.Color,
	})
	if err != nil {
		return entity.Project{}, errors.Wrap(err, "marshaling payload")
	}

	if err := w.engine.Write(entity.KindProject, project.ID, syncqueue.OpCreate, payload); err != nil {
		return entity.Project{}, err
	}

	return project, nil
}

// UpdateProject applies a partial update locally and queues it for the server
func (w *Workspace) UpdateProject(id string, input repository.ProjectUpdateInput) (entity.Project, error) {
	project, err := w.repos.Projects.Update(id, input)
	if err != nil {
		return entity.Project{}, err
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Color != nil {
		fields["color"] = *input.Color
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return entity.Project{}, errors.Wrap(err, "marshaling payload")
	}

	if err := w.engine.Write(entity.KindProject, project.ID, syncqueue.OpUpdate, payload); err != nil {
		return entity.Project{}, err
	}

	return project, nil
}

// DeleteProject removes a project and its tasks. The tasks go first so that
// the server never sees a task whose project is already gone.
func (w *Workspace) DeleteProject(id string) error {
	tasks, err := w.repos.Tasks.GetByProject(id)
	if err != nil {
		return errors.Wrap(err, "listing project tasks")
	}
	for _, task := range tasks {
		if err := w.DeleteTask(task.ID); err != nil {
			return errors.Wrapf(err, "deleting task %s", task.ID)
		}
	}

	if err := w.repos.Projects.Delete(id); err != nil {
		return err
	}

	return w.engine.Write(entity.KindProject, id, syncqueue.OpDelete, nil)
}

type taskPayload struct {
	ProjectID   string `json:"projectId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
	Position    int    `json:"position"`
}

// CreateTask creates a task locally and queues it for the server. Task
// payloads carry the project id because the server scopes its task routes
// by project.
func (w *Workspace) CreateTask(input repository.TaskCreateInput) (entity.Task, error) {
	task, err := w.repos.Tasks.Create(input)
	if err != nil {
		return entity.Task{}, errors.Wrap(err, "creating task")
	}

	payload, err := json.Marshal(taskPayload{
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		IsCompleted: task.IsCompleted,
		Position:    task.Position,
	})
	if err != nil {
		return entity.Task{}, errors.Wrap(err, "marshaling payload")
	}

	if err := w.engine.Write(entity.KindTask, task.ID, syncqueue.OpCreate, payload); err != nil {
		return entity.Task{}, err
	}

	return task, nil
}

// UpdateTask applies a partial update locally and queues it for the server
func (w *Workspace) UpdateTask(id string, input repository.TaskUpdateInput) (entity.Task, error) {
	task, err := w.repos.Tasks.Update(id, input)
	if err != nil {
		return entity.Task{}, err
	}

	fields := map[string]interface{}{
		"projectId": task.ProjectID,
	}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.IsCompleted != nil {
		fields["isCompleted"] = *input.IsCompleted
	}
	if input.Position != nil {
		fields["position"] = *input.Position
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return entity.Task{}, errors.Wrap(err, "marshaling payload")
	}

	if err := w.engine.Write(entity.KindTask, task.ID, syncqueue.OpUpdate, payload); err != nil {
		return entity.Task{}, err
	}

	return task, nil
}

// ToggleTask flips a task's completion state
func (w *Workspace) ToggleTask(id string) (entity.Task, error) {
	task, err := w.repos.Tasks.GetByID(id)
	if err != nil {
		return entity.Task{}, err
	}

	completed := !task.IsCompleted
	return w.UpdateTask(id, repository.TaskUpdateInput{IsCompleted: &completed})
}

// DeleteTask removes a task locally and queues the removal for the server.
// The payload carries the project id so the removal can be routed to the
// project-scoped endpoint.
func (w *Workspace) DeleteTask(id string) error {
	task, err := w.repos.Tasks.GetByID(id)
	if err != nil {
		return err
	}

	if err := w.repos.Tasks.Delete(id); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]interface{}{"projectId": task.ProjectID})
	if err != nil {
		return errors.Wrap(err, "marshaling payload")
	}

	return w.engine.Write(entity.KindTask, id, syncqueue.OpDelete, payload)
}
