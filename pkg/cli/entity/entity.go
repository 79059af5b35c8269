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

// Package entity defines the data types that are synchronized between the
// local store and the remote service
package entity

// Kind identifies the type of a synchronized entity
type Kind string

// The entity kinds
const (
	KindNote    Kind = "note"
	KindFolder  Kind = "folder"
	KindProject Kind = "project"
	KindTask    Kind = "task"
)

// Note is a document that belongs to an owner and optionally to a folder.
// A nil FolderID places the note at the top level.
type Note struct {
	ID         string  `json:"id"`
	OwnerID    string  `json:"ownerId"`
	FolderID   *string `json:"folderId"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	IsPinned   bool    `json:"isPinned"`
	IsArchived bool    `json:"isArchived"`
	IsTrashed  bool    `json:"isTrashed"`
	CreatedAt  int64   `json:"createdAt"`
	UpdatedAt  int64   `json:"updatedAt"`
}

// Key returns the globally unique id of the note
func (n Note) Key() string { return n.ID }

// ModifiedAt returns the timestamp of the last write to the note
func (n Note) ModifiedAt() int64 { return n.UpdatedAt }

// Folder is a container for notes and other folders. A nil ParentID places
// the folder at the top level. Position orders the folder among its siblings.
type Folder struct {
	ID         string  `json:"id"`
	OwnerID    string  `json:"ownerId"`
	ParentID   *string `json:"parentId"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon,omitempty"`
	Color      string  `json:"color,omitempty"`
	IsExpanded bool    `json:"isExpanded"`
	Position   int     `json:"position"`
	CreatedAt  int64   `json:"createdAt"`
	UpdatedAt  int64   `json:"updatedAt"`
}

// Key returns the globally unique id of the folder
func (f Folder) Key() string { return f.ID }

// ModifiedAt returns the timestamp of the last write to the folder
func (f Folder) ModifiedAt() int64 { return f.UpdatedAt }

// Project is a collection of tasks
type Project struct {
	ID          string `json:"id"`
	OwnerID     string `json:"ownerId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// Key returns the globally unique id of the project
func (p Project) Key() string { return p.ID }

// ModifiedAt returns the timestamp of the last write to the project
func (p Project) ModifiedAt() int64 { return p.UpdatedAt }

// Task is a unit of work within a project. Position orders the task within
// its project.
type Task struct {
	ID          string `json:"id"`
	ProjectID   string `json:"projectId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
	Position    int    `json:"position"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// Key returns the globally unique id of the task
func (t Task) Key() string { return t.ID }

// ModifiedAt returns the timestamp of the last write to the task
func (t Task) ModifiedAt() int64 { return t.UpdatedAt }
