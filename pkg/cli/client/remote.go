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

package client

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/entity"
)

// HTTP talks to the Quill server over its JSON API.
//
// Entities carry client-assigned ids, so creates go through PUT on the
// entity path. Replaying a delivered create or delete is therefore
// harmless, which is what at-least-once replay of the queue requires.
type HTTP struct {
	Ctx context.QuillCtx
}

// NewHTTP returns a client for the server named by the context's APIEndpoint
func NewHTTP(ctx context.QuillCtx) *HTTP {
	return &HTTP{Ctx: ctx}
}

// ListNotes fetches all of the user's notes from the server
func (c *HTTP) ListNotes() ([]entity.Note, error) {
	var ret []entity.Note
	if err := c.getJSON("/v1/notes", &ret); err != nil {
		return nil, errors.Wrap(err, "listing notes")
	}

	return ret, nil
}

// CreateNote creates a note on the server
func (c *HTTP) CreateNote(id string, payload json.RawMessage) error {
	return c.send("PUT", fmt.Sprintf("/v1/notes/%s", id), payload)
}

// UpdateNote updates a note on the server
func (c *HTTP) UpdateNote(id string, payload json.RawMessage) error {
	return c.send("PATCH", fmt.Sprintf("/v1/notes/%s", id), payload)
}

// DeleteNote removes a note on the server
func (c *HTTP) DeleteNote(id string) error {
	return c.send("DELETE", fmt.Sprintf("/v1/notes/%s", id), nil)
}

// ListFolders fetches all of the user's folders from the server
func (c *HTTP) ListFolders() ([]entity.Folder, error) {
	var ret []entity.Folder
	if err := c.getJSON("/v1/folders", &ret); err != nil {
		return nil, errors.Wrap(err, "listing folders")
	}

	return ret, nil
}

// CreateFolder creates a folder on the server
func (c *HTTP) CreateFolder(id string, payload json.RawMessage) error {
	return c.send("PUT", fmt.Sprintf("/v1/folders/%s", id), payload)
}

// UpdateFolder updates a folder on the server
func (c *HTTP) UpdateFolder(id string, payload json.RawMessage) error {
	return c.send("PATCH", fmt.Sprintf("/v1/folders/%s", id), payload)
}

// DeleteFolder removes a folder on the server
func (c *HTTP) DeleteFolder(id string) error {
	return c.send("DELETE", fmt.Sprintf("/v1/folders/%s", id), nil)
}

// ListProjects fetches all of the user's projects from the server
func (c *HTTP) ListProjects() ([]entity.Project, error) {
	var ret []entity.Project
	if err := c.getJSON("/v1/projects", &ret); err != nil {
		return nil, errors.Wrap(err, "listing projects")
	}

	return ret, nil
}

// CreateProject creates a project on the server
func (c *HTTP) CreateProject(id string, payload json.RawMessage) error {
	return c.send("PUT", fmt.Sprintf("/v1/projects/%s", id), payload)
}

// UpdateProject updates a project on the server
func (c *HTTP) UpdateProject(id string, payload json.RawMessage) error {
	return c.send("PATCH", fmt.Sprintf("/v1/projects/%s", id), payload)
}

// DeleteProject removes a project on the server
func (c *HTTP) DeleteProject(id string) error {
	return c.send("DELETE", fmt.Sprintf("/v1/projects/%s", id), nil)
}

// ListTasks fetches the tasks of a project from the server
func (c *HTTP) ListTasks(projectID string) ([]entity.Task, error) {
	var ret []entity.Task
	if err := c.getJSON(fmt.Sprintf("/v1/projects/%s/tasks", projectID), &ret); err != nil {
		return nil, errors.Wrapf(err, "listing tasks of project %s", projectID)
	}

	return ret, nil
}

// CreateTask creates a task on the server under the given project
func (c *HTTP) CreateTask(projectID, id string, payload json.RawMessage) error {
	return c.send("PUT", fmt.Sprintf("/v1/projects/%s/tasks/%s", projectID, id), payload)
}

// UpdateTask updates a task on the server
func (c *HTTP) UpdateTask(projectID, id string, payload json.RawMessage) error {
	return c.send("PATCH", fmt.Sprintf("/v1/projects/%s/tasks/%s", projectID, id), payload)
}

// DeleteTask removes a task on the server
func (c *HTTP) DeleteTask(projectID, id string) error {
	return c.send("DELETE", fmt.Sprintf("/v1/projects/%s/tasks/%s", projectID, id), nil)
}

// getJSON and send go out even without a session key. A signed-out client
// gets a 401-class response, which the queue treats like any other server
// rejection instead of failing before the network.
func (c *HTTP) getJSON(path string, dest interface{}) error {
	res, err := doReq(c.Ctx, "GET", path, "")
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return errors.Wrap(err, "decoding response payload")
	}

	return nil
}

func (c *HTTP) send(method, path string, payload json.RawMessage) error {
	res, err := doReq(c.Ctx, method, path, string(payload))
	if err != nil {
		return err
	}
	res.Body.Close()

	return nil
}
