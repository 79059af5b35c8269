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

// Package sync implements the engine that moves local mutations to the
// server and merges the server's state back into the local store.
//
// Local writes never wait for the network: they commit to the local store,
// queue a mutation, and trigger a background flush when the connection is
// up. The flush replays the queue in order with at-least-once delivery.
package sync

import (
	"encoding/json"
	gosync "sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/quillnotes/quill/pkg/cli/client"
	"github.com/quillnotes/quill/pkg/cli/connectivity"
	"github.com/quillnotes/quill/pkg/cli/database"
	"github.com/quillnotes/quill/pkg/cli/entity"
	"github.com/quillnotes/quill/pkg/cli/log"
	"github.com/quillnotes/quill/pkg/cli/repository"
	"github.com/quillnotes/quill/pkg/cli/syncqueue"
	"github.com/quillnotes/quill/pkg/clock"
)

// RemoteAPI is the server surface the engine pushes to and pulls from
type RemoteAPI interface {
	ListNotes() ([]entity.Note, error)
	CreateNote(id string, payload json.RawMessage) error
	UpdateNote(id string, payload json.RawMessage) error
	DeleteNote(id string) error

	ListFolders() ([]entity.Folder, error)
	CreateFolder(id string, payload json.RawMessage) error
	UpdateFolder(id string, payload json.RawMessage) error
	DeleteFolder(id string) error

	ListProjects() ([]entity.Project, error)
	CreateProject(id string, payload json.RawMessage) error
	UpdateProject(id string, payload json.RawMessage) error
	DeleteProject(id string) error

	ListTasks(projectID string) ([]entity.Task, error)
	CreateTask(projectID, id string, payload json.RawMessage) error
	UpdateTask(projectID, id string, payload json.RawMessage) error
	DeleteTask(projectID, id string) error
}

// Repos bundles the repositories the engine merges pulled state into
type Repos struct {
	Notes    *repository.NoteRepo
	Folders  *repository.FolderRepo
	Projects *repository.ProjectRepo
	Tasks    *repository.TaskRepo
}

// WithDB rebinds every repository to the given database
func (r Repos) WithDB(db *database.DB) Repos {
	return Repos{
		Notes:    r.Notes.WithDB(db),
		Folders:  r.Folders.WithDB(db),
		Projects: r.Projects.WithDB(db),
		Tasks:    r.Tasks.WithDB(db),
	}
}

// Engine pushes queued mutations to the server and pulls remote state.
// One engine exists per process; its collaborators arrive through New.
type Engine struct {
	db      *database.DB
	repos   Repos
	queue   *syncqueue.Queue
	api     RemoteAPI
	monitor connectivity.Monitor
	clock   clock.Clock

	// flushing guards against overlapping drains; a flush requested while
	// one is running is a no-op, not an error
	flushing atomic.Bool

	wg     gosync.WaitGroup
	wakeup chan struct{}
	stop   chan struct{}
}

// New returns an engine. Call Start to begin listening for connectivity.
func New(db *database.DB, repos Repos, queue *syncqueue.Queue, api RemoteAPI, monitor connectivity.Monitor, c clock.Clock) *Engine {
	return &Engine{
		db:      db,
		repos:   repos,
		queue:   queue,
		api:     api,
		monitor: monitor,
		clock:   c,
		wakeup:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

// Start subscribes to connectivity and flushes the queue whenever the
// connection comes back up
func (e *Engine) Start() {
	e.monitor.Notify(e.wakeup)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		for {
			select {
			case <-e.wakeup:
				if err := e.Flush(); err != nil {
					log.Warnf("flushing after reconnect: %s\n", err)
				}
			case <-e.stop:
				return
			}
		}
	}()
}

// Stop unsubscribes from connectivity and waits for in-flight background
// work to finish
func (e *Engine) Stop() {
	e.monitor.Stop(e.wakeup)
	close(e.stop)
	e.wg.Wait()
}

// Write queues a mutation for delivery and, when the connection is up,
// flushes in the background. The caller has already committed the mutation
// locally; Write never blocks on the network.
func (e *Engine) Write(kind entity.Kind, entityID string, op syncqueue.Operation, payload json.RawMessage) error {
	if err := e.queue.Enqueue(kind, entityID, op, payload); err != nil {
		return errors.Wrap(err, "queueing mutation")
	}

	if e.monitor.Online() {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()

			if err := e.Flush(); err != nil {
				log.Warnf("background flush: %s\n", err)
			}
		}()
	}

	return nil
}

// Flush drains the pending queue in order. It is a no-op when offline or
// when another flush is already running. A failing item is retried on later
// flushes until its retry budget runs out; it does not block the items
// behind it.
func (e *Engine) Flush() error {
	if !e.monitor.Online() {
		return nil
	}

	if !e.flushing.CompareAndSwap(false, true) {
		return nil
	}
	defer e.flushing.Store(false)

	items, err := e.queue.GetPending()
	if err != nil {
		return errors.Wrap(err, "getting pending items")
	}

	for _, item := range items {
		if err := e.queue.MarkSyncing(item.LocalSeq); err != nil {
			return errors.Wrapf(err, "marking item %d", item.LocalSeq)
		}

		if err := e.dispatch(item); err != nil {
			// A server rejection gets the same retry treatment as a
			// transient failure; exhausted items park as failed.
			var httpErr *client.HTTPError
			if errors.As(err, &httpErr) && httpErr.IsClientError() {
				log.Warnf("server rejected %s %s %s: %s\n", item.Operation, item.Kind, item.EntityID, err)
			} else {
				log.Warnf("delivering %s %s %s: %s\n", item.Operation, item.Kind, item.EntityID, err)
			}

			if err := e.queue.MarkFailed(item.LocalSeq, item.RetryCount+1); err != nil {
				return errors.Wrapf(err, "recording failure of item %d", item.LocalSeq)
			}
			continue
		}

		if err := e.queue.MarkDone(item.LocalSeq); err != nil {
			return errors.Wrapf(err, "removing item %d", item.LocalSeq)
		}
	}

	return nil
}

func (e *Engine) dispatch(item syncqueue.Item) error {
	switch item.Kind {
	case entity.KindNote:
		switch item.Operation {
		case syncqueue.OpCreate:
			return e.api.CreateNote(item.EntityID, item.Payload)
		case syncqueue.OpUpdate:
			return e.api.UpdateNote(item.EntityID, item.Payload)
		case syncqueue.OpDelete:
			return e.api.DeleteNote(item.EntityID)
		}
	case entity.KindFolder:
		switch item.Operation {
		case syncqueue.OpCreate:
			return e.api.CreateFolder(item.EntityID, item.Payload)
		case syncqueue.OpUpdate:
			return e.api.UpdateFolder(item.EntityID, item.Payload)
		case syncqueue.OpDelete:
			return e.api.DeleteFolder(item.EntityID)
		}
	case entity.KindProject:
		switch item.Operation {
		case syncqueue.OpCreate:
			return e.api.CreateProject(item.EntityID, item.Payload)
		case syncqueue.OpUpdate:
			return e.api.UpdateProject(item.EntityID, item.Payload)
		case syncqueue.OpDelete:
			return e.api.DeleteProject(item.EntityID)
		}
	case entity.KindTask:
		projectID := taskProjectID(item.Payload)

		switch item.Operation {
		case syncqueue.OpCreate:
			return e.api.CreateTask(projectID, item.EntityID, item.Payload)
		case syncqueue.OpUpdate:
			return e.api.UpdateTask(projectID, item.EntityID, item.Payload)
		case syncqueue.OpDelete:
			return e.api.DeleteTask(projectID, item.EntityID)
		}
	}

	return errors.Errorf("unknown mutation %s %s", item.Operation, item.Kind)
}

// taskProjectID extracts the project scope from a task payload. A payload
// without a projectId falls back to the empty scope rather than failing the
// item; the server resolves the task by its id.
func taskProjectID(payload json.RawMessage) string {
	if payload == nil {
		return ""
	}

	var p struct {
		ProjectID string `json:"projectId"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return ""
	}

	return p.ProjectID
}
