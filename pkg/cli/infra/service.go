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

package infra

import (
	"github.com/quillnotes/quill/pkg/cli/client"
	"github.com/quillnotes/quill/pkg/cli/connectivity"
	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/repository"
	"github.com/quillnotes/quill/pkg/cli/sync"
	"github.com/quillnotes/quill/pkg/cli/syncqueue"
	"github.com/quillnotes/quill/pkg/cli/workspace"
)

// Service bundles the wired components a command works with
type Service struct {
	Workspace *workspace.Workspace
	Engine    *sync.Engine
	Queue     *syncqueue.Queue
	Repos     sync.Repos
	Monitor   *connectivity.Switch
}

// NewService wires the repositories, queue and engine from the context.
// Connectivity is probed once at assembly; a command that needs a live
// state can probe again through the monitor.
func NewService(ctx *context.QuillCtx) *Service {
	repos := sync.Repos{
		Notes:    repository.NewNoteRepo(ctx.DB, ctx.Clock),
		Folders:  repository.NewFolderRepo(ctx.DB, ctx.Clock),
		Projects: repository.NewProjectRepo(ctx.DB, ctx.Clock),
		Tasks:    repository.NewTaskRepo(ctx.DB, ctx.Clock),
	}

	queue := syncqueue.New(ctx.DB, ctx.Clock)
	monitor := connectivity.NewSwitch(connectivity.Check(ctx.APIEndpoint))
	api := client.NewHTTP(*ctx)
	engine := sync.New(ctx.DB, repos, queue, api, monitor, ctx.Clock)

	return &Service{
		Workspace: workspace.New(repos, engine),
		Engine:    engine,
		Queue:     queue,
		Repos:     repos,
		Monitor:   monitor,
	}
}
