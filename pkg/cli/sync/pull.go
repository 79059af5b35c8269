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

package sync

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/quillnotes/quill/pkg/cli/conflict"
	"github.com/quillnotes/quill/pkg/cli/consts"
	"github.com/quillnotes/quill/pkg/cli/database"
	"github.com/quillnotes/quill/pkg/cli/entity"
	"github.com/quillnotes/quill/pkg/cli/log"
	"github.com/quillnotes/quill/pkg/clock"
)

// PullAll fetches the server's state and merges it into the local store.
// It is a no-op when offline. A failed pull leaves the local store exactly
// as it was; the failure is logged and the next pull starts over.
func (e *Engine) PullAll(ownerID string) {
	if !e.monitor.Online() {
		log.Debug("offline; skipping pull\n")
		return
	}

	if err := e.pullAll(ownerID); err != nil {
		log.Warnf("pulling from the server: %s\n", err)
	}
}

func (e *Engine) pullAll(ownerID string) error {
	var remoteNotes []entity.Note
	var remoteFolders []entity.Folder
	var remoteProjects []entity.Project

	var g errgroup.Group
	g.Go(func() error {
		var err error
		remoteNotes, err = e.api.ListNotes()
		return err
	})
	g.Go(func() error {
		var err error
		remoteFolders, err = e.api.ListFolders()
		return err
	})
	g.Go(func() error {
		var err error
		remoteProjects, err = e.api.ListProjects()
		return err
	})
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "fetching remote state")
	}

	localNotes, err := e.repos.Notes.GetAllIncludingTrashed(ownerID)
	if err != nil {
		return errors.Wrap(err, "reading local notes")
	}
	localFolders, err := e.repos.Folders.GetAll(ownerID)
	if err != nil {
		return errors.Wrap(err, "reading local folders")
	}
	localProjects, err := e.repos.Projects.GetAll(ownerID)
	if err != nil {
		return errors.Wrap(err, "reading local projects")
	}

	notes := conflict.ResolveAll(localNotes, remoteNotes)
	folders := conflict.ResolveAll(localFolders, remoteFolders)
	projects := conflict.ResolveAll(localProjects, remoteProjects)

	tasks, err := e.pullTasks(projects)
	if err != nil {
		return errors.Wrap(err, "pulling tasks")
	}

	// the merged state lands in one transaction so that a failure midway
	// cannot leave the store half remote, half local
	tx, err := e.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	if err := writeMerged(tx, e.repos, notes, folders, projects, tasks); err != nil {
		tx.Rollback()
		return err
	}

	if err := database.UpsertSystem(tx, consts.SystemLastPullAt, clock.Millis(e.clock)); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "recording pull time")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing the merge")
	}

	return nil
}

// pullTasks fetches and resolves the tasks of every merged project. The
// fetches run concurrently; a winner list per project keeps the merge
// scoped the same way the server scopes its task collections.
func (e *Engine) pullTasks(projects []entity.Project) ([]entity.Task, error) {
	remoteByProject := make([][]entity.Task, len(projects))

	var g errgroup.Group
	for i, p := range projects {
		i, p := i, p
		g.Go(func() error {
			tasks, err := e.api.ListTasks(p.ID)
			if err != nil {
				return err
			}
			remoteByProject[i] = tasks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "fetching remote tasks")
	}

	var merged []entity.Task
	for i, p := range projects {
		local, err := e.repos.Tasks.GetByProject(p.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "reading local tasks of project %s", p.ID)
		}

		merged = append(merged, conflict.ResolveAll(local, remoteByProject[i])...)
	}

	return merged, nil
}

func writeMerged(tx *database.DB, repos Repos, notes []entity.Note, folders []entity.Folder, projects []entity.Project, tasks []entity.Task) error {
	txRepos := repos.WithDB(tx)

	for _, n := range notes {
		if err := txRepos.Notes.Put(n); err != nil {
			return errors.Wrap(err, "writing merged notes")
		}
	}
	for _, f := range folders {
		if err := txRepos.Folders.Put(f); err != nil {
			return errors.Wrap(err, "writing merged folders")
		}
	}
	for _, p := range projects {
		if err := txRepos.Projects.Put(p); err != nil {
			return errors.Wrap(err, "writing merged projects")
		}
	}
	for _, t := range tasks {
		if err := txRepos.Tasks.Put(t); err != nil {
			return errors.Wrap(err, "writing merged tasks")
		}
	}

	return nil
}
