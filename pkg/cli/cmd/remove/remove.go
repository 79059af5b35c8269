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

package remove

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/infra"
	"github.com/quillnotes/quill/pkg/cli/log"
	"github.com/quillnotes/quill/pkg/cli/ui"
)

var folderFlag bool
var projectFlag bool

var example = `
 * Remove a note
 quill rm <note-id>

 * Remove a folder and everything in it
 quill rm --folder <folder-id>`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}
	if folderFlag && projectFlag {
		return errors.New("--folder and --project are mutually exclusive")
	}

	return nil
}

// NewCmd returns a new remove command
func NewCmd(ctx context.QuillCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <id>",
		Short:   "Remove a note, folder or project",
		Aliases: []string{"rm", "d", "delete"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&folderFlag, "folder", false, "remove a folder, its notes and its subfolders")
	f.BoolVar(&projectFlag, "project", false, "remove a project and its tasks")

	return cmd
}

func newRun(ctx context.QuillCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		id := args[0]

		svc := infra.NewService(&ctx)
		svc.Engine.Start()
		defer svc.Engine.Stop()

		if folderFlag {
			ok, err := ui.Confirm("remove the folder and everything in it?", false)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				return nil
			}

			if err := svc.Workspace.DeleteFolder(ctx.OwnerID, id); err != nil {
				return errors.Wrap(err, "removing folder")
			}

			log.Successf("removed folder %s\n", id)
			return nil
		}

		if projectFlag {
			ok, err := ui.Confirm("remove the project and its tasks?", false)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				return nil
			}

			if err := svc.Workspace.DeleteProject(id); err != nil {
				return errors.Wrap(err, "removing project")
			}

			log.Successf("removed project %s\n", id)
			return nil
		}

		if err := svc.Workspace.DeleteNote(id); err != nil {
			return errors.Wrap(err, "removing note")
		}

		log.Successf("removed note %s\n", id)
		return nil
	}
}
