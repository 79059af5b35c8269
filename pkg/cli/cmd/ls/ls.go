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

package ls

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/entity"
	"github.com/quillnotes/quill/pkg/cli/infra"
	"github.com/quillnotes/quill/pkg/cli/log"
)

var folderFlag string

var example = `
 * List all notes
 quill ls

 * List the notes in a folder
 quill ls -f <folder-id>`

// NewCmd returns a new ls command
func NewCmd(ctx context.QuillCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Short:   "List notes",
		Aliases: []string{"l", "list"},
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&folderFlag, "folder", "f", "", "The id of the folder to list")

	return cmd
}

func newRun(ctx context.QuillCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewService(&ctx)

		folders, err := svc.Repos.Folders.GetAll(ctx.OwnerID)
		if err != nil {
			return errors.Wrap(err, "listing folders")
		}

		folderNames := map[string]string{}
		for _, folder := range folders {
			folderNames[folder.ID] = folder.Name
		}

		notes, err := getNotes(ctx, svc)
		if err != nil {
			return err
		}

		if len(notes) == 0 {
			log.Plainf("no notes\n")
			return nil
		}

		for _, note := range notes {
			location := ""
			if note.FolderID != nil {
				location = folderNames[*note.FolderID] + "/"
			}

			log.Plainf("%s  %s%s\n", note.ID, location, note.Title)
		}

		return nil
	}
}

func getNotes(ctx context.QuillCtx, svc *infra.Service) ([]entity.Note, error) {
	if folderFlag != "" {
		notes, err := svc.Repos.Notes.GetByFolder(ctx.OwnerID, &folderFlag)
		if err != nil {
			return nil, errors.Wrap(err, "listing notes in folder")
		}
		return notes, nil
	}

	notes, err := svc.Repos.Notes.GetAll(ctx.OwnerID)
	if err != nil {
		return nil, errors.Wrap(err, "listing notes")
	}
	return notes, nil
}
