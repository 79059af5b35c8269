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

package add

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/infra"
	"github.com/quillnotes/quill/pkg/cli/log"
	"github.com/quillnotes/quill/pkg/cli/repository"
)

var contentFlag string
var folderFlag string

var example = `
 * Add a note with content
 quill add "team sync" -c "agreed to ship on friday"

 * Add a note into a folder
 quill add "retro" -c "slow builds" -f <folder-id>`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new add command
func NewCmd(ctx context.QuillCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <title>",
		Short:   "Add a new note",
		Aliases: []string{"a", "n", "new"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&contentFlag, "content", "c", "", "The content for the note")
	f.StringVarP(&folderFlag, "folder", "f", "", "The id of the folder to add the note to")

	return cmd
}

func newRun(ctx context.QuillCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		title := args[0]
		if title == "" {
			return errors.New("Empty title")
		}

		svc := infra.NewService(&ctx)
		svc.Engine.Start()
		defer svc.Engine.Stop()

		input := repository.NoteCreateInput{
			Title:   title,
			Content: contentFlag,
		}
		if folderFlag != "" {
			input.FolderID = &folderFlag
		}

		note, err := svc.Workspace.CreateNote(ctx.OwnerID, input)
		if err != nil {
			return errors.Wrap(err, "creating note")
		}

		log.Successf("added %s\n", note.ID)

		if !svc.Monitor.Online() {
			log.Infof("offline; the note will sync when the connection is back\n")
		}

		return nil
	}
}
