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
	"github.com/spf13/cobra"

	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/infra"
	"github.com/quillnotes/quill/pkg/cli/log"
)

var pushOnlyFlag bool

var example = `
 * Push queued changes and pull the server's state
 quill sync

 * Push queued changes only
 quill sync --push-only`

// NewCmd returns a new sync command
func NewCmd(ctx context.QuillCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Short:   "Sync with the server",
		Aliases: []string{"s"},
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&pushOnlyFlag, "push-only", false, "push queued changes without pulling")

	return cmd
}

func newRun(ctx context.QuillCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if ctx.SessionKey == "" {
			log.Error("not logged in\n")
			log.Plainf("run `quill login` first\n")
			return nil
		}

		svc := infra.NewService(&ctx)

		if !svc.Monitor.Online() {
			log.Warnf("the server is unreachable; try again later\n")
			return nil
		}

		log.Infof("pushing queued changes\n")
		if err := svc.Engine.Flush(); err != nil {
			return errors.Wrap(err, "pushing queued changes")
		}

		if !pushOnlyFlag {
			log.Infof("pulling from the server\n")
			svc.Engine.PullAll(ctx.OwnerID)
		}

		failed, err := svc.Queue.CountFailed()
		if err != nil {
			return errors.Wrap(err, "counting failed items")
		}
		if failed > 0 {
			log.Warnf("%d change(s) could not be delivered; run `quill status` to inspect\n", failed)
		}

		log.Success("done\n")
		return nil
	}
}
