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

package status

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quillnotes/quill/pkg/cli/consts"
	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/database"
	"github.com/quillnotes/quill/pkg/cli/infra"
	"github.com/quillnotes/quill/pkg/cli/log"
)

// NewCmd returns a new status command
func NewCmd(ctx context.QuillCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the sync status",
		RunE:  newRun(ctx),
	}
}

func newRun(ctx context.QuillCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewService(&ctx)

		if ctx.SessionKey == "" {
			log.Plainf("logged in: no\n")
		} else {
			log.Plainf("logged in: yes\n")
		}

		if svc.Monitor.Online() {
			log.Plainf("server: reachable\n")
		} else {
			log.Plainf("server: unreachable\n")
		}

		pending, err := svc.Queue.CountPending()
		if err != nil {
			return errors.Wrap(err, "counting pending items")
		}
		failed, err := svc.Queue.CountFailed()
		if err != nil {
			return errors.Wrap(err, "counting failed items")
		}

		log.Plainf("pending changes: %d\n", pending)
		log.Plainf("failed changes: %d\n", failed)

		var lastPullAt int64
		err = database.GetSystem(ctx.DB, consts.SystemLastPullAt, &lastPullAt)
		if err == sql.ErrNoRows {
			log.Plainf("last pull: never\n")
		} else if err != nil {
			return errors.Wrap(err, "reading last pull time")
		} else {
			log.Plainf("last pull: %s\n", time.UnixMilli(lastPullAt).Local().Format(time.RFC1123))
		}

		if failed > 0 {
			items, err := svc.Queue.GetFailed()
			if err != nil {
				return errors.Wrap(err, "listing failed items")
			}

			log.Plainf("\n")
			for _, item := range items {
				log.Plainf("failed: %s %s %s (%d attempts)\n", item.Operation, item.Kind, item.EntityID, item.RetryCount)
			}
			log.Plainf("run `quill retry --clear` to discard failed changes\n")
		}

		return nil
	}
}
