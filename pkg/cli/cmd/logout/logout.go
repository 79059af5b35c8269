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

package logout

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quillnotes/quill/pkg/cli/client"
	"github.com/quillnotes/quill/pkg/cli/consts"
	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/database"
	"github.com/quillnotes/quill/pkg/cli/infra"
	"github.com/quillnotes/quill/pkg/cli/log"
)

// NewCmd returns a new logout command
func NewCmd(ctx context.QuillCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the server",
		RunE:  newRun(ctx),
	}
}

func newRun(ctx context.QuillCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if ctx.SessionKey == "" {
			log.Error("not logged in\n")
			return nil
		}

		// the local session goes away regardless; the server-side session
		// is best effort because the connection may be down
		if err := client.Signout(ctx); err != nil {
			log.Warnf("could not remove the server-side session: %s\n", err)
		}

		db := ctx.DB
		tx, err := db.Begin()
		if err != nil {
			return errors.Wrap(err, "beginning a transaction")
		}

		if err := database.DeleteSystem(tx, consts.SystemSessionKey); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "removing session key")
		}
		if err := database.DeleteSystem(tx, consts.SystemSessionKeyExpiry); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "removing session key expiry")
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, "committing a transaction")
		}

		log.Success("logged out\n")
		return nil
	}
}
