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

package login

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quillnotes/quill/pkg/cli/client"
	"github.com/quillnotes/quill/pkg/cli/consts"
	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/database"
	"github.com/quillnotes/quill/pkg/cli/infra"
	"github.com/quillnotes/quill/pkg/cli/log"
	"github.com/quillnotes/quill/pkg/cli/ui"
)

// NewCmd returns a new login command
func NewCmd(ctx context.QuillCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login to the server",
		RunE:  newRun(ctx),
	}
}

func newRun(ctx context.QuillCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		var email, password string

		if err := ui.PromptInput("email", &email); err != nil {
			return errors.Wrap(err, "getting email input")
		}
		if email == "" {
			return errors.New("Email is empty")
		}

		if err := ui.PromptPassword("password", &password); err != nil {
			return errors.Wrap(err, "getting password input")
		}
		if password == "" {
			return errors.New("Password is empty")
		}

		resp, err := client.Signin(ctx, email, password)
		if err == client.ErrInvalidLogin {
			log.Error("wrong login\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "signing in")
		}

		db := ctx.DB
		tx, err := db.Begin()
		if err != nil {
			return errors.Wrap(err, "beginning a transaction")
		}

		if err := database.UpsertSystem(tx, consts.SystemSessionKey, resp.Key); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "saving session key")
		}
		if err := database.UpsertSystem(tx, consts.SystemSessionKeyExpiry, resp.ExpiresAt); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "saving session key expiry")
		}
		if err := database.UpsertSystem(tx, consts.SystemOwnerID, resp.OwnerID); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "saving owner id")
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, "committing a transaction")
		}

		log.Success("logged in\n")
		log.Plainf("run `quill sync` to pull your data\n")

		return nil
	}
}
