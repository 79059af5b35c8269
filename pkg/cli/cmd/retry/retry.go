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

package retry

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/infra"
	"github.com/quillnotes/quill/pkg/cli/log"
	"github.com/quillnotes/quill/pkg/cli/ui"
)

var clearFlag bool

var example = `
 * Clear the changes that ran out of delivery attempts
 quill retry --clear`

// NewCmd returns a new retry command
func NewCmd(ctx context.QuillCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "retry",
		Short:   "Manage failed changes",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&clearFlag, "clear", false, "discard all failed changes")

	return cmd
}

func newRun(ctx context.QuillCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewService(&ctx)

		if !clearFlag {
			failed, err := svc.Queue.CountFailed()
			if err != nil {
				return errors.Wrap(err, "counting failed items")
			}

			log.Plainf("%d failed change(s)\n", failed)
			if failed > 0 {
				log.Plainf("run `quill retry --clear` to discard them\n")
			}
			return nil
		}

		ok, err := ui.Confirm("discard all failed changes?", false)
		if err != nil {
			return errors.Wrap(err, "getting confirmation")
		}
		if !ok {
			return nil
		}

		n, err := svc.Queue.ClearFailed()
		if err != nil {
			return errors.Wrap(err, "clearing failed items")
		}

		log.Successf("discarded %d change(s)\n", n)
		return nil
	}
}
