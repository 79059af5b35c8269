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

package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/quillnotes/quill/pkg/cli/infra"
	"github.com/quillnotes/quill/pkg/cli/log"

	// commands
	"github.com/quillnotes/quill/pkg/cli/cmd/add"
	"github.com/quillnotes/quill/pkg/cli/cmd/login"
	"github.com/quillnotes/quill/pkg/cli/cmd/logout"
	"github.com/quillnotes/quill/pkg/cli/cmd/ls"
	"github.com/quillnotes/quill/pkg/cli/cmd/remove"
	"github.com/quillnotes/quill/pkg/cli/cmd/retry"
	"github.com/quillnotes/quill/pkg/cli/cmd/root"
	"github.com/quillnotes/quill/pkg/cli/cmd/status"
	syncCmd "github.com/quillnotes/quill/pkg/cli/cmd/sync"
	"github.com/quillnotes/quill/pkg/cli/cmd/version"
)

// apiEndpoint and versionTag are populated during link time
var apiEndpoint string
var versionTag = "master"

// parseDBPath extracts --dbPath flag value from command line arguments
// regardless of where it appears (before or after subcommand).
// Returns empty string if not found.
func parseDBPath(args []string) string {
	for i, arg := range args {
		if strings.HasPrefix(arg, "--dbPath=") {
			return strings.TrimPrefix(arg, "--dbPath=")
		}
		if arg == "--dbPath" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func main() {
	// overrides for local development, ignored when absent
	godotenv.Load()

	// --dbPath can appear after the subcommand, so it is parsed by hand
	// before the database opens
	dbPath := parseDBPath(os.Args[1:])

	ctx, err := infra.Init(versionTag, apiEndpoint, dbPath)
	if err != nil {
		panic(errors.Wrap(err, "initializing context"))
	}
	defer ctx.DB.Close()

	root.Register(add.NewCmd(*ctx))
	root.Register(ls.NewCmd(*ctx))
	root.Register(remove.NewCmd(*ctx))
	root.Register(syncCmd.NewCmd(*ctx))
	root.Register(retry.NewCmd(*ctx))
	root.Register(status.NewCmd(*ctx))
	root.Register(login.NewCmd(*ctx))
	root.Register(logout.NewCmd(*ctx))
	root.Register(version.NewCmd(*ctx))

	if err := root.Execute(); err != nil {
		log.Error(err.Error() + "\n")
		os.Exit(1)
	}
}
