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

// Package infra provides operations and definitions for the
// local infrastructure for Quill
package infra

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quillnotes/quill/pkg/cli/client"
	"github.com/quillnotes/quill/pkg/cli/config"
	"github.com/quillnotes/quill/pkg/cli/consts"
	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/database"
	"github.com/quillnotes/quill/pkg/cli/log"
	"github.com/quillnotes/quill/pkg/cli/utils"
	"github.com/quillnotes/quill/pkg/clock"
	"github.com/quillnotes/quill/pkg/dirs"
)

const (
	// DefaultAPIEndpoint is the default API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:3001/api"
)

// RunEFunc is a function type of quill commands
type RunEFunc func(*cobra.Command, []string) error

func getDBPath(paths context.Paths, customPath string) string {
	if customPath != "" {
		return customPath
	}

	return fmt.Sprintf("%s/%s/%s", paths.Data, consts.QuillDirName, consts.QuillDBFileName)
}

// newBaseCtx creates a minimal context with paths and database connection.
// This base context is used for file and database initialization before
// being enriched with config values by setupCtx.
func newBaseCtx(versionTag, customDBPath string) (context.QuillCtx, error) {
	paths := context.Paths{
		Home:   dirs.Home,
		Config: dirs.ConfigHome,
		Data:   dirs.DataHome,
	}

	if err := initDirs(paths); err != nil {
		return context.QuillCtx{}, errors.Wrap(err, "initializing directories")
	}

	dbPath := getDBPath(paths, customDBPath)

	db, err := database.Open(dbPath)
	if err != nil {
		return context.QuillCtx{}, errors.Wrap(err, "connecting to db")
	}

	ctx := context.QuillCtx{
		Paths:   paths,
		Version: versionTag,
		DB:      db,
	}

	return ctx, nil
}

// Init initializes the Quill environment and returns a new quill context.
// apiEndpoint is used when creating a new config file.
func Init(versionTag, apiEndpoint, dbPath string) (*context.QuillCtx, error) {
	ctx, err := newBaseCtx(versionTag, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "initializing a context")
	}

	if err := initConfigFile(ctx, apiEndpoint); err != nil {
		return nil, errors.Wrap(err, "initializing config file")
	}

	if err := database.InitSchema(ctx.DB); err != nil {
		return nil, errors.Wrap(err, "initializing database")
	}

	ctx, err = setupCtx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "setting up the context")
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

func initDirs(paths context.Paths) error {
	configDir := fmt.Sprintf("%s/%s", paths.Config, consts.QuillDirName)
	dataDir := fmt.Sprintf("%s/%s", paths.Data, consts.QuillDirName)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", configDir)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", dataDir)
	}

	return nil
}

// initConfigFile creates a config file if one does not exist
func initConfigFile(ctx context.QuillCtx, apiEndpoint string) error {
	path := config.GetPath(ctx)

	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking config file")
	}
	if ok {
		return nil
	}

	if apiEndpoint == "" {
		apiEndpoint = DefaultAPIEndpoint
	}

	cf := config.Config{
		APIEndpoint:    apiEndpoint,
		Editor:         getEditor(),
		EnableAutoSync: true,
	}

	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing default config")
	}

	return nil
}

func getEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}

	return "vi"
}

// setupCtx enriches the base context with values from the config file and
// the database. This is called after files and database have been
// initialized.
func setupCtx(ctx context.QuillCtx) (context.QuillCtx, error) {
	db := ctx.DB

	var sessionKey, ownerID string
	var sessionKeyExpiry int64

	err := database.GetSystem(db, consts.SystemSessionKey, &sessionKey)
	if err != nil && err != sql.ErrNoRows {
		return ctx, errors.Wrap(err, "finding session key")
	}
	err = database.GetSystem(db, consts.SystemSessionKeyExpiry, &sessionKeyExpiry)
	if err != nil && err != sql.ErrNoRows {
		return ctx, errors.Wrap(err, "finding session key expiry")
	}
	err = database.GetSystem(db, consts.SystemOwnerID, &ownerID)
	if err != nil && err != sql.ErrNoRows {
		return ctx, errors.Wrap(err, "finding owner id")
	}

	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}

	ret := context.QuillCtx{
		Paths:            ctx.Paths,
		Version:          ctx.Version,
		DB:               ctx.DB,
		SessionKey:       sessionKey,
		SessionKeyExpiry: sessionKeyExpiry,
		OwnerID:          ownerID,
		APIEndpoint:      cf.APIEndpoint,
		Editor:           cf.Editor,
		Clock:            clock.New(),
		EnableAutoSync:   cf.EnableAutoSync,
		HTTPClient:       client.NewRateLimitedHTTPClient(),
	}

	return ret, nil
}
