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

// Package consts provides definitions of constants
package consts

var (
	// QuillDirName is the name of the directory containing quill files
	QuillDirName = "quill"
	// QuillDBFileName is a filename for the Quill SQLite database
	QuillDBFileName = "quill.db"
	// ConfigFilename is the name of the config file
	ConfigFilename = "quillrc"

	// SystemSchema is the key for the schema version in the system table
	SystemSchema = "schema"
	// SystemSessionKey is the session key
	SystemSessionKey = "session_token"
	// SystemSessionKeyExpiry is the timestamp at which the session key will expire
	SystemSessionKeyExpiry = "session_token_expiry"
	// SystemOwnerID is the id of the account that owns the local data
	SystemOwnerID = "owner_id"
	// SystemLastPullAt is the timestamp of the most recent successful pull
	SystemLastPullAt = "last_pull_at"
)
