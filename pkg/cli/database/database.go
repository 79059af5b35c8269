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

// Package database provides access to the local SQLite database
package database

import (
	"database/sql"

	// sqlite driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB is a handle to the local database. It wraps either a connection or an
// open transaction so that callers can run the same queries inside or
// outside a transaction.
type DB struct {
	conn *sql.DB
	tx   *sql.Tx
}

// Open opens a connection to the database at the given path
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	// The database is accessed by one logical task at a time. A single
	// connection keeps transactions from deadlocking against the pool.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		return nil, errors.Wrap(err, "pinging database")
	}

	return &DB{conn: conn}, nil
}

// Begin starts a transaction and returns a handle bound to it
func (d *DB) Begin() (*DB, error) {
	if d.tx != nil {
		return nil, errors.New("already inside a transaction")
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "beginning a transaction")
	}

	return &DB{conn: d.conn, tx: tx}, nil
}

// Commit commits the transaction that the handle is bound to
func (d *DB) Commit() error {
	if d.tx == nil {
		return errors.New("not inside a transaction")
	}

	return d.tx.Commit()
}

// Rollback aborts the transaction that the handle is bound to
func (d *DB) Rollback() error {
	if d.tx == nil {
		return errors.New("not inside a transaction")
	}

	return d.tx.Rollback()
}

// Close closes the underlying connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Exec executes a query without returning any rows
func (d *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	if d.tx != nil {
		return d.tx.Exec(query, args...)
	}

	return d.conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (d *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	if d.tx != nil {
		return d.tx.Query(query, args...)
	}

	return d.conn.Query(query, args...)
}

// QueryRow executes a query that is expected to return at most one row
func (d *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	if d.tx != nil {
		return d.tx.QueryRow(query, args...)
	}

	return d.conn.QueryRow(query, args...)
}
