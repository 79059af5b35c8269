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

package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quillnotes/quill/pkg/assert"
	"github.com/quillnotes/quill/pkg/cli/context"
	"github.com/quillnotes/quill/pkg/cli/entity"
)

func newTestCtx(endpoint string) context.QuillCtx {
	return context.QuillCtx{
		APIEndpoint: endpoint,
		SessionKey:  "session-key",
		Version:     "test",
	}
}

func TestListNotes(t *testing.T) {
	var gotPath, gotAuth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]entity.Note{
			{ID: "n1", OwnerID: "o1", Title: "hello", UpdatedAt: 100},
		})
	}))
	defer ts.Close()

	c := NewHTTP(newTestCtx(ts.URL))

	notes, err := c.ListNotes()
	assert.NoError(t, err, "listing notes")

	assert.Equal(t, gotPath, "/v1/notes", "path mismatch")
	assert.Equal(t, gotAuth, "Bearer session-key", "authorization header mismatch")
	assert.Equal(t, len(notes), 1, "note count mismatch")
	assert.Equal(t, notes[0].ID, "n1", "note id mismatch")
}

func TestCreateNote(t *testing.T) {
	var gotMethod, gotPath, gotBody string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)

		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewHTTP(newTestCtx(ts.URL))

	err := c.CreateNote("n1", json.RawMessage(`{"title":"hello"}`))
	assert.NoError(t, err, "creating note")

	assert.Equal(t, gotMethod, "PUT", "method mismatch")
	assert.Equal(t, gotPath, "/v1/notes/n1", "path mismatch")
	assert.Equal(t, gotBody, `{"title":"hello"}`, "body mismatch")
}

func TestTaskPathsScopedByProject(t *testing.T) {
	var gotPath string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewHTTP(newTestCtx(ts.URL))

	err := c.DeleteTask("p1", "t1")
	assert.NoError(t, err, "deleting task")
	assert.Equal(t, gotPath, "/v1/projects/p1/tasks/t1", "path mismatch")
}

func TestServerErrorBecomesHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "note not found", http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewHTTP(newTestCtx(ts.URL))

	err := c.UpdateNote("n1", json.RawMessage(`{}`))
	assert.Error(t, err, "expected an error")

	httpErr, ok := err.(*HTTPError)
	assert.True(t, ok, "error should be an HTTPError")
	assert.Equal(t, httpErr.StatusCode, http.StatusNotFound, "status code mismatch")
	assert.Equal(t, httpErr.Message, "note not found", "message mismatch")
	assert.True(t, httpErr.IsClientError(), "404 should be a client error")
}

func TestNoSessionKeyStillReachesServer(t *testing.T) {
	var gotPath, gotAuth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	ctx := newTestCtx(ts.URL)
	ctx.SessionKey = ""
	c := NewHTTP(ctx)

	// a signed-out client still calls out; the server answers 401 and the
	// caller sees it as a client error rather than a local failure
	err := c.CreateNote("n1", json.RawMessage(`{"title":"hello"}`))
	assert.Error(t, err, "expected an error")
	assert.Equal(t, gotPath, "/v1/notes/n1", "request should reach the server")
	assert.Equal(t, gotAuth, "", "no authorization header should be sent")

	httpErr, ok := err.(*HTTPError)
	assert.True(t, ok, "error should be an HTTPError")
	assert.Equal(t, httpErr.StatusCode, http.StatusUnauthorized, "status code mismatch")
	assert.True(t, httpErr.IsClientError(), "401 should be a client error")
}

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

type stubTransport struct {
	body *trackedBody
}

func (t *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusInternalServerError,
		Status:     "500 Internal Server Error",
		Header:     http.Header{},
		Body:       t.body,
		Request:    req,
	}, nil
}

func TestErrorResponseBodyClosed(t *testing.T) {
	body := &trackedBody{Reader: strings.NewReader("boom")}

	ctx := newTestCtx("http://example.com")
	ctx.HTTPClient = &http.Client{Transport: &stubTransport{body: body}}
	c := NewHTTP(ctx)

	err := c.UpdateNote("n1", json.RawMessage(`{}`))
	assert.Error(t, err, "expected an error")
	assert.True(t, body.closed, "error response body should be closed")
}

func TestSigninInvalidLogin(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := Signin(newTestCtx(ts.URL), "user@example.com", "bad-password")
	assert.Equal(t, err, ErrInvalidLogin, "error mismatch")
}
