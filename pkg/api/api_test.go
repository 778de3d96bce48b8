package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/weberc2/afs/pkg/filesystem"
	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
	pz "github.com/weberc2/httpeasy"
	pztest "github.com/weberc2/httpeasy/testsupport"
)

func testServer(t *testing.T) *httptest.Server {
	volume := io.NewBuffer(make([]byte, 256*64))
	fs, err := filesystem.Format(volume, 256, 64)
	if err != nil {
		t.Fatalf("filesystem.Format(): unexpected err: %v", err)
	}
	srv := httptest.NewServer(pz.Register(pztest.TestLog(t), New(fs).Routes()...))
	t.Cleanup(srv.Close)
	return srv
}

func do(
	t *testing.T,
	srv *httptest.Server,
	method string,
	route string,
	path string,
	body string,
) (int, []byte) {
	u := srv.URL + route
	if path != "" {
		u += "?" + url.Values{"path": {path}}.Encode()
	}
	req, err := http.NewRequest(method, u, strings.NewReader(body))
	if err != nil {
		t.Fatalf("http.NewRequest(): unexpected err: %v", err)
	}
	rsp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: unexpected err: %v", method, u, err)
	}
	defer rsp.Body.Close()
	data, err := ioutil.ReadAll(rsp.Body)
	if err != nil {
		t.Fatalf("%s %s: reading body: %v", method, u, err)
	}
	return rsp.StatusCode, data
}

func TestRoutes(t *testing.T) {
	srv := testServer(t)

	for _, step := range []struct {
		method string
		route  string
		path   string
		body   string
		status int
		data   string
	}{
		{"POST", "/api/dirs", "/a", "", http.StatusCreated, ""},
		{"POST", "/api/files", "/a/b.txt", "", http.StatusCreated, ""},
		{"PUT", "/api/files", "/a/b.txt", "hello ", http.StatusOK, ""},
		{"PUT", "/api/files", "/a/b.txt", "world", http.StatusOK, ""},
		{"GET", "/api/files", "/a/b.txt", "", http.StatusOK, "hello world"},
		{"POST", "/api/files", "/a/b.txt", "", http.StatusConflict, ""},
		{"GET", "/api/files", "/a", "", http.StatusBadRequest, ""},
		{"GET", "/api/files", "/missing", "", http.StatusNotFound, ""},
		{"POST", "/api/files", "/a/b.txt/c", "", http.StatusBadRequest, ""},
		{"DELETE", "/api/entries", "/", "", http.StatusBadRequest, ""},
		{"GET", "/api/files", "", "", http.StatusBadRequest, ""},
	} {
		status, data := do(t, srv, step.method, step.route, step.path, step.body)
		if status != step.status {
			t.Fatalf(
				"%s %s?path=%s: wanted status `%d`; found `%d` (body: %s)",
				step.method,
				step.route,
				step.path,
				step.status,
				status,
				data,
			)
		}
		if step.data != "" && string(data) != step.data {
			t.Fatalf(
				"%s %s?path=%s: wanted body `%s`; found `%s`",
				step.method,
				step.route,
				step.path,
				step.data,
				data,
			)
		}
	}

	status, data := do(t, srv, "GET", "/api/dirs", "/a", "")
	if status != http.StatusOK {
		t.Fatalf("GET /api/dirs: wanted `200`; found `%d` (%s)", status, data)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("unmarshaling entries: %v", err)
	}
	wanted := []Entry{
		{Name: ".", IsDirectory: true},
		{Name: "..", IsDirectory: true},
		{Name: "b.txt", Size: 11},
	}
	if !reflect.DeepEqual(wanted, entries) {
		t.Fatalf("GET /api/dirs: wanted `%v`; found `%v`", wanted, entries)
	}

	if status, data := do(t, srv, "DELETE", "/api/entries", "/a", ""); status != http.StatusOK {
		t.Fatalf("DELETE /api/entries: wanted `200`; found `%d` (%s)", status, data)
	}
	if status, _ := do(t, srv, "GET", "/api/files", "/a/b.txt", ""); status != http.StatusNotFound {
		t.Fatalf("GET /api/files: wanted `404`; found `%d`", status)
	}
}

func TestUsage(t *testing.T) {
	srv := testServer(t)
	do(t, srv, "POST", "/api/files", "/f", "")
	do(t, srv, "PUT", "/api/files", "/f", strings.Repeat("x", 600))

	status, data := do(t, srv, "GET", "/api/usage", "", "")
	if status != http.StatusOK {
		t.Fatalf("GET /api/usage: wanted `200`; found `%d` (%s)", status, data)
	}
	var usage Usage
	if err := json.Unmarshal(data, &usage); err != nil {
		t.Fatalf("unmarshaling usage: %v", err)
	}
	// root block plus three content blocks
	if wanted := usage.SystemBlocks + 4; usage.UsedBlocks != wanted {
		t.Fatalf("Usage.UsedBlocks: wanted `%d`; found `%d`", wanted, usage.UsedBlocks)
	}
	if usage.LiveInodes != 2 {
		t.Fatalf("Usage.LiveInodes: wanted `2`; found `%d`", usage.LiveInodes)
	}
}
