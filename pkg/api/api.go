// Package api exposes an open image over HTTP. Requests are serialized with
// a mutex since the file system itself does no locking.
package api

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"sync"

	"github.com/weberc2/afs/pkg/filesystem"
	. "github.com/weberc2/afs/pkg/types"
	pz "github.com/weberc2/httpeasy"
)

const maxBodySize = 16 * 1024 * 1024

type API struct {
	FileSystem *filesystem.FileSystem
	mutex      sync.Mutex
}

func New(fs *filesystem.FileSystem) *API {
	return &API{FileSystem: fs}
}

func (api *API) Routes() []pz.Route {
	return []pz.Route{{
		Method:  "GET",
		Path:    "/api/usage",
		Handler: api.Usage,
	}, {
		Method:  "GET",
		Path:    "/api/stat",
		Handler: api.Stat,
	}, {
		Method:  "GET",
		Path:    "/api/dirs",
		Handler: api.ListDir,
	}, {
		Method:  "POST",
		Path:    "/api/dirs",
		Handler: api.MakeDir,
	}, {
		Method:  "GET",
		Path:    "/api/files",
		Handler: api.GetContent,
	}, {
		Method:  "POST",
		Path:    "/api/files",
		Handler: api.CreateFile,
	}, {
		Method:  "PUT",
		Path:    "/api/files",
		Handler: api.AppendContent,
	}, {
		Method:  "DELETE",
		Path:    "/api/entries",
		Handler: api.Delete,
	}}
}

type logging struct {
	Message   string
	Path      string `json:",omitempty"`
	Error     string `json:",omitempty"`
	ErrorType string `json:",omitempty"`
}

func (api *API) Usage(r pz.Request) pz.Response {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	usage, err := api.FileSystem.Usage()
	if err != nil {
		return handleError("computing usage", "", err)
	}
	return pz.Ok(pz.JSON(&usage))
}

func (api *API) Stat(r pz.Request) pz.Response {
	path, rsp, ok := requirePath(r)
	if !ok {
		return rsp
	}
	api.mutex.Lock()
	defer api.mutex.Unlock()
	stat, err := api.FileSystem.Stat(path)
	if err != nil {
		return handleError("stat", path, err)
	}
	return pz.Ok(pz.JSON(&stat))
}

func (api *API) ListDir(r pz.Request) pz.Response {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}
	api.mutex.Lock()
	defer api.mutex.Unlock()
	entries, err := api.FileSystem.ListDir(path)
	if err != nil {
		return handleError("listing directory", path, err)
	}
	return pz.Ok(pz.JSON(entries))
}

func (api *API) MakeDir(r pz.Request) pz.Response {
	return api.create(r, true)
}

func (api *API) CreateFile(r pz.Request) pz.Response {
	return api.create(r, false)
}

func (api *API) create(r pz.Request, isDirectory bool) pz.Response {
	path, rsp, ok := requirePath(r)
	if !ok {
		return rsp
	}
	api.mutex.Lock()
	defer api.mutex.Unlock()
	if err := api.FileSystem.CreateFile(path, isDirectory); err != nil {
		return handleError("creating", path, err)
	}
	return pz.Created(pz.Stringf("created `%s`", path), &logging{
		Message: "created",
		Path:    path,
	})
}

func (api *API) GetContent(r pz.Request) pz.Response {
	path, rsp, ok := requirePath(r)
	if !ok {
		return rsp
	}
	api.mutex.Lock()
	defer api.mutex.Unlock()
	data, err := api.FileSystem.GetContent(path)
	if err != nil {
		return handleError("reading file", path, err)
	}
	return pz.Ok(pz.String(string(data)))
}

func (api *API) AppendContent(r pz.Request) pz.Response {
	path, rsp, ok := requirePath(r)
	if !ok {
		return rsp
	}
	data, err := ioutil.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return pz.BadRequest(nil, &logging{
			Message: "reading request body",
			Path:    path,
			Error:   err.Error(),
		})
	}
	api.mutex.Lock()
	defer api.mutex.Unlock()
	if err := api.FileSystem.AppendContent(path, data); err != nil {
		return handleError("appending to file", path, err)
	}
	return pz.Ok(pz.Stringf("appended `%d` bytes to `%s`", len(data), path))
}

func (api *API) Delete(r pz.Request) pz.Response {
	path, rsp, ok := requirePath(r)
	if !ok {
		return rsp
	}
	api.mutex.Lock()
	defer api.mutex.Unlock()
	if err := api.FileSystem.DeleteFile(path); err != nil {
		return handleError("deleting", path, err)
	}
	return pz.Ok(pz.Stringf("deleted `%s`", path), &logging{
		Message: "deleted",
		Path:    path,
	})
}

func requirePath(r pz.Request) (string, pz.Response, bool) {
	path := r.URL.Query().Get("path")
	if path == "" {
		return "", pz.BadRequest(
			pz.String("missing `path` query parameter"),
			&logging{Message: "missing `path` query parameter"},
		), false
	}
	return path, pz.Response{}, true
}

// handleError maps error kinds onto HTTP statuses. Unknown errors (I/O
// failures, corrupt images) are reported as 500s.
func handleError(activity, path string, err error) pz.Response {
	l := &logging{
		Message:   activity,
		Path:      path,
		Error:     err.Error(),
		ErrorType: fmt.Sprintf("%T", err),
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, NotFoundErr):
		status = http.StatusNotFound
	case errors.Is(err, NotADirectoryErr), errors.Is(err, InvalidOperationErr):
		status = http.StatusBadRequest
	case errors.Is(err, AlreadyExistsErr):
		status = http.StatusConflict
	case errors.Is(err, ResourceExhaustedErr):
		status = http.StatusInsufficientStorage
	}
	if status == http.StatusInternalServerError {
		return pz.InternalServerError(l)
	}
	return pz.Response{
		Status: status,
		Data:   pz.JSON(&pz.HTTPError{Status: status, Message: err.Error()}),
	}.WithLogging(l)
}
