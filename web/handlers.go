package web

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/OpenKore/openkore-sub004/field"
	"github.com/OpenKore/openkore-sub004/formats"
	"github.com/OpenKore/openkore-sub004/webutils"
)

type openResult struct {
	Id      string `json:"id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Warning string `json:"warning,omitempty"`
}

type fieldResult struct {
	File   string `json:"file"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Blocks []int  `json:"blocks"`
}

func errorCode(err error) int {
	switch {
	case os.IsNotExist(errors.Cause(err)):
		return http.StatusNotFound
	case errors.Is(err, field.ErrPreconditionViolation):
		return http.StatusBadRequest
	case errors.Is(err, field.ErrSaveNotSupported):
		return http.StatusConflict
	case errors.Is(err, field.ErrInvalidSignature), errors.Is(err, field.ErrTruncatedData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, field.ErrEnvironmentUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// localName rejects anything that is not a plain file name inside the
// served directory.
func localName(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", errors.Errorf("Invalid file name %q", name)
	}
	return name, nil
}

func (s *Server) HandlerFields(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		webutils.WriteError(w, http.StatusInternalServerError, errors.Wrapf(err, "Failed to list %q", s.dir))
		return
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && s.registry.Handles(filepath.Join(s.dir, e.Name())) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	webutils.WriteJson(w, files)
}

func (s *Server) HandlerOpen(w http.ResponseWriter, r *http.Request) {
	name, err := localName(mux.Vars(r)["file"])
	if err != nil {
		webutils.WriteError(w, http.StatusBadRequest, err)
		return
	}

	f, warning, err := s.registry.Load(filepath.Join(s.dir, name))
	if err != nil {
		s.hub.Error("Failed to open %s: %v", name, err)
		webutils.WriteError(w, errorCode(err), err)
		return
	}
	if f == nil {
		webutils.WriteError(w, http.StatusUnsupportedMediaType, errors.Errorf("No codec for %q", name))
		return
	}

	id := s.open(name, f)
	if warning != "" {
		s.hub.Info("%s: %s", name, warning)
	}
	webutils.WriteJson(w, &openResult{
		Id:      id.String(),
		Width:   f.Width(),
		Height:  f.Height(),
		Warning: warning,
	})
}

// withSession runs fn with the session locked.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(sess *session) error) {
	sess, ok := s.get(mux.Vars(r)["id"])
	if !ok {
		webutils.WriteError(w, http.StatusNotFound, errors.Errorf("Unknown field %q", mux.Vars(r)["id"]))
		return
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()
	if err := fn(sess); err != nil {
		webutils.WriteError(w, errorCode(err), err)
	}
}

func (s *Server) HandlerField(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) error {
		res := &fieldResult{
			File:   sess.file,
			Width:  sess.f.Width(),
			Height: sess.f.Height(),
			Blocks: make([]int, 0, sess.f.Width()*sess.f.Height()),
		}
		for _, p := range field.RegionOf(sess.f).Points() {
			b, err := sess.f.Block(p.X, p.Y)
			if err != nil {
				return err
			}
			res.Blocks = append(res.Blocks, int(b.Code()))
		}
		webutils.WriteJson(w, res)
		return nil
	})
}

func (s *Server) HandlerSetBlock(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) error {
		x, err := webutils.FormInt(r, "x")
		if err != nil {
			return errors.Wrap(field.ErrPreconditionViolation, err.Error())
		}
		y, err := webutils.FormInt(r, "y")
		if err != nil {
			return errors.Wrap(field.ErrPreconditionViolation, err.Error())
		}
		typ, err := webutils.FormInt(r, "type")
		if err != nil || typ < 0 || typ > int(field.Unknown) {
			return errors.Wrapf(field.ErrPreconditionViolation, "Invalid block type %q", r.FormValue("type"))
		}
		if err := sess.f.SetBlock(x, y, field.BlockType(typ)); err != nil {
			return err
		}
		webutils.WriteJson(w, "ok")
		return nil
	})
}

func (s *Server) HandlerResize(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) error {
		width, err := webutils.FormInt(r, "width")
		if err != nil {
			return errors.Wrap(field.ErrPreconditionViolation, err.Error())
		}
		height, err := webutils.FormInt(r, "height")
		if err != nil {
			return errors.Wrap(field.ErrPreconditionViolation, err.Error())
		}
		if err := sess.f.Resize(width, height); err != nil {
			return err
		}
		webutils.WriteJson(w, "ok")
		return nil
	})
}

func (s *Server) HandlerSave(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) error {
		name := r.FormValue("name")
		if name == "" {
			name = sess.file
		}
		name, err := localName(name)
		if err != nil {
			return errors.Wrap(field.ErrPreconditionViolation, err.Error())
		}
		if err := formats.SaveAs(sess.f, filepath.Join(s.dir, name)); err != nil {
			s.hub.Error("Failed to save %s: %v", name, err)
			return err
		}
		s.hub.Info("Saved %s", name)
		webutils.WriteJson(w, name)
		return nil
	})
}

// HandlerDownload streams the field in its own encoding under its file name.
func (s *Server) HandlerDownload(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) error {
		var buf bytes.Buffer
		if err := sess.f.Save(&buf); err != nil {
			return err
		}
		webutils.WriteFile(w, &buf, filepath.Base(sess.file))
		return nil
	})
}

func (s *Server) HandlerClose(w http.ResponseWriter, r *http.Request) {
	if !s.close(mux.Vars(r)["id"]) {
		webutils.WriteError(w, http.StatusNotFound, errors.Errorf("Unknown field %q", mux.Vars(r)["id"]))
		return
	}
	webutils.WriteJson(w, "ok")
}
