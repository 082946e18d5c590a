package web

import (
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/OpenKore/openkore-sub004/field"
	"github.com/OpenKore/openkore-sub004/formats"
	"github.com/OpenKore/openkore-sub004/status"
)

// session is one opened field. Field access is serialised through lock.
type session struct {
	lock    sync.Mutex
	file    string
	f       field.Field
	unwatch func()
}

type Server struct {
	dir      string
	registry *formats.Registry
	hub      *status.Hub

	lock     sync.Mutex
	sessions map[uuid.UUID]*session
}

func NewServer(dir string, registry *formats.Registry, hub *status.Hub) *Server {
	return &Server{
		dir:      dir,
		registry: registry,
		hub:      hub,
		sessions: make(map[uuid.UUID]*session),
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/fields", s.HandlerFields).Methods(http.MethodGet)
	r.HandleFunc("/json/open/{file}", s.HandlerOpen).Methods(http.MethodPost)
	r.HandleFunc("/json/field/{id}", s.HandlerField).Methods(http.MethodGet)
	r.HandleFunc("/action/field/{id}/block", s.HandlerSetBlock).Methods(http.MethodPost)
	r.HandleFunc("/action/field/{id}/resize", s.HandlerResize).Methods(http.MethodPost)
	r.HandleFunc("/action/field/{id}/save", s.HandlerSave).Methods(http.MethodPost)
	r.HandleFunc("/action/field/{id}/download", s.HandlerDownload).Methods(http.MethodGet)
	r.HandleFunc("/action/field/{id}/close", s.HandlerClose).Methods(http.MethodPost)
	r.Handle("/ws/status", s.hub)
	return r
}

func StartServer(addr string, s *Server) error {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router())
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v, serving %q", addr, s.dir)

	return http.ListenAndServe(addr, h)
}

func (s *Server) open(file string, f field.Field) uuid.UUID {
	id := uuid.New()
	sess := &session{file: file, f: f, unwatch: s.hub.Watch(id.String(), f)}
	s.lock.Lock()
	s.sessions[id] = sess
	s.lock.Unlock()
	return id
}

func (s *Server) get(id string) (*session, bool) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	sess, ok := s.sessions[uid]
	return sess, ok
}

func (s *Server) close(id string) bool {
	uid, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	sess, ok := s.sessions[uid]
	if !ok {
		return false
	}
	delete(s.sessions, uid)
	sess.unwatch()
	return true
}
