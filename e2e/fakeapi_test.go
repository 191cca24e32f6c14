package e2e_test

// An in-memory tournament API used by the e2e specs: it hands out
// sequential ids, enforces the two credential scopes, remembers which
// resources exist, records every delete in arrival order, and answers the
// realtime endpoint with a WebSocket echo.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	fakeAuthToken   = "e2e-user-token"
	fakeAdminSecret = "e2e-admin-secret"
)

type fakeServer struct {
	srv *httptest.Server

	mu        sync.Mutex
	nextID    int64
	existing  map[string]bool  // "kind/id"
	deletes   []string         // delete paths in arrival order
	creates   []string
	lookupIDs map[string]int64 // stable registration lookup per path

	// lastRegistration is the most recently created registration id, the
	// one an unbound lookup resolves to.
	lastRegistration int64

	failTournamentCreate bool
	registerStatus       int

	upgrader websocket.Upgrader
}

func newFakeServer() *fakeServer {
	f := &fakeServer{
		nextID:         100,
		existing:       make(map[string]bool),
		lookupIDs:      make(map[string]int64),
		registerStatus: http.StatusCreated,
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.route))
	return f
}

func (f *fakeServer) Close()       { f.srv.Close() }
func (f *fakeServer) URL() string  { return f.srv.URL }
func (f *fakeServer) WSURL() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/users/connect"
}

func (f *fakeServer) deletePaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func (f *fakeServer) live() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k, ok := range f.existing {
		if ok {
			out = append(out, k)
		}
	}
	return out
}

func (f *fakeServer) route(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/users/connect" {
		f.serveWS(w, r)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if strings.HasPrefix(r.URL.Path, "/admin/") {
		if r.Header.Get("X-Admin-Secret") != fakeAdminSecret {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "bad admin secret"})
			return
		}
	} else {
		if c, err := r.Cookie("auth_token"); err != nil || c.Value != fakeAuthToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "bad token"})
			return
		}
	}

	switch {
	case r.Method == http.MethodDelete:
		f.handleDelete(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/admin/users":
		f.create(w, "user")
	case r.Method == http.MethodPost && r.URL.Path == "/admin/tournaments":
		if f.failTournamentCreate {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "boom"})
			return
		}
		f.create(w, "tournament")
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/admin/tournaments/"):
		writeJSON(w, http.StatusOK, map[string]any{"tournament": map[string]any{"status": "REGISTRATION_OPEN"}})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/register"):
		if f.registerStatus != http.StatusCreated {
			writeJSON(w, f.registerStatus, map[string]any{"message": "already registered"})
			return
		}
		// A successful register creates a real registration; the admin
		// lookup resolves to it and teardown must delete it.
		f.lastRegistration = f.id("registration")
		writeJSON(w, http.StatusCreated, map[string]any{"message": "registered"})
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/my-registration-status"):
		writeJSON(w, http.StatusOK, map[string]any{"registered": true})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/admin/registrations/user/"):
		// Reads are stable: the same (user, tournament) pair always
		// resolves to the same registration id. An unbound pair binds
		// to the most recently created registration, or to a
		// pre-existing one when nothing was created yet (the 409 path).
		id, ok := f.lookupIDs[r.URL.Path]
		if !ok {
			id = f.lastRegistration
			if id == 0 {
				id = f.id("registration")
			}
			f.lookupIDs[r.URL.Path] = id
		}
		writeJSON(w, http.StatusOK, map[string]any{"registration_id": id})
	case r.Method == http.MethodPost && r.URL.Path == "/admin/registrations":
		f.lastRegistration = f.id("registration")
		writeJSON(w, http.StatusCreated, map[string]any{"registration": map[string]any{"id": f.lastRegistration}})
	case r.Method == http.MethodPost && r.URL.Path == "/admin/participants":
		f.create(w, "participant")
	case r.Method == http.MethodPost && r.URL.Path == "/admin/matches":
		f.create(w, "match")
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/registrations"):
		writeJSON(w, http.StatusOK, map[string]any{"registrations": []any{}})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/confirm-participants"):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "participants already active"})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/start-vote"):
		id := f.id("vote-event")
		writeJSON(w, http.StatusOK, map[string]any{"event": map[string]any{"id": id}})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no route"})
	}
}

// id allocates an id and marks the resource live; callers hold f.mu.
func (f *fakeServer) id(kind string) int64 {
	f.nextID++
	f.existing[fmt.Sprintf("%s/%d", kind, f.nextID)] = true
	f.creates = append(f.creates, fmt.Sprintf("%s/%d", kind, f.nextID))
	return f.nextID
}

func (f *fakeServer) create(w http.ResponseWriter, kind string) {
	id := f.id(kind)
	writeJSON(w, http.StatusCreated, map[string]any{kind: map[string]any{"id": id}})
}

func (f *fakeServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	f.deletes = append(f.deletes, r.URL.Path)

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/admin/"), "/")
	if len(parts) != 2 {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no route"})
		return
	}
	kind := strings.TrimSuffix(parts[0], "s")
	if parts[0] == "matches" {
		kind = "match"
	}
	if parts[0] == "vote-events" {
		kind = "vote-event"
	}
	key := kind + "/" + parts[1]
	if !f.existing[key] {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "gone"})
		return
	}
	f.existing[key] = false
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (f *fakeServer) serveWS(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie("auth_token"); err != nil || c.Value != fakeAuthToken {
		http.Error(w, "bad token", http.StatusUnauthorized)
		return
	}
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := conn.WriteMessage(mt, msg); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
