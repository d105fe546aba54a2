// Package port implements the PORT datatype's scheme-dispatch mechanism
// (spec §3 names `port` as a first-class cell kind; the scheme registry
// itself is a supplemented feature — see SPEC_FULL.md's PORT supplement).
// A Scheme is a pluggable driver keyed by URL-ish scheme name ("file",
// "websocket", "sqlite", ...); OpenPort dispatches to whichever Scheme is
// registered for a spec string's scheme prefix, the same way the teacher's
// database.DBManager dispatched sql_connect's dbType argument to a
// database/sql driver name.
package port

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Row is one result row of a Read on a cursor-shaped scheme (database
// schemes; file and websocket schemes return a single Row per Read with a
// "data" key instead of dispatching actual SQL).
type Row map[string]interface{}

// Scheme is the driver contract every port scheme implements (spec's
// generic "external collaborator" mechanism, SPEC_FULL PORT supplement).
type Scheme interface {
	// Open establishes whatever connection/handle spec (the full port
	// spec string, e.g. "sqlite://./data.db") names, returning an opaque
	// per-connection state the scheme's own Read/Write/Close methods
	// know how to interpret.
	Open(spec string) (Conn, error)
}

// Conn is one open port's live handle.
type Conn interface {
	Read(query string, args ...interface{}) ([]Row, error)
	Write(query string, args ...interface{}) (int64, error)
	Close() error
}

// Port is a cell-kind-port payload: a handle into the registry plus the
// live Conn it was opened against.
type Port struct {
	ID     string
	Scheme string
	Spec   string
	Conn   Conn
}

var (
	mu        sync.RWMutex
	schemes   = map[string]Scheme{}
	openPorts = map[string]*Port{}
)

// RegisterScheme installs scheme under name, overwriting any earlier
// registration — package init functions in file.go/websocket.go/sql.go
// call this for the six schemes SPEC_FULL.md names.
func RegisterScheme(name string, scheme Scheme) {
	mu.Lock()
	defer mu.Unlock()
	schemes[name] = scheme
}

// OpenPort dispatches spec's scheme prefix ("scheme://rest") to the
// registered Scheme, returning a live Port handle registered under a
// fresh uuid (spec §3 "frames hold an identity id" — ports get the same
// treatment, so a port value surviving a GC pass still names a stable
// connection rather than a raw, movable pointer).
func OpenPort(spec string) (*Port, error) {
	name, rest, ok := strings.Cut(spec, "://")
	if !ok {
		return nil, fmt.Errorf("port: %q has no scheme prefix", spec)
	}
	mu.RLock()
	scheme, ok := schemes[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("port: no scheme registered for %q", name)
	}
	conn, err := scheme.Open(rest)
	if err != nil {
		return nil, fmt.Errorf("port: opening %q: %w", spec, err)
	}
	p := &Port{ID: uuid.NewString(), Scheme: name, Spec: spec, Conn: conn}
	mu.Lock()
	openPorts[p.ID] = p
	mu.Unlock()
	return p, nil
}

// ClosePort closes p's underlying Conn and forgets its registry entry.
func ClosePort(p *Port) error {
	mu.Lock()
	delete(openPorts, p.ID)
	mu.Unlock()
	return p.Conn.Close()
}

// Lookup retrieves a previously opened port by id, for the embedding API's
// handle-based access (spec §6 `handle`).
func Lookup(id string) (*Port, bool) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := openPorts[id]
	return p, ok
}
