package port

import (
	"fmt"
	"os"
)

// fileScheme wraps os.File behind the Scheme/Conn contract, grounding the
// mechanism itself (spec's port I/O bytes are out of scope, but the
// dispatch mechanism is core) without pulling in any new dependency.
type fileScheme struct{}

func init() { RegisterScheme("file", fileScheme{}) }

type fileConn struct {
	f *os.File
}

func (fileScheme) Open(spec string) (Conn, error) {
	f, err := os.OpenFile(spec, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &fileConn{f: f}, nil
}

// Read ignores query/args (a file port has no query language) and returns
// the file's full contents as a single Row under "data".
func (c *fileConn) Read(query string, args ...interface{}) ([]Row, error) {
	buf, err := os.ReadFile(c.f.Name())
	if err != nil {
		return nil, err
	}
	return []Row{{"data": string(buf)}}, nil
}

// Write appends args[0] to the file when args are given, else query's
// bytes; args[0] must be a string or []byte payload, matching the
// teacher's ToString argument-coercion
// convention at the boundary between cell values and Go data.
func (c *fileConn) Write(query string, args ...interface{}) (int64, error) {
	var payload string
	if len(args) > 0 {
		switch v := args[0].(type) {
		case string:
			payload = v
		case []byte:
			payload = string(v)
		default:
			return 0, fmt.Errorf("file port: write requires a text/binary argument, got %T", v)
		}
	} else {
		payload = query
	}
	n, err := c.f.WriteString(payload)
	return int64(n), err
}

func (c *fileConn) Close() error { return c.f.Close() }
