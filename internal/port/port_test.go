package port

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSchemeRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")

	p, err := OpenPort("file://" + path)
	if err != nil {
		t.Fatalf("OpenPort: %v", err)
	}
	defer ClosePort(p)

	if _, err := p.Conn.Write("hello port"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rows, err := p.Conn.Read("")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 1 || rows[0]["data"] != "hello port" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestOpenPortRejectsUnknownScheme(t *testing.T) {
	if _, err := OpenPort("carrier-pigeon://nowhere"); err == nil {
		t.Fatalf("expected an error for an unregistered scheme")
	}
}

func TestOpenPortRejectsMissingSchemePrefix(t *testing.T) {
	if _, err := OpenPort("not-a-spec"); err == nil {
		t.Fatalf("expected an error for a spec without a scheme prefix")
	}
}

func TestLookupFindsOpenedPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookup.txt")
	p, err := OpenPort("file://" + path)
	if err != nil {
		t.Fatalf("OpenPort: %v", err)
	}
	defer ClosePort(p)

	got, ok := Lookup(p.ID)
	if !ok || got != p {
		t.Fatalf("Lookup(%q) = %v, %v; want %v, true", p.ID, got, ok, p)
	}

	if err := ClosePort(p); err != nil {
		t.Fatalf("ClosePort: %v", err)
	}
	if _, ok := Lookup(p.ID); ok {
		t.Fatalf("expected a closed port to be forgotten")
	}
	_ = os.Remove(path)
}
