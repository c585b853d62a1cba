package parser

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
)

// logTree creates the named files under a temp dir and returns the dir.
func logTree(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("2025-10-26 14:00:00 INFO up\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestExpandGlobs(t *testing.T) {
	dir := logTree(t,
		"app.log",
		"b.log",
		"notes.txt",
		"svc/api.log",
		"svc/deep/worker.log",
		"archive.log/keep.txt",
	)
	p := func(rel string) string { return filepath.Join(dir, rel) }

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"plain path", []string{p("app.log")}, []string{p("app.log")}},
		{"star skips directories", []string{p("*.log")}, []string{p("app.log"), p("b.log")}},
		{"recursive", []string{p("**/*.log")}, []string{p("app.log"), p("b.log"), p("svc/api.log"), p("svc/deep/worker.log")}},
		{"argument order kept", []string{p("b.log"), p("app.log")}, []string{p("b.log"), p("app.log")}},
		{"duplicates dropped", []string{p("app.log"), p("*.log")}, []string{p("app.log"), p("b.log")}},
		{"no match kept literally", []string{p("*.gz")}, []string{p("*.gz")}},
		{"missing file kept literally", []string{p("gone.log")}, []string{p("gone.log")}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandGlobs(tt.args)
			if err != nil {
				t.Fatalf("ExpandGlobs() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandGlobs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandGlobs_InvalidPattern(t *testing.T) {
	_, err := ExpandGlobs([]string{"logs/[unclosed"})
	if !errors.Is(err, doublestar.ErrBadPattern) {
		t.Errorf("ExpandGlobs() error = %v, want ErrBadPattern", err)
	}
}
