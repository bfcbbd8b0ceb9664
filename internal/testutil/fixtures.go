// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"go.yaml.in/yaml/v4"
)

// NewPetstoreDocument returns a small OAS 3.x document with internal
// references, including a recursive schema.
func NewPetstoreDocument() map[string]any {
	return map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":   "Petstore",
			"version": "1.0.0",
		},
		"paths": map[string]any{
			"/pets": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{
						"200": map[string]any{
							"description": "A list of pets",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{
										"type":  "array",
										"items": map[string]any{"$ref": "#/components/schemas/Pet"},
									},
								},
							},
						},
					},
				},
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"Pet": map[string]any{
					"type":     "object",
					"required": []any{"name"},
					"properties": map[string]any{
						"name":   map[string]any{"type": "string"},
						"parent": map[string]any{"$ref": "#/components/schemas/Pet"},
					},
				},
			},
		},
	}
}

// WriteTempYAML marshals a document to YAML and writes it to name inside a
// temporary directory. Returns the path to the file.
func WriteTempYAML(t *testing.T, name string, doc any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document to YAML: %v", err)
	}
	return WriteTempFiles(t, map[string]string{name: string(data)})[name]
}

// WriteTempJSON marshals a document to JSON and writes it to name inside a
// temporary directory. Returns the path to the file.
func WriteTempJSON(t *testing.T, name string, doc any) string {
	t.Helper()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal document to JSON: %v", err)
	}
	return WriteTempFiles(t, map[string]string{name: string(data)})[name]
}

// WriteTempFiles writes files (relative name → content) into one temporary
// directory and returns the absolute path of each.
func WriteTempFiles(t *testing.T, files map[string]string) map[string]string {
	t.Helper()

	dir := t.TempDir()
	paths := make(map[string]string, len(files))
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		paths[name] = path
	}
	return paths
}

// NewMemFS returns an in-memory filesystem holding files (path → content).
func NewMemFS(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()

	fs := memfs.New()
	for path, content := range files {
		if err := util.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s to memfs: %v", path, err)
		}
	}
	return fs
}

// DocServer serves documents over HTTP and counts requests per path.
type DocServer struct {
	*httptest.Server

	mu    sync.Mutex
	files map[string]string
	hits  map[string]int
}

// NewDocServer starts a server for files (URL path → content). It is closed
// when the test completes.
func NewDocServer(t *testing.T, files map[string]string) *DocServer {
	t.Helper()

	s := &DocServer{files: files, hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Hits returns the number of requests made for path.
func (s *DocServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits returns the number of requests made for any path.
func (s *DocServer) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

func (s *DocServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	content, ok := s.files[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(content))
}
