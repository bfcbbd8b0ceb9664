package mcpserver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasref/internal/testutil"
	"github.com/erraggy/oasref/oaserrors"
)

const testPetYAML = `type: object
properties:
  name:
    type: string
`

// writeSpecFiles writes an entrypoint referencing pet.yaml and returns its path.
func writeSpecFiles(t *testing.T) string {
	t.Helper()
	paths := testutil.WriteTempFiles(t, map[string]string{
		"openapi.yaml": `openapi: 3.1.0
info:
  title: Pets
  version: "1.0"
components:
  schemas:
    Pet:
      $ref: ./pet.yaml
    Pets:
      type: array
      items:
        $ref: "#/components/schemas/Pet"
`,
		"pet.yaml": testPetYAML,
	})
	return paths["openapi.yaml"]
}

// allowPrivateIPs lets tests fetch from httptest servers on loopback.
func allowPrivateIPs(t *testing.T) {
	t.Helper()
	prev := cfg.AllowPrivateIPs
	cfg.AllowPrivateIPs = true
	t.Cleanup(func() { cfg.AllowPrivateIPs = prev })
}

func TestSpecInput_LoadFile(t *testing.T) {
	specCache.reset()
	input := specInput{File: writeSpecFiles(t)}
	result, err := input.load(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Filesystem, 2)
	assert.True(t, result.Filesystem[0].IsEntrypoint)
}

func TestSpecInput_LoadContent(t *testing.T) {
	specCache.reset()
	input := specInput{Content: `{"openapi": "3.1.0", "info": {"title": "Inline"}}`}
	result, err := input.load(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Filesystem, 1)
	assert.Empty(t, result.Filesystem[0].URI)
}

func TestSpecInput_ContentIsNeverAPath(t *testing.T) {
	specCache.reset()
	path := writeSpecFiles(t)
	_, err := specInput{Content: path}.load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrNoContent)
}

func TestSpecInput_LoadURL(t *testing.T) {
	allowPrivateIPs(t)
	specCache.reset()
	server := testutil.NewDocServer(t, map[string]string{
		"/openapi.yaml": "components:\n  schemas:\n    Pet:\n      $ref: pet.yaml\n",
		"/pet.yaml":     testPetYAML,
	})

	result, err := specInput{URL: server.URL + "/openapi.yaml"}.load(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Filesystem, 2)
	assert.Equal(t, 1, server.Hits("/pet.yaml"))
}

func TestSpecInput_URLBlockedByDefault(t *testing.T) {
	specCache.reset()
	prev := cfg.AllowPrivateIPs
	cfg.AllowPrivateIPs = false
	t.Cleanup(func() { cfg.AllowPrivateIPs = prev })
	server := testutil.NewDocServer(t, map[string]string{"/openapi.yaml": "openapi: 3.1.0\n"})

	_, err := specInput{URL: server.URL + "/openapi.yaml"}.load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, server.TotalHits())
}

func TestSpecInput_LoadNoneProvided(t *testing.T) {
	_, err := specInput{}.load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
	assert.Contains(t, err.Error(), "exactly one of file, url, or content must be provided")
}

func TestSpecInput_LoadMultipleProvided(t *testing.T) {
	_, err := specInput{File: "foo.yaml", Content: "bar"}.load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of file, url, or content must be provided")
}

func TestSpecInput_LoadFileNotFound(t *testing.T) {
	specCache.reset()
	_, err := specInput{File: filepath.Join(t.TempDir(), "missing.yaml")}.load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrReferenceNotFound)
}

func TestSpecInput_InlineSizeLimit(t *testing.T) {
	prev := cfg.MaxInlineSize
	cfg.MaxInlineSize = 8
	t.Cleanup(func() { cfg.MaxInlineSize = prev })

	_, err := specInput{Content: `{"openapi": "3.1.0"}`}.load(context.Background())
	require.Error(t, err)
	var limitErr *oaserrors.ResourceLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, "inline_size", limitErr.ResourceType)
	assert.Equal(t, int64(8), limitErr.Limit)
}

func TestSpecCache_HitOnSameFile(t *testing.T) {
	specCache.reset()
	input := specInput{File: writeSpecFiles(t)}

	result1, err := input.load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, specCache.size())

	result2, err := input.load(context.Background())
	require.NoError(t, err)
	assert.Same(t, result1, result2, "expected same pointer from cache hit")
}

func TestSpecCache_MissOnModifiedFile(t *testing.T) {
	specCache.reset()

	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("info:\n  title: Test V1\n"), 0o600))

	input := specInput{File: path}
	result1, err := input.load(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("info:\n  title: Test V2\n"), 0o600))
	// Ensure mtime differs from the first write on coarse-grained filesystems.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	result2, err := input.load(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, result1, result2)
	info := result2.Filesystem[0].Value.(map[string]any)["info"].(map[string]any)
	assert.Equal(t, "Test V2", info["title"])
}

func TestSpecCache_ContentHash(t *testing.T) {
	specCache.reset()
	input := specInput{Content: "openapi: 3.1.0\ninfo:\n  title: Hash Test\n"}

	result1, err := input.load(context.Background())
	require.NoError(t, err)
	result2, err := input.load(context.Background())
	require.NoError(t, err)
	assert.Same(t, result1, result2)
}

func TestSpecCache_Disabled(t *testing.T) {
	specCache.reset()
	prev := cfg.CacheEnabled
	cfg.CacheEnabled = false
	t.Cleanup(func() { cfg.CacheEnabled = prev })

	_, err := specInput{Content: "openapi: 3.1.0\n"}.load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, specCache.size())
}

func TestSpecCache_LRUEviction(t *testing.T) {
	specCache.reset()

	// Insert 11 documents into a cache of size 10.
	var firstKey string
	for i := range 11 {
		content := "info:\n  title: \"Spec " + string(rune('A'+i)) + "\"\n"
		if i == 0 {
			firstKey = makeCacheKey(specInput{Content: content})
		}
		_, err := specInput{Content: content}.load(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 10, specCache.size())
	assert.Nil(t, specCache.get(firstKey), "expected oldest entry to be evicted")
}

func TestSpecCache_Sweep(t *testing.T) {
	specCache.reset()
	specCache.putWithTTL("content:old", nil, time.Nanosecond)
	time.Sleep(time.Millisecond)
	specCache.sweep()
	assert.Equal(t, 0, specCache.size())
}
