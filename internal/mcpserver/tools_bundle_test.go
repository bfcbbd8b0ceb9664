package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasref/internal/testutil"
)

func bundleJSON(t *testing.T, input bundleInput) (bundleOutput, map[string]any) {
	t.Helper()
	input.Format = "json"
	result, output, err := handleBundle(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	require.Nil(t, result)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(output.Document), &doc))
	return output, doc
}

func TestBundleTool_File(t *testing.T) {
	specCache.reset()
	output, doc := bundleJSON(t, bundleInput{Spec: specInput{File: writeSpecFiles(t)}})

	assert.Equal(t, 1, output.ExternalCount)
	assert.Empty(t, output.Warnings)

	pet := doc["components"].(map[string]any)["schemas"].(map[string]any)["Pet"].(map[string]any)
	ref, _ := pet["$ref"].(string)
	assert.True(t, strings.HasPrefix(ref, "#/x-ext/"), "got %q", ref)
	assert.NotContains(t, doc, "x-ext-urls")
}

func TestBundleTool_DoesNotMutateCache(t *testing.T) {
	specCache.reset()
	input := bundleInput{Spec: specInput{File: writeSpecFiles(t)}}

	first, _ := bundleJSON(t, input)
	second, _ := bundleJSON(t, input)
	assert.Equal(t, first.Document, second.Document)

	loaded, err := input.Spec.load(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, loaded.Filesystem[0].Value, "x-ext")
}

func TestBundleTool_URLMap(t *testing.T) {
	specCache.reset()
	output, doc := bundleJSON(t, bundleInput{Spec: specInput{File: writeSpecFiles(t)}, URLMap: true})

	require.Equal(t, 1, output.ExternalCount)
	urls, ok := doc["x-ext-urls"].(map[string]any)
	require.True(t, ok)
	for _, id := range urls {
		assert.True(t, strings.HasSuffix(id.(string), "pet.yaml"))
	}
}

func TestBundleTool_TreeShake(t *testing.T) {
	specCache.reset()
	paths := testutil.WriteTempFiles(t, map[string]string{
		"openapi.yaml": "name:\n  $ref: ./pet.yaml#/properties/name\n",
		"pet.yaml":     testPetYAML + "  tag:\n    type: string\n",
	})

	_, doc := bundleJSON(t, bundleInput{Spec: specInput{File: paths["openapi.yaml"]}, TreeShake: true})

	ext := doc["x-ext"].(map[string]any)
	require.Len(t, ext, 1)
	for _, chunk := range ext {
		props := chunk.(map[string]any)["properties"].(map[string]any)
		assert.Contains(t, props, "name")
		assert.NotContains(t, props, "tag")
	}
}

func TestBundleTool_URL(t *testing.T) {
	allowPrivateIPs(t)
	specCache.reset()
	server := testutil.NewDocServer(t, map[string]string{
		"/openapi.yaml": "pet:\n  $ref: pet.yaml\n",
		"/pet.yaml":     testPetYAML,
	})

	output, _ := bundleJSON(t, bundleInput{Spec: specInput{URL: server.URL + "/openapi.yaml"}})
	assert.Equal(t, 1, output.ExternalCount)
}

func TestBundleTool_MissingExternal(t *testing.T) {
	specCache.reset()
	paths := testutil.WriteTempFiles(t, map[string]string{
		"openapi.yaml": "pet:\n  $ref: ./missing.yaml\n",
	})

	output, doc := bundleJSON(t, bundleInput{Spec: specInput{File: paths["openapi.yaml"]}})
	assert.Zero(t, output.ExternalCount)
	require.Len(t, output.Warnings, 1)
	assert.Contains(t, output.Warnings[0], "Failed to resolve external reference")
	assert.NotContains(t, output.Warnings[0], "/tmp")
	assert.Equal(t, "./missing.yaml", doc["pet"].(map[string]any)["$ref"])
}

func TestBundleTool_MissingURLWarningNamesIdentifier(t *testing.T) {
	allowPrivateIPs(t)
	specCache.reset()
	server := testutil.NewDocServer(t, map[string]string{
		"/specs/openapi.yaml": "pet:\n  $ref: ./missing.yaml\n",
	})

	output, _ := bundleJSON(t, bundleInput{Spec: specInput{URL: server.URL + "/specs/openapi.yaml"}})
	require.Len(t, output.Warnings, 1)
	assert.Contains(t, output.Warnings[0], `"./missing.yaml"`)
	assert.Contains(t, output.Warnings[0], "(identifier: "+server.URL+"/specs/missing.yaml)")
}

func TestWarningLog(t *testing.T) {
	warnings := newWarningLog()
	warnings.Warn("failed", "identifier", "https://example.com/a.yaml", "error", errors.New("404 Not Found"))
	warnings.Warn("plain")
	warnings.Info("ignored", "identifier", "x")

	assert.Equal(t, []string{
		"failed (identifier: https://example.com/a.yaml): 404 Not Found",
		"plain",
	}, warnings.collected())
}

func TestBundleTool_NegativeDepth(t *testing.T) {
	result, _, err := handleBundle(context.Background(), &mcp.CallToolRequest{}, bundleInput{
		Spec:     specInput{Content: `{"a": 1}`},
		MaxDepth: -1,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
