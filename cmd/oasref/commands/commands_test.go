package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasref/internal/cliutil"
	"github.com/erraggy/oasref/internal/testutil"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeSpec(t *testing.T) map[string]string {
	t.Helper()
	return testutil.WriteTempFiles(t, map[string]string{
		"openapi.yaml": `openapi: 3.1.0
info:
  title: Pets
  version: "1.0"
components:
  schemas:
    Pet:
      $ref: ./pet.yaml
    Name:
      $ref: ./pet.yaml#/properties/name
`,
		"pet.yaml": `type: object
properties:
  name:
    type: string
  tag:
    type: string
`,
	})
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"load", "resolve", "bundle", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestUnknownCommandSuggestion(t *testing.T) {
	_, _, err := execute(t, "", "bundel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bundle")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "oasref dev")
	assert.Contains(t, out, "Go Version:")
}

func TestLoad(t *testing.T) {
	paths := writeSpec(t)

	t.Run("text", func(t *testing.T) {
		out, errOut, err := execute(t, "", "load", paths["openapi.yaml"])
		require.NoError(t, err)
		assert.Contains(t, out, paths["openapi.yaml"]+" (entrypoint)")
		assert.Contains(t, out, "  -> ./pet.yaml")
		assert.Contains(t, out, paths["pet.yaml"])
		assert.Contains(t, errOut, "Loaded 2 document(s)")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "", "load", "-f", "json", paths["openapi.yaml"])
		require.NoError(t, err)
		var docs []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &docs))
		require.Len(t, docs, 2)
		assert.Equal(t, true, docs[0]["entrypoint"])
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "", "load", filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Can’t resolve external reference")
	})

	t.Run("requires one argument", func(t *testing.T) {
		_, _, err := execute(t, "", "load")
		require.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	paths := writeSpec(t)

	t.Run("yaml to stdout", func(t *testing.T) {
		out, _, err := execute(t, "", "resolve", paths["openapi.yaml"])
		require.NoError(t, err)
		assert.NotContains(t, out, "$ref")
		assert.Contains(t, out, "tag:")
	})

	t.Run("json to file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "resolved.json")
		out, errOut, err := execute(t, "", "resolve", "-f", "json", "-o", target, paths["openapi.yaml"])
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Contains(t, errOut, "Wrote "+target)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal(data, &doc))
		name := doc["components"].(map[string]any)["schemas"].(map[string]any)["Name"]
		assert.Equal(t, map[string]any{"type": "string"}, name)
	})

	t.Run("stdin", func(t *testing.T) {
		out, _, err := execute(t, `{"a": {"$ref": "#/b"}, "b": {"c": 1}}`, "resolve", "-f", "json", "-")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a": {"c": 1}, "b": {"c": 1}}`, out)
	})

	t.Run("reference errors", func(t *testing.T) {
		out, errOut, err := execute(t, `{"a": {"$ref": "#/missing"}}`, "resolve", "-")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 reference error(s)")
		assert.Contains(t, errOut, "Can't resolve reference: #/missing")
		assert.Contains(t, out, "$ref", "the dangling reference is still written")
	})

	t.Run("strict", func(t *testing.T) {
		out, _, err := execute(t, `{"a": {"$ref": "#/missing"}}`, "resolve", "--strict", "-")
		require.Error(t, err)
		assert.Empty(t, out)
	})

	t.Run("circular", func(t *testing.T) {
		_, _, err := execute(t, `{"a": {"next": {"$ref": "#/a"}}}`, "resolve", "-")
		require.Error(t, err)
		assert.ErrorIs(t, err, cliutil.ErrCyclic)
	})

	t.Run("schema validation", func(t *testing.T) {
		schema := testutil.WriteTempFiles(t, map[string]string{
			"schema.json": `{"type": "object", "required": ["info"]}`,
		})["schema.json"]

		_, errOut, err := execute(t, `{"openapi": "3.1.0"}`, "resolve", "--schema", schema, "-")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed validation")
		assert.Contains(t, errOut, "Validation Errors:")
	})

	t.Run("invalid format", func(t *testing.T) {
		_, _, err := execute(t, `{"a": 1}`, "resolve", "-f", "xml", "-")
		require.Error(t, err)
	})
}

func TestBundle(t *testing.T) {
	paths := writeSpec(t)

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "", "bundle", "-f", "json", paths["openapi.yaml"])
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))

		ext := doc["x-ext"].(map[string]any)
		require.Len(t, ext, 1)
		schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
		ref := schemas["Name"].(map[string]any)["$ref"].(string)
		assert.True(t, strings.HasPrefix(ref, "#/x-ext/"))
		assert.True(t, strings.HasSuffix(ref, "/properties/name"))
	})

	t.Run("tree shake and url map", func(t *testing.T) {
		input := `{"name": {"$ref": "` + paths["pet.yaml"] + `#/properties/name"}}`
		out, _, err := execute(t, input, "bundle", "-f", "json", "--tree-shake", "--url-map", "-")
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))

		for key, chunk := range doc["x-ext"].(map[string]any) {
			props := chunk.(map[string]any)["properties"].(map[string]any)
			assert.Contains(t, props, "name")
			assert.NotContains(t, props, "tag")
			assert.Equal(t, paths["pet.yaml"], doc["x-ext-urls"].(map[string]any)[key])
		}
	})

	t.Run("externals key", func(t *testing.T) {
		out, _, err := execute(t, "", "bundle", "-f", "json", "--externals-key", "x-bundled", paths["openapi.yaml"])
		require.NoError(t, err)
		assert.Contains(t, out, `"x-bundled"`)
		assert.NotContains(t, out, `"x-ext"`)
	})

	t.Run("missing external warns", func(t *testing.T) {
		out, errOut, err := execute(t, `{"a": {"$ref": "./does-not-exist.yaml"}}`, "bundle", "-f", "json", "-")
		require.NoError(t, err)
		assert.Contains(t, errOut, "Failed to resolve external reference")
		assert.Contains(t, out, "./does-not-exist.yaml")
	})
}

func TestFlagDefaults(t *testing.T) {
	cmd := NewBundleCmd()
	depth, err := cmd.Flags().GetInt("depth")
	require.NoError(t, err)
	assert.Equal(t, -1, depth)

	format, err := cmd.Flags().GetString("format")
	require.NoError(t, err)
	assert.Equal(t, "yaml", format)

	limit, err := cmd.Flags().GetInt("fetch-limit")
	require.NoError(t, err)
	assert.Equal(t, 20, limit)
}
