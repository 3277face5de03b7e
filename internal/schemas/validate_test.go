package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchema(t *testing.T) string {
	t.Helper()
	schema := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["org_id"],
		"properties": {
			"org_id": {"type": "string"},
			"level": {"type": "integer", "minimum": 1, "maximum": 5}
		}
	}`
	path := filepath.Join(t.TempDir(), "test.schema.json")
	require.NoError(t, os.WriteFile(path, []byte(schema), 0644))
	return path
}

func TestValidateDocument_Valid(t *testing.T) {
	path := writeSchema(t)
	doc := []byte(`{"org_id": "abc", "level": 3}`)
	require.NoError(t, ValidateDocument(path, doc))
}

func TestValidateDocument_MissingRequiredField(t *testing.T) {
	path := writeSchema(t)
	doc := []byte(`{"level": 3}`)

	err := ValidateDocument(path, doc)
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	require.NotEmpty(t, verr.Errors)
	assert.Contains(t, err.Error(), "org_id")
}

func TestValidateDocument_OutOfRangeValue(t *testing.T) {
	path := writeSchema(t)
	doc := []byte(`{"org_id": "abc", "level": 9}`)

	err := ValidateDocument(path, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level")
}

func TestValidateDocument_MissingSchemaFile(t *testing.T) {
	err := ValidateDocument(filepath.Join(t.TempDir(), "missing.schema.json"), []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load schema")
}

func TestResolveSchemaPath_NotFound(t *testing.T) {
	assert.Empty(t, ResolveSchemaPath("schemas/does_not_exist.schema.json"))
}

func TestResolveSchemaPath_FindsRepoSchemas(t *testing.T) {
	// The repo schemas sit two levels above this package.
	path := ResolveSchemaPath("schemas/rate_context.schema.json")
	require.NotEmpty(t, path)
	assert.True(t, filepath.IsAbs(path))
}
