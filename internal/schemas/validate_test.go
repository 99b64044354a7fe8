package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shipped "github.com/jonathan/formation-finder/schemas"
)

func TestValidateDocument_Catalog(t *testing.T) {
	valid := `{"version":"2025-09","formations":[
		{"title":"BTSA ACSE","organization":"Lycée agricole","city":"Chartres","latitude":48.4,"longitude":1.5,"level":5},
		{"title":"CAPa","organization":"MFR","city":"Nyons","latitude":null,"longitude":null,"level":null,"rncp":null}
	]}`
	assert.NoError(t, ValidateDocument(shipped.Catalog, []byte(valid)))
}

func TestValidateDocument_CatalogMissingArray(t *testing.T) {
	// The loader must not guess which field holds the rows.
	err := ValidateDocument(shipped.Catalog, []byte(`{"version":"1","items":[]}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, err.Error(), "formations")
}

func TestValidateDocument_CatalogWrongType(t *testing.T) {
	err := ValidateDocument(shipped.Catalog, []byte(`{"version":"1","formations":[{"title":"X","organization":"Y","city":"Z","latitude":"48.1"}]}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateDocument_Candidates(t *testing.T) {
	assert.NoError(t, ValidateDocument(shipped.Candidates, []byte(`{"candidates":[{"title":"BTS"}]}`)))
	assert.NoError(t, ValidateDocument(shipped.Candidates, []byte(`{"candidates":[]}`)))
	assert.Error(t, ValidateDocument(shipped.Candidates, []byte(`[{"title":"BTS"}]`)))
}

func TestValidateDocument_NotJSON(t *testing.T) {
	err := ValidateDocument(shipped.Candidates, []byte(`Voici les formations : ...`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateDocument_UnknownSchema(t *testing.T) {
	err := ValidateDocument("nope.schema.json", []byte(`{}`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "not shipped")
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1","formations":[]}`), 0o644))

	assert.NoError(t, ValidateFile(shipped.Catalog, path))
	assert.Error(t, ValidateFile(shipped.Catalog, filepath.Join(dir, "missing.json")))
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name":"ok"}`))

	err := ValidateJSONString(schema, `{"other":1}`)
	require.Error(t, err)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}
