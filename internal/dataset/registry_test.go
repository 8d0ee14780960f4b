package dataset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryCoversEveryDataset(t *testing.T) {
	reg := DefaultRegistry()

	for _, ds := range All() {
		loc, ok := reg.Lookup(ds)
		require.True(t, ok, "missing location for %s", ds)
		assert.NotEmpty(t, loc.Repository)
		assert.NotEmpty(t, loc.Path)
		assert.Len(t, loc.FallbackRevision, 40)
	}
	assert.Equal(t, All(), reg.Datasets())
}

func TestLocationURLs(t *testing.T) {
	loc, ok := DefaultRegistry().Lookup(Userstyles)
	require.True(t, ok)

	assert.Equal(t,
		"https://raw.githubusercontent.com/catppuccin/userstyles/main/scripts/userstyles.yml",
		loc.URL(DefaultBaseURL, false))
	assert.Equal(t,
		"https://raw.githubusercontent.com/catppuccin/userstyles/4ee2fffe0492ec2be6d744f770a1cdaa98226d44/scripts/userstyles.yml",
		loc.URL(DefaultBaseURL, true))
	assert.Equal(t,
		"http://mirror.local/catppuccin/userstyles/main/scripts/userstyles.schema.json",
		loc.SchemaURL("http://mirror.local/", false))
	assert.Equal(t,
		"https://raw.githubusercontent.com/catppuccin/userstyles/main/scripts/userstyles.yml",
		loc.URL("", false), "empty base falls back to the default host")
}

func TestSchemaURLEmptyWithoutSchemaPath(t *testing.T) {
	loc := Location{Repository: "a/b", Path: "x.json", FallbackRevision: "abc"}
	assert.Empty(t, loc.SchemaURL(DefaultBaseURL, false))
}

func TestNewRegistryCopiesInput(t *testing.T) {
	src := map[Dataset]Location{Ports: {Repository: "a/b", Path: "p.json"}}
	reg := NewRegistry(src)
	delete(src, Ports)

	_, ok := reg.Lookup(Ports)
	assert.True(t, ok)
	_, ok = reg.Lookup(Categories)
	assert.False(t, ok)
}

func TestParseAndText(t *testing.T) {
	ds, err := Parse("  UserStyles ")
	require.NoError(t, err)
	assert.Equal(t, Userstyles, ds)

	_, err = Parse("themes")
	require.Error(t, err)

	data, err := json.Marshal(map[string]Dataset{"d": Categories})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"categories"}`, string(data))

	var decoded Dataset
	require.NoError(t, decoded.UnmarshalText([]byte("ports")))
	assert.Equal(t, Ports, decoded)

	assert.Equal(t, "dataset(9)", Dataset(9).String())
}
