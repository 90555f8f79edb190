package source_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formwork "github.com/formwork-go/formwork"
	"github.com/formwork-go/formwork/fields"
	"github.com/formwork-go/formwork/source"
)

var settings = formwork.New().
	Field("host", fields.String()).
	Field("port", fields.Int().Range(1, 65535)).Default(int64(8080)).
	Field("debug", fields.Bool()).Default(false).
	MustBuild()

func TestJSON(t *testing.T) {
	cur, err := source.JSON([]byte(`{"host": "api.local", "port": 9000}`))
	require.NoError(t, err)

	inst, err := settings.Resolve(cur)
	require.NoError(t, err)
	assert.Equal(t, "api.local", inst.Attr("host"))
	assert.Equal(t, int64(9000), inst.Attr("port"))
	assert.Equal(t, false, inst.Attr("debug"))
}

func TestJSONDecodeError(t *testing.T) {
	_, err := source.JSON([]byte(`{`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source: decode json")
}

func TestJSONReader(t *testing.T) {
	cur, err := source.JSONReader(strings.NewReader(`{"host": "api.local"}`))
	require.NoError(t, err)

	inst, err := settings.Resolve(cur)
	require.NoError(t, err)
	assert.Equal(t, "api.local", inst.Attr("host"))
}

func TestYAMLNormalizesKeys(t *testing.T) {
	cur, err := source.YAML([]byte("host: api.local\nport: 9000\ndebug: true\n"))
	require.NoError(t, err)

	inst, err := settings.Resolve(cur)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), inst.Attr("port"))
	assert.Equal(t, true, inst.Attr("debug"))
}

func TestTOML(t *testing.T) {
	cur, err := source.TOML([]byte("host = \"api.local\"\nport = 9000\n"))
	require.NoError(t, err)

	inst, err := settings.Resolve(cur)
	require.NoError(t, err)
	assert.Equal(t, "api.local", inst.Attr("host"))
	assert.Equal(t, int64(9000), inst.Attr("port"))
}

func TestMsgpack(t *testing.T) {
	b, err := msgpack.Marshal(map[string]any{"host": "api.local", "debug": true})
	require.NoError(t, err)

	cur, err := source.Msgpack(b)
	require.NoError(t, err)

	inst, err := settings.Resolve(cur)
	require.NoError(t, err)
	assert.Equal(t, "api.local", inst.Attr("host"))
	assert.Equal(t, true, inst.Attr("debug"))
}

func TestValuesFlattensSingles(t *testing.T) {
	cur := source.Values(url.Values{
		"host":  {"api.local"},
		"port":  {"9000"},
		"debug": {"t"},
	})

	inst, err := settings.Resolve(cur)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), inst.Attr("port"))
	assert.Equal(t, true, inst.Attr("debug"))
}

func TestValuesKeepsRepeats(t *testing.T) {
	s := formwork.New().
		Field("tag", fields.List(fields.String())).
		MustBuild()

	inst, err := s.Resolve(source.Values(url.Values{"tag": {"a", "b"}}))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, inst.Attr("tag"))
}

func TestMergeLaterLayersWin(t *testing.T) {
	defaults := map[string]any{
		"host": "localhost",
		"tls":  map[string]any{"enabled": false, "cert": "default.pem"},
	}
	overrides := map[string]any{
		"host": "api.local",
		"tls":  map[string]any{"enabled": true},
	}

	cur := source.Merge(defaults, overrides)
	assert.Equal(t, "api.local", cur.Get("host").Value())
	assert.Equal(t, true, cur.Get("tls").Get("enabled").Value())
	assert.Equal(t, "default.pem", cur.Get("tls").Get("cert").Value())
}

func TestMergeDoesNotMutateLayers(t *testing.T) {
	base := map[string]any{"a": map[string]any{"x": 1}}
	source.Merge(base, map[string]any{"a": map[string]any{"y": 2}})
	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1}}, base)
}
