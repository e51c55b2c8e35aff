package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# QueryGGUF Configuration File
llama_cli_path = "/home/u/llama.cpp/build/bin/llama-cli"

logging_enabled = true
gguf_model_directory_2 = "/b"
gguf_model_directory_1 = "/a"
gguf_model_directory_x = "/ignored"
  # indented comment
prompt_directory = prompts
broken line without equals
mode_10 = "/m/ten.gguf|p.txt|Ten|tenth"
mode_2 = "/m/two.gguf|p.txt|Two|second"
mode_1 = "  /m/one.gguf|p.txt|One|first  "
mode_3 = ""
`

func TestParseLine(t *testing.T) {
	cases := []struct {
		raw   string
		kind  LineKind
		key   string
		value string
	}{
		{"", LineBlank, "", ""},
		{"   ", LineBlank, "", ""},
		{"# c", LineComment, "", ""},
		{"   #c = 1", LineComment, "", ""},
		{"nothing", LineOther, "", ""},
		{`k = "v"`, LineAssignment, "k", "v"},
		{`k="a=b"`, LineAssignment, "k", "a=b"},
		{`  k  =   " spaced "  `, LineAssignment, "k", "spaced"},
		{`k = 5`, LineAssignment, "k", "5"},
		{`k = ""x""`, LineAssignment, "k", `"x"`},
	}
	for _, c := range cases {
		l := ParseLine(c.raw)
		assert.Equal(t, c.kind, l.Kind, c.raw)
		assert.Equal(t, c.key, l.Key, c.raw)
		assert.Equal(t, c.value, l.Value, c.raw)
	}
}

func TestField(t *testing.T) {
	d := ParseDocument(sample)
	assert.Equal(t, "/home/u/llama.cpp/build/bin/llama-cli", d.Field("llama_cli_path"))
	assert.Equal(t, "true", d.Field("logging_enabled"))
	assert.Equal(t, "prompts", d.Field("prompt_directory"))
	// exact match only
	assert.Equal(t, "", d.Field("llama_cli"))
	assert.Equal(t, "", d.Field("gguf_model_directory"))
	assert.Equal(t, "", d.Field(""))
	assert.Equal(t, "", d.Field("mode_3"), "empty value is not found")
	assert.Equal(t, "", d.Field("missing"))
}

func TestIndexedFields_OrderedBySuffix(t *testing.T) {
	d := ParseDocument(sample)
	assert.Equal(t, []string{"/a", "/b"}, d.IndexedFields("gguf_model_directory"))

	entries := d.IndexedEntries("mode")
	require.Len(t, entries, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{entries[0].Index, entries[1].Index, entries[2].Index})
	assert.Equal(t, "/m/one.gguf|p.txt|One|first", entries[0].Value)
	assert.Equal(t, "mode_10", entries[2].Key)

	assert.Nil(t, d.IndexedFields(""))
	assert.Nil(t, d.IndexedFields("nope"))
}

func TestDocumentRewrite(t *testing.T) {
	d := ParseDocument("a = 1\ndefault_mode = 1\n# keep\nb = 2\n")
	assert.Equal(t, 1, d.RemoveKey("default_mode"))
	d.AppendAssignment("default_mode", 4)
	d.AppendAssignment("path", `C:\models`)
	assert.Equal(t, "a = 1\n# keep\nb = 2\ndefault_mode = 4\npath = \"C:\\models\"\n", d.String())
	assert.Equal(t, `C:\models`, d.Field("path"))
	assert.Equal(t, 0, d.RemoveKey("absent"))
}

func TestCountRawPrefix(t *testing.T) {
	d := ParseDocument("mode_1 = \"x\"\n# mode_2 = \"y\"\n mode_3 = \"z\"\nmode_bad\n")
	// untrimmed prefix match: the indented line does not count, the malformed one does
	assert.Equal(t, 2, d.CountRawPrefix("mode_"))
}

func TestParseDocument_CRLFAndEmpty(t *testing.T) {
	d := ParseDocument("a = 1\r\nb = 2\r\n")
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, "1", d.Field("a"))
	assert.Equal(t, "", ParseDocument("").String())
}

func TestReadHelpersDegrade(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.toml")
	assert.Equal(t, "", ReadField(missing, "llama_cli_path"))
	assert.Empty(t, ReadIndexedFields(missing, "mode"))
	// a directory is unreadable as a file
	assert.Equal(t, "", ReadField(t.TempDir(), "x"))

	p := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(p, []byte(sample), 0o644))
	assert.Equal(t, "true", ReadField(p, "logging_enabled"))
	assert.Equal(t, "", ReadField(p, ""))
	assert.Len(t, ReadIndexedFields(p, "mode"), 3)
	assert.Empty(t, ReadIndexedFields(p, ""))
}

func TestRootPaths(t *testing.T) {
	dir := t.TempDir()
	r := NewRoot(dir, "/home/u")
	assert.Equal(t, filepath.Join(dir, ConfigFileName), r.ConfigPath())
	assert.Equal(t, filepath.Join(dir, "prompts", "blankprompt.txt"), r.BlankPromptPath())
	assert.False(t, r.ConfigExists())

	p, err := r.EnsureBlankPrompt()
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, BlankPromptBody, string(b))

	t.Setenv(RootEnv, dir)
	def, err := DefaultRoot()
	require.NoError(t, err)
	assert.Equal(t, dir, def.Dir)
}
