package memedb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinmeme-project/coinmeme/pkg/layout"
)

func sampleTemplate(name string) Template {
	return Template{
		Name:        name,
		Explanation: "A test template",
		Schema: map[string]FieldSpec{
			"top_text":    {Description: "the setup"},
			"bottom_text": {Description: "the punchline"},
		},
		BoundingBoxes: map[string]layout.Box{
			"top_text":    {X: 0.5, Y: 0.15, Width: 0.8, Height: 0.15},
			"bottom_text": {X: 0.5, Y: 0.85, Width: 0.8, Height: 0.15},
		},
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memedb.jsonl")
	want := []Template{sampleTemplate("drake"), sampleTemplate("two_buttons")}

	require.NoError(t, WriteAll(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadSkipsUnparsableLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memedb.jsonl")
	content := `{"name":"good_one","explanation":"ok","schema":{},"bounding_boxes":{}}
this is not json
{"name":"good_two","explanation":"ok","schema":{},"bounding_boxes":{}}

`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	templates, err := Load(path)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "good_one", templates[0].Name)
	assert.Equal(t, "good_two", templates[1].Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}

func TestAppendCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memedb.jsonl")

	stored, err := Append(path, sampleTemplate("drake"))
	require.NoError(t, err)
	assert.Equal(t, "drake", stored.Name)

	templates, err := Load(path)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, stored, templates[0])
}

func TestAppendSuffixesDuplicateNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memedb.jsonl")

	first, err := Append(path, sampleTemplate("drake"))
	require.NoError(t, err)
	second, err := Append(path, sampleTemplate("drake"))
	require.NoError(t, err)
	third, err := Append(path, sampleTemplate("drake"))
	require.NoError(t, err)

	assert.Equal(t, "drake", first.Name)
	assert.Equal(t, "drake_1", second.Name)
	assert.Equal(t, "drake_2", third.Name)

	templates, err := Load(path)
	require.NoError(t, err)
	require.Len(t, templates, 3)
}

func TestFindByName(t *testing.T) {
	templates := []Template{sampleTemplate("drake"), sampleTemplate("kermit")}

	found, ok := FindByName(templates, "kermit")
	assert.True(t, ok)
	assert.Equal(t, "kermit", found.Name)

	_, ok = FindByName(templates, "missing")
	assert.False(t, ok)
}

func TestFieldNamesSorted(t *testing.T) {
	template := sampleTemplate("drake")
	assert.Equal(t, []string{"bottom_text", "top_text"}, template.FieldNames())
}

func TestAuditView(t *testing.T) {
	template := sampleTemplate("drake")
	view := template.AuditView()
	assert.Equal(t, "drake", view.Name)
	assert.Equal(t, template.BoundingBoxes, view.Boxes)
}
