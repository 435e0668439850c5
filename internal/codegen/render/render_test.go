package render

import (
	"path/filepath"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbtesting "github.com/Alia5/pbtmpl/internal/testing"
)

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	path := pbtesting.WriteFile(t, dir, "hello.tmpl", `{{ .name | lower_rule }}|{{ pluralize .noun }}|{{ include "part.tmpl" . }}`)
	pbtesting.WriteFile(t, dir, "part.tmpl", `{{ identify .name "pascal" "::" }}`)

	e := New(nil, nil)
	out, err := e.RenderFile(path, map[string]any{"name": "My.Cool_Service2Name", "noun": "item"})
	require.NoError(t, err)
	assert.Equal(t, "my_cool_service2_name|items|My::CoolService2Name", out)
}

func TestRenderFileSearchPaths(t *testing.T) {
	dir := t.TempDir()
	pbtesting.WriteFile(t, dir, "shared/header.tmpl", "// {{ .generator }}")

	e := New([]string{filepath.Join(dir, "shared")}, nil)
	abs, err := e.Resolve("header.tmpl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shared", "header.tmpl"), abs)

	out, err := e.RenderFile("header.tmpl", map[string]any{"generator": "pbtmpl"})
	require.NoError(t, err)
	assert.Equal(t, "// pbtmpl", out)

	_, err = e.Resolve("absent.tmpl")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestRenderString(t *testing.T) {
	e := New(nil, template.FuncMap{"shout": func(s string) string { return s + "!" }})

	tests := []struct {
		name string
		text string
		data map[string]any
		want string
	}{
		{"literal", "out/file.go", nil, "out/file.go"},
		{"action", "${ .name | lower_rule }.h", map[string]any{"name": "UserService"}, "userservice.h"},
		{"extra func", "${ shout .name }", map[string]any{"name": "hi"}, "hi!"},
		{"default", `${ .empty | default "x" }.txt`, map[string]any{"empty": ""}, "x.txt"},
		{"go braces pass through", "{{ .name }}", map[string]any{"name": "n"}, "{{ .name }}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.RenderString(tt.text, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := e.RenderString("${ .name ", nil)
	assert.Error(t, err)
}

func TestRenderFileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := pbtesting.WriteFile(t, dir, "bad.tmpl", "{{ if }}")
	e := New(nil, nil)
	_, err := e.RenderFile(bad, nil)
	assert.ErrorContains(t, err, "parse template")

	failing := pbtesting.WriteFile(t, dir, "fail.tmpl", `{{ include "nope.tmpl" . }}`)
	_, err = e.RenderFile(failing, nil)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	typo := pbtesting.WriteFile(t, dir, "typo.tmpl", `{{ .nope.Field }}|{{ .typo }}`)
	_, err = e.RenderFile(typo, map[string]any{"name": "n"})
	assert.ErrorContains(t, err, `map has no entry for key "nope"`)

	_, err = e.RenderString("${ .typo }.txt", map[string]any{"name": "n"})
	assert.ErrorContains(t, err, `map has no entry for key "typo"`)
}

func TestDefaultValue(t *testing.T) {
	assert.Equal(t, "d", defaultValue("d", nil))
	assert.Equal(t, "d", defaultValue("d", ""))
	assert.Equal(t, "d", defaultValue("d", 0))
	assert.Equal(t, "v", defaultValue("d", "v"))
}
