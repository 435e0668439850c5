package batch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/pbtmpl/internal/rule"
	pbtesting "github.com/Alia5/pbtmpl/internal/testing"
)

const yamlDocument = `
configure:
  output_directory: gen
  encoding: utf-8
  overwrite: false
  paths: [templates]
  pb_file: schema.pb
  custom_variables:
    project: demo
    author: doc
rules:
  - service:
      name: demo.UserService
      rpc_include: get
      service_template: service.tmpl:${ .service.NameLowerRule }.txt
      rpc_template:
        - input: rpc.tmpl
          output: rpc/${ .rpc.Name }.txt
          overwrite: true
      custom_variables:
        author: rule
  - global:
      global_template: [global.tmpl]
      output_directory: /abs/out
`

func TestLoadDocumentYAML(t *testing.T) {
	dir := t.TempDir()
	path := pbtesting.WriteFile(t, dir, "batch.yaml", yamlDocument)

	doc, err := LoadDocument(path)
	require.NoError(t, err)

	c := doc.Configure
	assert.Equal(t, dir, doc.Dir)
	assert.Equal(t, filepath.Join(dir, "gen"), c.OutputDirectory)
	assert.Equal(t, filepath.Join(dir, "schema.pb"), c.PbFile)
	assert.Equal(t, []string{filepath.Join(dir, "templates")}, c.Paths)
	require.NotNil(t, c.Overwrite)
	assert.False(t, *c.Overwrite)
	assert.Equal(t, "demo", c.CustomVariables["project"])

	require.Len(t, doc.Rules, 2)
	svc := doc.Rules[0].Service
	require.NotNil(t, svc)
	assert.Equal(t, "demo.UserService", svc.Name)
	assert.Equal(t, "get", svc.RpcInclude)
	assert.Equal(t, []rule.Rule{rule.Parse("service.tmpl:${ .service.NameLowerRule }.txt")}, svc.ServiceTemplate)
	require.Len(t, svc.RpcTemplate, 1)
	rpc := svc.RpcTemplate[0]
	assert.Equal(t, "rpc.tmpl", rpc.Input)
	assert.Equal(t, "rpc/${ .rpc.Name }.txt", rpc.Output)
	assert.True(t, rpc.Dynamic)
	require.NotNil(t, rpc.Overwrite)
	assert.True(t, *rpc.Overwrite)
	assert.Equal(t, "rule", svc.CustomVariables["author"])

	global := doc.Rules[1].Global
	require.NotNil(t, global)
	assert.Equal(t, "global", global.GlobalTemplate[0].Output)
	assert.Equal(t, "/abs/out", global.OutputDirectory)
}

func TestLoadDocumentTOML(t *testing.T) {
	dir := t.TempDir()
	path := pbtesting.WriteFile(t, dir, "batch.toml", `
[configure]
overwrite = true
proto_files = ["proto/**/*.proto"]

[[rules]]
[rules.message]
name = "demo.User"
field_include = "user"
message_template = ["msg.tmpl:user.txt"]
ignore = "demo.User.email"

[[rules]]
[rules.enum]
name = "demo.Status"
enumvalue_exclude = "STATUS_BANNED"
enumvalue_template = ["value.tmpl:${ .enumvalue.Name }.txt"]
`)

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "proto/**/*.proto")}, doc.Configure.ProtoFiles)
	require.Len(t, doc.Rules, 2)

	msg := doc.Rules[0].Message
	require.NotNil(t, msg)
	assert.Equal(t, "user", msg.FieldInclude)
	assert.Equal(t, []string{"demo.User.email"}, msg.Ignore)
	assert.Equal(t, "user.txt", msg.MessageTemplate[0].Output)

	en := doc.Rules[1].Enum
	require.NotNil(t, en)
	assert.Equal(t, "STATUS_BANNED", en.EnumValueExclude)
	assert.True(t, en.EnumValueTemplate[0].Dynamic)
}

func TestLoadDocumentJSON(t *testing.T) {
	dir := t.TempDir()
	path := pbtesting.WriteFile(t, dir, "batch.json", `{
  "configure": {"protoc_includes": ["third_party"]},
  "rules": [
    {"enum": {"name": "demo.Status", "enum_template": {"input": "enum.tmpl", "overwrite": false}}}
  ]
}`)

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "third_party")}, doc.Configure.ProtocIncludes)
	tmpl := doc.Rules[0].Enum.EnumTemplate
	require.Len(t, tmpl, 1)
	assert.Equal(t, "enum", tmpl[0].Output)
	require.NotNil(t, tmpl[0].Overwrite)
	assert.False(t, *tmpl[0].Overwrite)
}

func TestLoadDocumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"unsupported extension", "batch.ini", "x=1", ErrUnsupportedFormat},
		{"two kinds in one entry", "batch.yaml", "rules:\n  - service: {name: a}\n    enum: {name: b}\n", nil},
		{"empty entry", "batch.yaml", "rules:\n  - {}\n", nil},
		{"unknown key", "batch.yaml", "configure:\n  outptu_directory: x\n", nil},
		{"rule without input", "batch.yaml", "rules:\n  - global:\n      global_template:\n        - output: x\n", nil},
		{"malformed yaml", "batch.yaml", "rules: [", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := pbtesting.WriteFile(t, t.TempDir(), tt.file, tt.content)
			_, err := LoadDocument(path)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoadDocumentMissingFile(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSampleDecodes(t *testing.T) {
	doc, err := DecodeDocument(Sample())
	require.NoError(t, err)
	require.Len(t, doc.Rules, 4)
	assert.Equal(t, "example.ExampleService", doc.Rules[0].Service.Name)
	assert.Equal(t, "rpc/${ .rpc.NameLowerRule }.cpp", doc.Rules[0].Service.RpcTemplate[0].Output)
	assert.Equal(t, "index.txt", doc.Rules[3].Global.GlobalTemplate[0].Output)
}
