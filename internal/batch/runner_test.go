package batch

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/pbtmpl/internal/configpaths"
	"github.com/Alia5/pbtmpl/internal/log"
	"github.com/Alia5/pbtmpl/internal/protoc"
	pbtesting "github.com/Alia5/pbtmpl/internal/testing"
	"github.com/Alia5/pbtmpl/internal/vcs"
)

const runDocument = `
configure:
  output_directory: gen
  paths: [templates]
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
      custom_variables:
        author: rule
  - global:
      global_template: global.tmpl:services.txt
      output_directory: out
`

type runFixture struct {
	dir    string
	pb     string
	logs   bytes.Buffer
	report bytes.Buffer
}

func newRunFixture(t *testing.T) *runFixture {
	t.Helper()
	f := &runFixture{dir: t.TempDir(), pb: pbtesting.WriteDescriptorSet(t, pbtesting.SampleSet())}
	pbtesting.WriteFile(t, f.dir, "templates/service.tmpl",
		`{{ .project }}/{{ .author }}/{{ .local_vcs_user_name }}:{{ range .rpcs }}{{ .Name }} {{ end }}`)
	pbtesting.WriteFile(t, f.dir, "rpc.tmpl", `{{ .rpc.RequestName }}`)
	pbtesting.WriteFile(t, f.dir, "global.tmpl", `{{ range .database.Services }}{{ .FullName }}{{ end }}`)
	return f
}

func (f *runFixture) document(t *testing.T) *Document {
	t.Helper()
	doc, err := LoadDocument(pbtesting.WriteFile(t, f.dir, "batch.yaml", runDocument))
	require.NoError(t, err)
	return doc
}

func (f *runFixture) runner(doc *Document, s Settings) *Runner {
	if s.PbFile == "" && len(s.ProtoFiles) == 0 {
		s.PbFile = f.pb
	}
	s.ProjectDir = f.dir
	return &Runner{
		Settings: s,
		Document: doc,
		Logger:   slog.New(slog.NewTextHandler(&f.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Reporter: log.NewReporter(&f.report, false),
		UserNames: vcs.NewUserNameCache(func(context.Context, string) (string, error) {
			return "tester", nil
		}, ""),
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunDocument(t *testing.T) {
	f := newRunFixture(t)
	r := f.runner(f.document(t), Settings{Variables: map[string]any{"project": "cli"}})
	r.Flat = Flat{
		ServiceNames:     []string{"demo.Missing"},
		ServiceTemplates: []string{"rpc.tmpl"},
	}

	st, err := r.Run(context.Background())
	require.NoError(t, err)

	gen := filepath.Join(f.dir, "gen")
	assert.Equal(t, "cli/rule/tester:get_user getUser2 ", readFile(t, filepath.Join(gen, "userservice.txt")))
	assert.Equal(t, "demo.GetUserRequest", readFile(t, filepath.Join(gen, "rpc", "get_user.txt")))
	assert.Equal(t, "demo.GetUserRequest", readFile(t, filepath.Join(gen, "rpc", "getUser2.txt")))
	assert.NoFileExists(t, filepath.Join(gen, "rpc", "list_items.txt"))
	assert.Equal(t, "demo.UserService", readFile(t, filepath.Join(f.dir, "out", "services.txt")))
	assert.Equal(t, 4, st.Written)
	assert.Zero(t, st.Failed)

	logs := f.logs.String()
	assert.Contains(t, logs, "Entity not found in schema")
	assert.Contains(t, logs, "name=demo.Missing")
	assert.Contains(t, logs, "Generation finished")
}

func TestRunIsIdempotent(t *testing.T) {
	f := newRunFixture(t)
	doc := f.document(t)

	_, err := f.runner(doc, Settings{}).Run(context.Background())
	require.NoError(t, err)
	st, err := f.runner(doc, Settings{}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Written)
	assert.Equal(t, 4, st.Unchanged)
}

func TestRunDryRun(t *testing.T) {
	f := newRunFixture(t)
	st, err := f.runner(f.document(t), Settings{DryRun: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, st.Listed)
	assert.NoDirExists(t, filepath.Join(f.dir, "gen"))
	assert.Contains(t, f.report.String(), filepath.Join(f.dir, "gen", "userservice.txt"))
}

func TestRunFlatMessage(t *testing.T) {
	f := newRunFixture(t)
	tmpl := pbtesting.WriteFile(t, f.dir, "field.tmpl", `{{ .field.Number }}`)
	r := f.runner(nil, Settings{OutputDir: filepath.Join(f.dir, "flat")})
	r.Flat = Flat{
		MessageNames:   []string{"demo.User"},
		FieldInclude:   "user|status",
		FieldTemplates: []string{tmpl + ":${ .field.Name }.txt"},
	}

	st, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.Written)
	assert.Equal(t, "2", readFile(t, filepath.Join(f.dir, "flat", "user_name.txt")))
	assert.Equal(t, "3", readFile(t, filepath.Join(f.dir, "flat", "status.txt")))
}

func TestRunWithoutSchemaSource(t *testing.T) {
	r := &Runner{Settings: Settings{ProjectDir: t.TempDir()}}
	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoSchemaSource)
}

func TestRunWithoutProjectDir(t *testing.T) {
	dir := t.TempDir()
	if _, err := configpaths.FindProjectDir(dir); err == nil {
		t.Skip("temporary directory is inside a git checkout")
	}
	t.Chdir(dir)
	r := &Runner{Settings: Settings{PbFile: "schema.pb"}}
	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoProjectDir)
}

func TestRunCompilesSources(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a shell script")
	}
	f := newRunFixture(t)
	pbtesting.WriteFile(t, f.dir, "proto/demo.proto", "syntax = \"proto3\";\n")
	script := pbtesting.WriteFile(t, f.dir, "bin/protoc", "#!/bin/sh\ncp \""+f.pb+"\" \"$2\"\n")
	require.NoError(t, os.Chmod(script, 0o755))

	tests := []struct {
		name string
		keep bool
	}{
		{"removed after run", false},
		{"kept on request", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "compiled.pb")
			r := f.runner(f.document(t), Settings{
				ProtocBinary: script,
				ProtoFiles:   []string{filepath.Join(f.dir, "proto", "*.proto")},
				OutputPbFile: out,
				KeepPbFile:   tt.keep,
			})
			_, err := r.Run(context.Background())
			require.NoError(t, err)
			assert.FileExists(t, filepath.Join(f.dir, "gen", "userservice.txt"))
			if tt.keep {
				assert.FileExists(t, out)
			} else {
				assert.NoFileExists(t, out)
			}
		})
	}
}

func TestRunCompileWithoutMatches(t *testing.T) {
	f := newRunFixture(t)
	r := f.runner(nil, Settings{ProtoFiles: []string{filepath.Join(f.dir, "none", "*.proto")}})
	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, protoc.ErrNoSources)
}
