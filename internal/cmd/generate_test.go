package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/pbtmpl/internal/batch"
	"github.com/Alia5/pbtmpl/internal/rule"
	pbtesting "github.com/Alia5/pbtmpl/internal/testing"
)

func parseGenerate(t *testing.T, args ...string) *Generate {
	t.Helper()
	var cli struct {
		Generate Generate `cmd:"" default:"withargs"`
	}
	parser, err := kong.New(&cli)
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return &cli.Generate
}

func TestGenerateFlags(t *testing.T) {
	g := parseGenerate(t,
		"-P", "proto/**/*.proto",
		"--pb-file", "schema.pb",
		"-s", "demo.UserService",
		"--service-template", "svc.tmpl:${ .service.Name },v1.h",
		"--service-template", "extra.tmpl",
		"--rpc-include", "get|list",
		"--enumvalue-exclude", "UNKNOWN",
		"--set", "a=b=c",
		"--set", "flag",
		"--no-overwrite",
		"--print-output-files",
	)

	flat := g.flat()
	assert.Equal(t, []string{"demo.UserService"}, flat.ServiceNames)
	assert.Equal(t, []string{"svc.tmpl:${ .service.Name },v1.h", "extra.tmpl"}, flat.ServiceTemplates)
	assert.Equal(t, "get|list", flat.RpcInclude)
	assert.Equal(t, "UNKNOWN", flat.EnumValueExclude)

	s := g.settings()
	assert.Equal(t, []string{"proto/**/*.proto"}, s.ProtoFiles)
	assert.True(t, filepath.IsAbs(s.PbFile))
	assert.True(t, s.NoOverwrite)
	assert.True(t, s.DryRun)
	assert.Equal(t, map[string]any{"a": "b=c", "flag": ""}, s.Variables)

	jobs := batch.Plan(flat, nil)
	require.Len(t, jobs, 1)
	assert.Equal(t, []rule.Rule{rule.Parse("svc.tmpl:${ .service.Name },v1.h"), rule.Parse("extra.tmpl")}, jobs[0].Outer)
}

func TestGenerateRun(t *testing.T) {
	dir := t.TempDir()
	pb := pbtesting.WriteDescriptorSet(t, pbtesting.SampleSet())
	tmpl := pbtesting.WriteFile(t, dir, "enum.tmpl", `{{ range .enumvalues }}{{ .NameLowerRule }};{{ end }}`)
	rules := pbtesting.WriteFile(t, dir, "rules.yaml", `
rules:
  - enum:
      name: demo.User.Role
      enum_template: enum.tmpl:role.txt
`)

	g := parseGenerate(t,
		"--pb-file", pb,
		"--project-dir", dir,
		"-o", filepath.Join(dir, "out"),
		"-c", rules,
		"--enum-name", "demo.Status",
		"--enumvalue-include", "STATUS_A",
		"--enum-template", tmpl+":status.txt",
		"--quiet",
	)
	require.NoError(t, g.Run(slog.New(slog.NewTextHandler(os.Stderr, nil))))

	data, err := os.ReadFile(filepath.Join(dir, "out", "status.txt"))
	require.NoError(t, err)
	assert.Equal(t, "status_active;", string(data))
	data, err = os.ReadFile(filepath.Join(dir, "out", "role.txt"))
	require.NoError(t, err)
	assert.Equal(t, "role_guest;role_admin;", string(data))
}

func TestGenerateRunBadBatchConfig(t *testing.T) {
	g := parseGenerate(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := g.Runner(slog.Default())
	assert.Error(t, err)
}

func TestGenerateRunWithoutSchema(t *testing.T) {
	g := parseGenerate(t, "--project-dir", t.TempDir())
	r, err := g.Runner(slog.Default())
	require.NoError(t, err)
	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, batch.ErrNoSchemaSource)
}
