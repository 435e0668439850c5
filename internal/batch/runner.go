package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/Alia5/pbtmpl/internal/codegen/generator"
	"github.com/Alia5/pbtmpl/internal/codegen/render"
	"github.com/Alia5/pbtmpl/internal/configpaths"
	"github.com/Alia5/pbtmpl/internal/log"
	"github.com/Alia5/pbtmpl/internal/model"
	"github.com/Alia5/pbtmpl/internal/protoc"
	"github.com/Alia5/pbtmpl/internal/schema"
	"github.com/Alia5/pbtmpl/internal/selector"
	"github.com/Alia5/pbtmpl/internal/vcs"
)

// GeneratorName is exposed to templates as the producing tool.
const GeneratorName = "pbtmpl"

// Runner executes one generation run.
type Runner struct {
	Settings Settings
	Flat     Flat
	Document *Document

	Logger   *slog.Logger
	Reporter *log.Reporter
	// Schemas and UserNames may be shared between runs.
	Schemas   *schema.Cache
	UserNames *vcs.UserNameCache
	// Engine defaults to a text engine over Settings.SearchPaths.
	Engine render.Engine
	// Stdout and Stderr receive the schema compiler's output.
	Stdout io.Writer
	Stderr io.Writer

	databases map[*schema.Set]*model.Database
}

func (r *Runner) defaults() {
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	if r.Schemas == nil {
		r.Schemas = schema.NewCache(nil)
	}
	if r.UserNames == nil {
		r.UserNames = vcs.NewUserNameCache(nil, GeneratorName)
	}
	if r.databases == nil {
		r.databases = make(map[*schema.Set]*model.Database)
	}
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}
}

func (r *Runner) Run(ctx context.Context) (generator.Stats, error) {
	r.defaults()
	s := Merge(r.Settings, r.Document)

	if s.PbFile == "" && len(s.ProtoFiles) == 0 {
		return generator.Stats{}, ErrNoSchemaSource
	}
	wd, err := os.Getwd()
	if err != nil {
		return generator.Stats{}, err
	}
	projectDir := s.ProjectDir
	if projectDir == "" {
		if projectDir, err = configpaths.FindProjectDir(wd); err != nil {
			return generator.Stats{}, err
		}
	}
	r.Logger.Debug("Resolved project directory", "dir", projectDir)

	pbPath, cleanup, err := r.descriptorSet(ctx, s, wd)
	if err != nil {
		return generator.Stats{}, err
	}
	defer cleanup()

	db, err := r.database(pbPath)
	if err != nil {
		return generator.Stats{}, err
	}

	engine := r.Engine
	if engine == nil {
		engine = render.New(s.SearchPaths, nil)
	}
	gen, err := generator.New(generator.Options{
		OutputDir:     s.OutputDir,
		Encoding:      s.Encoding,
		DryRun:        s.DryRun,
		NoOverwrite:   s.NoOverwrite,
		GeneratorName: GeneratorName,
		VCSUserName:   r.UserNames.Get(ctx, projectDir),
		Variables:     s.Variables,
	}, engine, r.Logger, r.Reporter)
	if err != nil {
		return generator.Stats{}, err
	}

	for _, job := range Plan(r.Flat, r.Document) {
		if err := ctx.Err(); err != nil {
			return gen.Stats(), err
		}
		if err := r.runJob(gen, db, job); err != nil {
			return gen.Stats(), err
		}
	}

	st := gen.Stats()
	r.Logger.Info("Generation finished",
		"written", st.Written,
		"unchanged", st.Unchanged,
		"skipped", st.Skipped,
		"listed", st.Listed,
		"missing", st.Missing,
		"failed", st.Failed,
		"size", humanize.Bytes(uint64(st.Bytes)))
	return st, nil
}

// descriptorSet returns the descriptor set to load, compiling the schema
// sources first when no prebuilt set is configured. The returned cleanup
// removes a compiled set unless it is to be kept.
func (r *Runner) descriptorSet(ctx context.Context, s Settings, wd string) (string, func(), error) {
	noop := func() {}
	if s.PbFile != "" {
		return s.PbFile, noop, nil
	}

	out := s.OutputPbFile
	if out == "" {
		f, err := os.CreateTemp("", "pbtmpl-*.pb")
		if err != nil {
			return "", noop, fmt.Errorf("create descriptor set file: %w", err)
		}
		out = f.Name()
		_ = f.Close()
	}
	cleanup := func() {
		if s.KeepPbFile {
			return
		}
		if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
			r.Logger.Warn("Failed to remove compiled descriptor set", "path", out, "error", err)
		}
	}

	err := protoc.Compile(ctx, protoc.Options{
		Binary:   s.ProtocBinary,
		Patterns: s.ProtoFiles,
		Includes: s.ProtocIncludes,
		Flags:    s.ProtocFlags,
		Output:   out,
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
	}, wd, r.Logger)
	if err != nil {
		cleanup()
		return "", noop, err
	}
	return out, cleanup, nil
}

func (r *Runner) database(path string) (*model.Database, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	set, err := r.Schemas.Get(abs)
	if err != nil {
		return nil, err
	}
	if db, ok := r.databases[set]; ok {
		return db, nil
	}
	db := model.NewDatabase()
	db.Reset(set)
	r.databases[set] = db
	return db, nil
}

func (r *Runner) runJob(gen *generator.Generator, db *model.Database, job Job) error {
	if job.Kind == KindGlobal {
		gen.GenerateGlobal(generator.GlobalJob{
			Database:  db,
			Templates: job.Outer,
			OutputDir: job.OutputDir,
			Overwrite: job.Overwrite,
			Variables: job.Variables,
		})
		return nil
	}

	var (
		outer model.Object
		kind  string
	)
	switch job.Kind {
	case KindService:
		if svc := db.GetService(job.Name); svc != nil {
			outer = svc
		}
		kind = "rpc"
	case KindMessage:
		if msg := db.GetMessage(job.Name); msg != nil {
			outer = msg
		}
		kind = "field"
	case KindEnum:
		if en := db.GetEnum(job.Name); en != nil {
			outer = en
		}
		kind = "enumvalue"
	default:
		return fmt.Errorf("unknown job kind %q", job.Kind)
	}
	if outer == nil {
		r.Logger.Warn("Entity not found in schema, skipping", "kind", string(job.Kind), "name", job.Name)
		return nil
	}

	_, err := gen.GenerateGroup(generator.GroupJob{
		Outer: outer,
		Filter: selector.Filter{
			Kind:    kind,
			Include: job.Include,
			Exclude: job.Exclude,
			Ignore:  model.NewIgnoreSet(job.Ignore...),
		},
		OuterTemplates: job.Outer,
		InnerTemplates: job.Inner,
		OutputDir:      job.OutputDir,
		Overwrite:      job.Overwrite,
		Variables:      job.Variables,
	})
	return err
}
