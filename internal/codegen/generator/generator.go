package generator

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"

	"github.com/Alia5/pbtmpl/internal/codegen/render"
	"github.com/Alia5/pbtmpl/internal/log"
	"github.com/Alia5/pbtmpl/internal/model"
	"github.com/Alia5/pbtmpl/internal/rule"
	"github.com/Alia5/pbtmpl/internal/selector"
)

// Options are the run-wide settings shared by every job.
type Options struct {
	OutputDir string
	Encoding  string
	// DryRun lists resolved output paths without rendering or writing.
	DryRun bool
	// NoOverwrite keeps existing files unless a group or rule says otherwise.
	NoOverwrite   bool
	GeneratorName string
	VCSUserName   string
	// Variables are visible in every render context; job variables win.
	Variables map[string]any
}

type Generator struct {
	opts   Options
	engine render.Engine
	writer *Writer
	logger *slog.Logger
	report *log.Reporter
	stats  Stats
}

// GlobalJob renders each template once with the whole database in context.
type GlobalJob struct {
	Database  *model.Database
	Templates []rule.Rule
	OutputDir string
	Overwrite *bool
	Variables map[string]any
}

// GroupJob renders templates for one service, message or enum. Outer
// templates run once for the entity; inner templates run once per selected
// child.
type GroupJob struct {
	Outer          model.Object
	Filter         selector.Filter
	OuterTemplates []rule.Rule
	InnerTemplates []rule.Rule
	OutputDir      string
	Overwrite      *bool
	Variables      map[string]any
}

func New(opts Options, engine render.Engine, logger *slog.Logger, report *log.Reporter) (*Generator, error) {
	if opts.Encoding == "" {
		opts.Encoding = DefaultEncoding
	}
	w, err := NewWriter(opts.Encoding)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		opts:   opts,
		engine: engine,
		writer: w,
		logger: logger,
		report: report,
	}, nil
}

// Stats returns the totals of every job run so far.
func (g *Generator) Stats() Stats {
	return g.stats
}

func (g *Generator) GenerateGlobal(job GlobalJob) Stats {
	var st Stats
	ctx := g.baseContext(job.Variables, map[string]any{
		KeyDatabase:        job.Database,
		KeyCurrentInstance: job.Database,
	})
	g.logger.Debug("Generating global templates", "templates", len(job.Templates))
	for _, r := range job.Templates {
		g.runRule(&st, r, ctx, "global", job.OutputDir, job.Overwrite)
	}
	g.stats.Add(st)
	return st
}

func (g *Generator) GenerateGroup(job GroupJob) (Stats, error) {
	var st Stats
	if job.Outer == nil {
		return st, nil
	}
	grp, err := expand(job.Outer, job.Filter, g.logger)
	if err != nil {
		return st, err
	}
	g.logger.Debug("Generating group",
		"entity", job.Outer.FullName(),
		grp.setKey, len(grp.children))

	outerCtx := g.baseContext(job.Variables, map[string]any{
		grp.outerKey:       job.Outer,
		grp.setKey:         grp.set,
		KeyCurrentInstance: job.Outer,
	})
	for _, r := range job.OuterTemplates {
		g.runRule(&st, r, outerCtx, job.Outer.FullName(), job.OutputDir, job.Overwrite)
	}

	for _, r := range job.InnerTemplates {
		template, err := g.engine.Resolve(r.Input)
		if err != nil {
			g.missing(&st, r, job.Outer.FullName(), err)
			continue
		}
		for _, child := range grp.children {
			ctx := g.baseContext(job.Variables, map[string]any{
				grp.outerKey:       job.Outer,
				grp.setKey:         grp.set,
				grp.innerKey:       child,
				KeyCurrentInstance: child,
			})
			g.apply(&st, r, template, ctx, child.FullName(), job.OutputDir, job.Overwrite)
		}
	}
	g.stats.Add(st)
	return st, nil
}

func (g *Generator) missing(st *Stats, r rule.Rule, entity string, err error) {
	st.Missing++
	g.logger.Error("Template file not found, skipping rule",
		"template", r.Input, "entity", entity, "error", err)
}

func (g *Generator) runRule(st *Stats, r rule.Rule, ctx map[string]any, entity, outputDir string, overwrite *bool) {
	template, err := g.engine.Resolve(r.Input)
	if err != nil {
		g.missing(st, r, entity, err)
		return
	}
	g.apply(st, r, template, ctx, entity, outputDir, overwrite)
}

// apply runs one rule against one context. Failures are logged and counted
// here and never reach sibling rules.
func (g *Generator) apply(st *Stats, r rule.Rule, template string, base map[string]any, entity, outputDir string, groupOverwrite *bool) {
	ctx := maps.Clone(base)
	if err := g.applyRule(st, r, template, ctx, outputDir, groupOverwrite); err != nil {
		st.Failed++
		rerr := &RuleError{Rule: r, Entity: entity, Cause: err}
		g.logger.Error("Generation rule failed",
			"template", r.Input,
			"output", r.Output,
			"entity", entity,
			"error", rerr)
	}
}

func (g *Generator) applyRule(st *Stats, r rule.Rule, template string, ctx map[string]any, outputDir string, groupOverwrite *bool) error {
	output := r.Output
	if r.Dynamic {
		rendered, err := g.engine.RenderString(r.Output, ctx)
		if err != nil {
			return fmt.Errorf("render output path: %w", err)
		}
		output = rendered
	}
	ctx[KeyOutputRender] = output
	path := g.outputPath(output, outputDir)

	if g.opts.DryRun {
		st.Listed++
		g.report.Listed(path)
		return nil
	}

	if !g.overwrite(r.Overwrite, groupOverwrite) {
		if _, err := os.Stat(path); err == nil {
			st.Skipped++
			g.report.Skipped(r.Input, path)
			return nil
		}
	}

	ctx[KeyOutputFilePath] = path
	content, err := g.engine.RenderFile(template, ctx)
	if err != nil {
		return err
	}
	written, n, err := g.writer.Write(path, content)
	if err != nil {
		return err
	}
	if !written {
		st.Unchanged++
		g.report.Unchanged(r.Input, path)
		return nil
	}
	st.Written++
	st.Bytes += int64(n)
	g.report.Generated(r.Input, path)
	return nil
}

// outputPath joins a relative output with the first non-empty of the job
// and global output directories.
func (g *Generator) outputPath(output, jobDir string) string {
	dir := jobDir
	if dir == "" {
		dir = g.opts.OutputDir
	}
	if dir == "" || filepath.IsAbs(output) {
		return output
	}
	return filepath.Join(dir, output)
}

// overwrite applies the precedence rule flag > group flag > global default.
func (g *Generator) overwrite(ruleFlag, groupFlag *bool) bool {
	switch {
	case ruleFlag != nil:
		return *ruleFlag
	case groupFlag != nil:
		return *groupFlag
	}
	return !g.opts.NoOverwrite
}
