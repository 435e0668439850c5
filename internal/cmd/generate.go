package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/pbtmpl/internal/batch"
	"github.com/Alia5/pbtmpl/internal/log"
)

// Generate renders templates for the selected schema entities. Repeatable
// rule flags use sep:"none" so commas inside output rules survive.
type Generate struct {
	Output   string   `short:"o" help:"Output directory" type:"path" env:"PBTMPL_OUTPUT"`
	AddPath  []string `help:"Add a template search directory" sep:"none"`
	Encoding string   `help:"Output encoding (utf-8, utf-8-sig, gbk, ...); defaults to utf-8" env:"PBTMPL_ENCODING"`

	ProtocBin     string   `short:"p" help:"Path to protoc (default: protoc on PATH)" env:"PBTMPL_PROTOC"`
	ProtocFlag    []string `help:"Extra flag passed to protoc" sep:"none"`
	ProtocInclude []string `help:"Add -I<dir> when running protoc" sep:"none"`
	ProtoFiles    []string `short:"P" help:"Schema source glob; ** matches across directories" sep:"none"`
	PbFile        string   `help:"Use this descriptor set instead of compiling --proto-files" type:"path"`
	OutputPbFile  string   `help:"Where to write the compiled descriptor set (default: a temporary file)" type:"path"`
	KeepPbFile    bool     `help:"Keep the compiled descriptor set after the run"`

	ProjectDir       string   `help:"Project directory (default: nearest parent containing .git)" type:"path"`
	PrintOutputFiles bool     `help:"Print output paths without rendering or writing"`
	NoOverwrite      bool     `help:"Keep output files that already exist"`
	Quiet            bool     `help:"Do not report generated files"`
	Set              []string `help:"Set a template variable (KEY=VALUE)" sep:"none"`
	BatchConfig      string   `short:"c" help:"Declarative rules document (yaml, toml or json)" type:"path"`

	ServiceName     []string `short:"s" help:"Service to generate" sep:"none"`
	ServiceTemplate []string `help:"Template rule for each service (TEMPLATE[:OUTPUT])" sep:"none"`
	RpcTemplate     []string `help:"Template rule for each rpc (TEMPLATE[:OUTPUT])" sep:"none"`
	RpcInclude      string   `help:"Select only rpcs whose name matches this regex"`
	RpcExclude      string   `help:"Skip rpcs whose name matches this regex"`

	MessageName     []string `help:"Message to generate" sep:"none"`
	MessageTemplate []string `help:"Template rule for each message (TEMPLATE[:OUTPUT])" sep:"none"`
	FieldTemplate   []string `help:"Template rule for each field (TEMPLATE[:OUTPUT])" sep:"none"`
	FieldInclude    string   `help:"Select only fields whose name matches this regex"`
	FieldExclude    string   `help:"Skip fields whose name matches this regex"`

	EnumName          []string `help:"Enum to generate" sep:"none"`
	EnumTemplate      []string `help:"Template rule for each enum (TEMPLATE[:OUTPUT])" sep:"none"`
	EnumvalueTemplate []string `help:"Template rule for each enum value (TEMPLATE[:OUTPUT])" sep:"none"`
	EnumvalueInclude  string   `help:"Select only enum values whose name matches this regex"`
	EnumvalueExclude  string   `help:"Skip enum values whose name matches this regex"`

	GlobalTemplate []string `help:"Template rule rendered once with the whole schema (TEMPLATE[:OUTPUT])" sep:"none"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := g.Runner(logger)
	if err != nil {
		return err
	}
	st, err := r.Run(ctx)
	if err != nil {
		return err
	}
	if st.Missing > 0 || st.Failed > 0 {
		logger.Warn("Some rules were not applied", "missing", st.Missing, "failed", st.Failed)
	}
	return nil
}

// Runner builds the batch runner for the parsed flags.
func (g *Generate) Runner(logger *slog.Logger) (*batch.Runner, error) {
	var doc *batch.Document
	if g.BatchConfig != "" {
		var err error
		if doc, err = batch.LoadDocument(g.BatchConfig); err != nil {
			return nil, fmt.Errorf("load batch config: %w", err)
		}
		logger.Debug("Loaded batch config", "path", g.BatchConfig, "rules", len(doc.Rules))
	}
	return &batch.Runner{
		Settings: g.settings(),
		Flat:     g.flat(),
		Document: doc,
		Logger:   logger,
		Reporter: log.NewReporter(os.Stdout, g.Quiet),
	}, nil
}

func (g *Generate) settings() batch.Settings {
	return batch.Settings{
		OutputDir:      g.Output,
		Encoding:       g.Encoding,
		NoOverwrite:    g.NoOverwrite,
		SearchPaths:    g.AddPath,
		ProtocBinary:   g.ProtocBin,
		ProtoFiles:     g.ProtoFiles,
		ProtocIncludes: g.ProtocInclude,
		ProtocFlags:    g.ProtocFlag,
		PbFile:         g.PbFile,
		OutputPbFile:   g.OutputPbFile,
		KeepPbFile:     g.KeepPbFile,
		ProjectDir:     g.ProjectDir,
		DryRun:         g.PrintOutputFiles,
		Variables:      batch.ParseAssignments(g.Set),
	}
}

func (g *Generate) flat() batch.Flat {
	return batch.Flat{
		ServiceNames:       g.ServiceName,
		RpcInclude:         g.RpcInclude,
		RpcExclude:         g.RpcExclude,
		ServiceTemplates:   g.ServiceTemplate,
		RpcTemplates:       g.RpcTemplate,
		MessageNames:       g.MessageName,
		FieldInclude:       g.FieldInclude,
		FieldExclude:       g.FieldExclude,
		MessageTemplates:   g.MessageTemplate,
		FieldTemplates:     g.FieldTemplate,
		EnumNames:          g.EnumName,
		EnumValueInclude:   g.EnumvalueInclude,
		EnumValueExclude:   g.EnumvalueExclude,
		EnumTemplates:      g.EnumTemplate,
		EnumValueTemplates: g.EnumvalueTemplate,
		GlobalTemplates:    g.GlobalTemplate,
	}
}
