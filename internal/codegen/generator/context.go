package generator

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/Alia5/pbtmpl/internal/model"
	"github.com/Alia5/pbtmpl/internal/naming"
	"github.com/Alia5/pbtmpl/internal/selector"
)

// Render-context keys present in every invocation.
const (
	KeyGenerator       = "generator"
	KeyVCSUserName     = "local_vcs_user_name"
	KeyOutputFilePath  = "output_file_path"
	KeyOutputRender    = "output_render_path"
	KeyCurrentInstance = "current_instance"
	KeyDatabase        = "database"
	KeyModes           = "modes"
)

var modes = map[string]naming.Mode{
	"preserve": naming.Preserve,
	"lower":    naming.Lower,
	"upper":    naming.Upper,
	"camel":    naming.CamelLower,
	"pascal":   naming.Pascal,
}

// group is an outer entity with its selected children and the context keys
// they are published under.
type group struct {
	outerKey string
	setKey   string
	innerKey string
	set      any
	children []model.Object
}

func objects[T model.Object](items []T) []model.Object {
	out := make([]model.Object, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func expand(outer model.Object, f selector.Filter, logger *slog.Logger) (group, error) {
	switch o := outer.(type) {
	case *model.Service:
		if f.Kind == "" {
			f.Kind = "rpc"
		}
		sel := selector.Select(o.Rpcs(), f, logger)
		return group{outerKey: "service", setKey: "rpcs", innerKey: "rpc", set: sel, children: objects(sel)}, nil
	case *model.Message:
		if f.Kind == "" {
			f.Kind = "field"
		}
		sel := selector.Select(o.Fields(), f, logger)
		return group{outerKey: "message", setKey: "fields", innerKey: "field", set: sel, children: objects(sel)}, nil
	case *model.Enum:
		if f.Kind == "" {
			f.Kind = "enumvalue"
		}
		sel := selector.Select(o.Values(), f, logger)
		return group{outerKey: "enum", setKey: "enumvalues", innerKey: "enumvalue", set: sel, children: objects(sel)}, nil
	}
	return group{}, fmt.Errorf("unsupported entity %T", outer)
}

// baseContext holds the keys shared by every shape. Custom variables are
// applied last and may shadow built-in keys.
func (g *Generator) baseContext(vars map[string]any, extra map[string]any) map[string]any {
	ctx := map[string]any{
		KeyGenerator:       g.opts.GeneratorName,
		KeyVCSUserName:     g.opts.VCSUserName,
		KeyOutputFilePath:  "",
		KeyOutputRender:    "",
		KeyCurrentInstance: nil,
		KeyModes:           modes,
	}
	maps.Copy(ctx, extra)
	maps.Copy(ctx, g.opts.Variables)
	maps.Copy(ctx, vars)
	return ctx
}
