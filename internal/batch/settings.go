package batch

import (
	"maps"
	"strings"
)

// Settings are the resolved run-wide options. Command-line values win over
// the document's configure section.
type Settings struct {
	OutputDir   string
	Encoding    string
	NoOverwrite bool
	SearchPaths []string

	ProtocBinary   string
	ProtoFiles     []string
	ProtocIncludes []string
	ProtocFlags    []string
	PbFile         string
	OutputPbFile   string
	KeepPbFile     bool

	ProjectDir string
	DryRun     bool
	Variables  map[string]any
}

// Merge layers cli over the document's configure section. List settings
// that accumulate (search paths, includes, flags) keep document entries
// first.
func Merge(cli Settings, doc *Document) Settings {
	if doc == nil {
		return cli
	}
	c := doc.Configure
	out := cli
	out.OutputDir = firstNonEmpty(cli.OutputDir, c.OutputDirectory)
	out.Encoding = firstNonEmpty(cli.Encoding, c.Encoding)
	out.ProtocBinary = firstNonEmpty(cli.ProtocBinary, c.Protoc)
	out.PbFile = firstNonEmpty(cli.PbFile, c.PbFile)
	out.OutputPbFile = firstNonEmpty(cli.OutputPbFile, c.OutputPbFile)
	if len(out.ProtoFiles) == 0 {
		out.ProtoFiles = c.ProtoFiles
	}
	out.SearchPaths = concat(append([]string{doc.Dir}, c.Paths...), cli.SearchPaths)
	out.ProtocIncludes = concat(c.ProtocIncludes, cli.ProtocIncludes)
	out.ProtocFlags = concat(c.ProtocFlags, cli.ProtocFlags)
	if !cli.NoOverwrite && c.Overwrite != nil {
		out.NoOverwrite = !*c.Overwrite
	}

	vars := maps.Clone(c.CustomVariables)
	if vars == nil {
		vars = make(map[string]any)
	}
	maps.Copy(vars, cli.Variables)
	out.Variables = vars
	return out
}

// ParseAssignments reads repeated KEY=VALUE settings. Entries without '='
// set KEY to an empty string.
func ParseAssignments(pairs []string) map[string]any {
	vars := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, _ := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		vars[k] = strings.TrimSpace(v)
	}
	return vars
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
