// Package batch turns CLI selections and declarative rule documents into
// generation jobs and runs them against one loaded schema.
package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/pbtmpl/internal/rule"
)

// Configure is the document-wide section.
type Configure struct {
	Encoding        string `mapstructure:"encoding"`
	OutputDirectory string `mapstructure:"output_directory"`
	Overwrite       *bool  `mapstructure:"overwrite"`
	// Paths are extra template search directories.
	Paths           []string       `mapstructure:"paths"`
	Protoc          string         `mapstructure:"protoc"`
	ProtocFlags     []string       `mapstructure:"protoc_flags"`
	ProtocIncludes  []string       `mapstructure:"protoc_includes"`
	ProtoFiles      []string       `mapstructure:"proto_files"`
	PbFile          string         `mapstructure:"pb_file"`
	OutputPbFile    string         `mapstructure:"output_pb_file"`
	CustomVariables map[string]any `mapstructure:"custom_variables"`
}

// Common holds the settings every rule kind accepts.
type Common struct {
	OutputDirectory string         `mapstructure:"output_directory"`
	Overwrite       *bool          `mapstructure:"overwrite"`
	CustomVariables map[string]any `mapstructure:"custom_variables"`
	// Ignore lists fully-qualified names excluded from selection.
	Ignore []string `mapstructure:"ignore"`
}

type ServiceRule struct {
	Name            string      `mapstructure:"name"`
	RpcInclude      string      `mapstructure:"rpc_include"`
	RpcExclude      string      `mapstructure:"rpc_exclude"`
	ServiceTemplate []rule.Rule `mapstructure:"service_template"`
	RpcTemplate     []rule.Rule `mapstructure:"rpc_template"`
	Common          `mapstructure:",squash"`
}

type MessageRule struct {
	Name            string      `mapstructure:"name"`
	FieldInclude    string      `mapstructure:"field_include"`
	FieldExclude    string      `mapstructure:"field_exclude"`
	MessageTemplate []rule.Rule `mapstructure:"message_template"`
	FieldTemplate   []rule.Rule `mapstructure:"field_template"`
	Common          `mapstructure:",squash"`
}

type EnumRule struct {
	Name              string      `mapstructure:"name"`
	EnumValueInclude  string      `mapstructure:"enumvalue_include"`
	EnumValueExclude  string      `mapstructure:"enumvalue_exclude"`
	EnumTemplate      []rule.Rule `mapstructure:"enum_template"`
	EnumValueTemplate []rule.Rule `mapstructure:"enumvalue_template"`
	Common            `mapstructure:",squash"`
}

type GlobalRule struct {
	GlobalTemplate []rule.Rule `mapstructure:"global_template"`
	Common         `mapstructure:",squash"`
}

// RuleEntry carries exactly one of its kinds.
type RuleEntry struct {
	Service *ServiceRule `mapstructure:"service"`
	Message *MessageRule `mapstructure:"message"`
	Enum    *EnumRule    `mapstructure:"enum"`
	Global  *GlobalRule  `mapstructure:"global"`
}

type Document struct {
	Configure Configure   `mapstructure:"configure"`
	Rules     []RuleEntry `mapstructure:"rules"`
	// Dir is the directory relative paths in the document resolve against.
	Dir string `mapstructure:"-"`
}

// LoadDocument reads a YAML, TOML or JSON document chosen by extension.
// Relative paths inside it are resolved against its directory.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch document: %w", err)
	}
	raw, err := decodeRaw(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	doc, err := DecodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	doc.resolvePaths(filepath.Dir(abs))
	return doc, nil
}

func decodeRaw(ext string, data []byte) (map[string]any, error) {
	raw := map[string]any{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case ".toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, err
		}
		raw = tree.ToMap()
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, ext)
	}
	return raw, nil
}

// DecodeDocument maps a generic document tree onto Document. Template rules
// may be written as "IN[:OUT]" strings or {input, output, overwrite} tables,
// and single values are accepted where lists are expected.
func DecodeDocument(raw map[string]any) (*Document, error) {
	doc := &Document{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       ruleHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           doc,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	for i, entry := range doc.Rules {
		if entry.kinds() != 1 {
			return nil, fmt.Errorf("rules[%d]: expected exactly one of service, message, enum or global", i)
		}
	}
	return doc, nil
}

var ruleType = reflect.TypeOf(rule.Rule{})

func ruleHook(from, to reflect.Type, data any) (any, error) {
	if to != ruleType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return rule.Parse(v), nil
	case map[string]any:
		var r rule.Rule
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           &r,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(v); err != nil {
			return nil, err
		}
		if r.Input == "" {
			return nil, fmt.Errorf("template rule without input: %v", v)
		}
		return rule.Resolve(r), nil
	}
	return data, nil
}

func (e RuleEntry) kinds() int {
	n := 0
	for _, set := range []bool{e.Service != nil, e.Message != nil, e.Enum != nil, e.Global != nil} {
		if set {
			n++
		}
	}
	return n
}

func resolveIn(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func resolveAll(dir string, ps []string) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = resolveIn(dir, p)
	}
	return out
}

func (d *Document) resolvePaths(dir string) {
	d.Dir = dir
	c := &d.Configure
	c.OutputDirectory = resolveIn(dir, c.OutputDirectory)
	c.Paths = resolveAll(dir, c.Paths)
	c.ProtocIncludes = resolveAll(dir, c.ProtocIncludes)
	c.ProtoFiles = resolveAll(dir, c.ProtoFiles)
	c.PbFile = resolveIn(dir, c.PbFile)
	c.OutputPbFile = resolveIn(dir, c.OutputPbFile)
	for _, e := range d.Rules {
		switch {
		case e.Service != nil:
			e.Service.OutputDirectory = resolveIn(dir, e.Service.OutputDirectory)
		case e.Message != nil:
			e.Message.OutputDirectory = resolveIn(dir, e.Message.OutputDirectory)
		case e.Enum != nil:
			e.Enum.OutputDirectory = resolveIn(dir, e.Enum.OutputDirectory)
		case e.Global != nil:
			e.Global.OutputDirectory = resolveIn(dir, e.Global.OutputDirectory)
		}
	}
}
