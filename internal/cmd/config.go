package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-openapi/inflect"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/pbtmpl/internal/batch"
	"github.com/Alia5/pbtmpl/internal/configpaths"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds either flag defaults for the generate command or a
// starter batch document.
type ConfigInit struct {
	Kind   string `arg:"" name:"kind" help:"What to scaffold: generate (flag defaults) or batch (rules document)" enum:"generate,batch"`
	Format string `help:"Output format" enum:"json,yaml,toml" default:"yaml"`
	Output string `help:"Destination file path (defaults to the current directory)"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

// Run generates the template; flag defaults are derived by reflection over
// the command structs and their tags.
func (c *ConfigInit) Run() error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	var root map[string]any
	switch c.Kind {
	case "generate":
		root = buildMapFromStruct(reflect.TypeOf(Generate{}), keySeparator(format))
	case "batch":
		root = batch.Sample()
	default:
		return errors.New("unknown kind; expected 'generate' or 'batch'")
	}

	dest := c.Output
	if dest == "" {
		dest = c.Kind + "." + configpaths.Extension(format)
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	data, err := marshal(format, root)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func marshal(format string, root map[string]any) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(root, "", "  ")
	case "yaml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

// keySeparator is the word separator the kong resolver for format expects
// in flag keys: the JSON resolver looks up snake_case, the YAML and TOML
// loaders the dashed flag name.
func keySeparator(format string) string {
	if format == "json" {
		return "_"
	}
	return "-"
}

func configKey(f reflect.StructField, sep string) string {
	name := f.Tag.Get("name")
	if name == "" {
		name = inflect.Underscore(f.Name)
	}
	return strings.NewReplacer("-", sep, "_", sep).Replace(name)
}

func buildMapFromStruct(t reflect.Type, sep string) map[string]any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Tag.Get("kong") == "-" {
			continue
		}
		if _, ok := f.Tag.Lookup("cmd"); ok {
			continue
		}

		if _, ok := f.Tag.Lookup("embed"); ok {
			prefix := f.Tag.Get("prefix")
			name := strings.TrimSuffix(prefix, ".")
			sub := buildMapFromStruct(f.Type, sep)
			if name != "" {
				out[name] = sub
			} else {
				for k, v := range sub {
					out[k] = v
				}
			}
			continue
		}

		val := defaultValueForField(f.Type, f.Tag.Get("default"), sep)
		if val != nil {
			out[configKey(f, sep)] = val
		}
	}
	return out
}

func defaultValueForField(t reflect.Type, def, sep string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return def // may be empty
	case reflect.Bool:
		if def == "" {
			return false
		}
		b, err := strconv.ParseBool(def)
		if err != nil {
			return false
		}
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if def == "" {
			return 0
		}
		n, err := strconv.ParseInt(def, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return []string{}
		}
		return nil
	case reflect.Struct:
		return buildMapFromStruct(t, sep)
	default:
		return nil
	}
}
