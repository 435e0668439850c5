package render

import (
	"reflect"
	"strings"
	"text/template"

	"github.com/go-openapi/inflect"

	"github.com/Alia5/pbtmpl/internal/model"
	"github.com/Alia5/pbtmpl/internal/naming"
)

func tplFuncs() template.FuncMap {
	return template.FuncMap{
		"lower_rule": naming.LowerRule,
		"upper_rule": naming.UpperRule,
		"identify": func(name, mode string, sep ...string) string {
			s := naming.DefaultSeparator
			if len(sep) > 0 {
				s = sep[0]
			}
			return naming.Convert(name, naming.ParseMode(mode), s)
		},
		"pascal":              naming.ToPascalCase,
		"camel":               naming.ToCamelCase,
		"pluralize":           inflect.Pluralize,
		"singularize":         inflect.Singularize,
		"underscore":          inflect.Underscore,
		"upper":               strings.ToUpper,
		"lower":               strings.ToLower,
		"trim":                strings.TrimSpace,
		"replace":             func(from, to, s string) string { return strings.ReplaceAll(s, from, to) },
		"join":                func(sep string, elems []string) string { return strings.Join(elems, sep) },
		"default":             defaultValue,
		"cpp_class":           model.CppClassName,
		"cpp_namespace_begin": model.CppNamespaceBegin,
		"cpp_namespace_end":   model.CppNamespaceEnd,
	}
}

// defaultValue returns def when v is nil or the zero value of its type.
func defaultValue(def, v any) any {
	if v == nil {
		return def
	}
	if rv := reflect.ValueOf(v); rv.IsZero() {
		return def
	}
	return v
}
