// Package rule parses generation rules: which template to render and where
// to write the result.
package rule

import (
	"path/filepath"
	"strings"
)

// TemplateSuffixes are stripped from the template file name when a rule does
// not name its output explicitly.
var TemplateSuffixes = []string{".mako", ".gotmpl", ".tmpl", ".tpl", ".template"}

// Rule is one (input template, output path rule, overwrite override) triple.
type Rule struct {
	// Input is the template file path.
	Input string `mapstructure:"input" json:"input" yaml:"input"`
	// Output is either a literal relative path or, when Dynamic, a template
	// rendered against the current context.
	Output string `mapstructure:"output" json:"output,omitempty" yaml:"output,omitempty"`
	// Overwrite overrides every other overwrite policy when set.
	Overwrite *bool `mapstructure:"overwrite" json:"overwrite,omitempty" yaml:"overwrite,omitempty"`
	// Dynamic reports that Output contains '$' and must be rendered.
	Dynamic bool `mapstructure:"-" json:"-" yaml:"-"`
}

// Parse reads the compact "INPUT[:OUTPUT]" form.
func Parse(s string) Rule {
	idx := separatorIndex(s)
	if idx <= 0 {
		return Resolve(Rule{Input: s})
	}
	return Resolve(Rule{Input: s[:idx], Output: s[idx+1:]})
}

// Resolve fills the defaults of a structured rule: the output name falls back
// to the input's base name without its template suffix, and Dynamic is
// derived from the output text.
func Resolve(r Rule) Rule {
	if r.Output == "" {
		r.Output = DefaultOutput(r.Input)
	}
	r.Dynamic = strings.Contains(r.Output, "$")
	return r
}

// DefaultOutput is the base name of input with a recognized template suffix
// removed.
func DefaultOutput(input string) string {
	for _, suffix := range TemplateSuffixes {
		if strings.HasSuffix(input, suffix) && len(input) > len(suffix) {
			input = input[:len(input)-len(suffix)]
			break
		}
	}
	return filepath.Base(input)
}

// String renders the rule back in compact form.
func (r Rule) String() string {
	if r.Output == "" {
		return r.Input
	}
	return r.Input + ":" + r.Output
}

// WithOverwrite returns a copy of r carrying an explicit overwrite override.
func (r Rule) WithOverwrite(v bool) Rule {
	r.Overwrite = &v
	return r
}

// separatorIndex finds the ':' that splits input from output. A drive letter
// colon ("C:\tmpl" or "C:/tmpl") belongs to the input path.
func separatorIndex(s string) int {
	idx := strings.IndexByte(s, ':')
	if idx == 1 && isDriveLetter(s[0]) && len(s) > 2 && (s[2] == '\\' || s[2] == '/') {
		next := strings.IndexByte(s[2:], ':')
		if next < 0 {
			return -1
		}
		return next + 2
	}
	return idx
}

func isDriveLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// ParseAll parses every compact rule in order.
func ParseAll(specs []string) []Rule {
	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		if strings.TrimSpace(s) == "" {
			continue
		}
		rules = append(rules, Parse(s))
	}
	return rules
}
