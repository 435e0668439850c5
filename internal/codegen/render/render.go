// Package render executes generation templates with text/template.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"text/template"
)

// ErrTemplateNotFound is returned when a template path resolves to no file.
var ErrTemplateNotFound = errors.New("template not found")

// Undefined context keys fail the render instead of printing "<no value>".
const missingKey = "missingkey=error"

// Engine renders template files and inline path templates.
type Engine interface {
	// Resolve returns the absolute path of a template file.
	Resolve(path string) (string, error)
	RenderFile(path string, data any) (string, error)
	// RenderString renders text whose actions use ${ } delimiters.
	RenderString(text string, data any) (string, error)
}

// TextEngine is the text/template Engine. Parsed templates are cached for
// the lifetime of the engine.
type TextEngine struct {
	searchPaths []string
	funcs       template.FuncMap

	mu      sync.Mutex
	files   map[string]*template.Template
	strings map[string]*template.Template
}

// New returns an engine that looks up relative template paths in the working
// directory first and then in searchPaths. extra funcs override the built-in
// ones.
func New(searchPaths []string, extra template.FuncMap) *TextEngine {
	funcs := tplFuncs()
	for k, v := range extra {
		funcs[k] = v
	}
	return &TextEngine{
		searchPaths: searchPaths,
		funcs:       funcs,
		files:       make(map[string]*template.Template),
		strings:     make(map[string]*template.Template),
	}
}

func (e *TextEngine) Resolve(path string) (string, error) {
	return e.resolveFrom("", path)
}

func (e *TextEngine) resolveFrom(dir, path string) (string, error) {
	var candidates []string
	if filepath.IsAbs(path) {
		candidates = append(candidates, path)
	} else {
		if dir != "" {
			candidates = append(candidates, filepath.Join(dir, path))
		}
		candidates = append(candidates, path)
		for _, sp := range e.searchPaths {
			candidates = append(candidates, filepath.Join(sp, path))
		}
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return filepath.Abs(c)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
}

func (e *TextEngine) RenderFile(path string, data any) (string, error) {
	abs, err := e.Resolve(path)
	if err != nil {
		return "", err
	}
	return e.execFile(abs, data)
}

func (e *TextEngine) execFile(abs string, data any) (string, error) {
	tmpl, err := e.parseFile(abs)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", abs, err)
	}
	return buf.String(), nil
}

func (e *TextEngine) parseFile(abs string) (*template.Template, error) {
	e.mu.Lock()
	tmpl, ok := e.files[abs]
	e.mu.Unlock()
	if ok {
		return tmpl, nil
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", abs, err)
	}
	tmpl, err = template.New(filepath.Base(abs)).
		Option(missingKey).
		Funcs(e.funcs).
		Funcs(template.FuncMap{"include": e.includeFrom(filepath.Dir(abs))}).
		Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", abs, err)
	}

	e.mu.Lock()
	e.files[abs] = tmpl
	e.mu.Unlock()
	return tmpl, nil
}

// includeFrom renders another template file, looked up next to the
// including template before the search paths.
func (e *TextEngine) includeFrom(dir string) func(string, any) (string, error) {
	return func(name string, data any) (string, error) {
		abs, err := e.resolveFrom(dir, name)
		if err != nil {
			return "", err
		}
		return e.execFile(abs, data)
	}
}

func (e *TextEngine) RenderString(text string, data any) (string, error) {
	e.mu.Lock()
	tmpl, ok := e.strings[text]
	e.mu.Unlock()
	if !ok {
		var err error
		tmpl, err = template.New("path").
			Delims("${", "}").
			Option(missingKey).
			Funcs(e.funcs).
			Funcs(template.FuncMap{"include": e.includeFrom("")}).
			Parse(text)
		if err != nil {
			return "", fmt.Errorf("parse %q: %w", text, err)
		}
		e.mu.Lock()
		e.strings[text] = tmpl
		e.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %q: %w", text, err)
	}
	return buf.String(), nil
}
