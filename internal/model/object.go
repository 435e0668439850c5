// Package model wraps the descriptors of a loaded schema in lazily built,
// cached nodes that templates can walk.
package model

import (
	"strings"
	"sync"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/Alia5/pbtmpl/internal/naming"
)

// Object is the capability set shared by every node.
type Object interface {
	Name() string
	FullName() string
	Package() string
	// Extension returns the custom option called name (short or
	// fully-qualified) or def when the option is not set.
	Extension(name string, def any) any
	IsValid(ignore IgnoreSet) bool
}

// IgnoreSet holds fully-qualified names excluded from generation.
type IgnoreSet map[string]struct{}

func NewIgnoreSet(names ...string) IgnoreSet {
	s := make(IgnoreSet, len(names))
	s.Add(names...)
	return s
}

func (s IgnoreSet) Add(names ...string) {
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			s[n] = struct{}{}
		}
	}
}

func (s IgnoreSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// node carries what every wrapper has in common.
type node struct {
	db       *Database
	desc     protoreflect.Descriptor
	name     string
	fullName string
	pkg      string

	namesOnce sync.Once
	lower     string
	upper     string

	extOnce sync.Once
	exts    map[string]any
}

func (n *node) init(db *Database, desc protoreflect.Descriptor) {
	n.db = db
	n.desc = desc
	n.name = string(desc.Name())
	n.fullName = string(desc.FullName())
	n.pkg = string(desc.ParentFile().Package())
}

func (n *node) Name() string     { return n.name }
func (n *node) FullName() string { return n.fullName }
func (n *node) Package() string  { return n.pkg }

// Descriptor exposes the underlying descriptor from the extended pool.
func (n *node) Descriptor() protoreflect.Descriptor { return n.desc }

func (n *node) IsValid(IgnoreSet) bool { return true }

func (n *node) Extension(name string, def any) any {
	if v, ok := n.Extensions()[name]; ok {
		return v
	}
	return def
}

// Extensions lists every custom option set on the node, keyed by both the
// short and the fully-qualified option name.
func (n *node) Extensions() map[string]any {
	n.extOnce.Do(func() {
		n.exts = collectExtensions(n.desc.Options())
	})
	return n.exts
}

func (n *node) names() {
	n.namesOnce.Do(func() {
		n.lower = naming.LowerRule(n.name)
		n.upper = naming.UpperRule(n.name)
	})
}

func (n *node) NameLowerRule() string {
	n.names()
	return n.lower
}

func (n *node) NameUpperRule() string {
	n.names()
	return n.upper
}

// IdentifyName converts an arbitrary name; sep defaults to ".".
func (n *node) IdentifyName(name string, mode naming.Mode, sep ...string) string {
	s := naming.DefaultSeparator
	if len(sep) > 0 {
		s = sep[0]
	}
	return naming.Convert(name, mode, s)
}

func (n *node) IdentifyLowerRule(name string) string { return naming.LowerRule(name) }
func (n *node) IdentifyUpperRule(name string) string { return naming.UpperRule(name) }

func (n *node) CppClassName() string { return CppClassName(n.fullName) }

func (n *node) CppNamespaceBegin(fullName string, indent ...string) []string {
	return CppNamespaceBegin(fullName, indent...)
}

func (n *node) CppNamespaceEnd(fullName string, indent ...string) []string {
	return CppNamespaceEnd(fullName, indent...)
}
