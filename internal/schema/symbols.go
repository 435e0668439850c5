package schema

import (
	"slices"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// SymbolIndex maps fully-qualified names to the undecorated descriptor
// records they were declared with.
type SymbolIndex struct {
	symbols map[string]proto.Message
}

func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{symbols: make(map[string]proto.Message)}
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

// AddFile indexes every enum, enum value, extension, message, field, oneof,
// service and method declared in fd.
func (s *SymbolIndex) AddFile(fd *descriptorpb.FileDescriptorProto) {
	pkg := fd.GetPackage()
	for _, e := range fd.GetEnumType() {
		s.addEnum(pkg, e)
	}
	for _, x := range fd.GetExtension() {
		s.symbols[qualify(pkg, x.GetName())] = x
	}
	for _, m := range fd.GetMessageType() {
		s.addMessage(pkg, m)
	}
	for _, svc := range fd.GetService() {
		name := qualify(pkg, svc.GetName())
		s.symbols[name] = svc
		for _, m := range svc.GetMethod() {
			s.symbols[qualify(name, m.GetName())] = m
		}
	}
}

func (s *SymbolIndex) addEnum(scope string, e *descriptorpb.EnumDescriptorProto) {
	name := qualify(scope, e.GetName())
	s.symbols[name] = e
	for _, v := range e.GetValue() {
		s.symbols[qualify(name, v.GetName())] = v
	}
}

func (s *SymbolIndex) addMessage(scope string, m *descriptorpb.DescriptorProto) {
	name := qualify(scope, m.GetName())
	s.symbols[name] = m
	for _, e := range m.GetEnumType() {
		s.addEnum(name, e)
	}
	for _, nested := range m.GetNestedType() {
		s.addMessage(name, nested)
	}
	for _, x := range m.GetExtension() {
		s.symbols[qualify(name, x.GetName())] = x
	}
	for _, f := range m.GetField() {
		s.symbols[qualify(name, f.GetName())] = f
	}
	for _, o := range m.GetOneofDecl() {
		s.symbols[qualify(name, o.GetName())] = o
	}
}

// Lookup returns the raw record registered under a fully-qualified name.
func (s *SymbolIndex) Lookup(name string) (proto.Message, bool) {
	m, ok := s.symbols[name]
	return m, ok
}

// Method returns the raw method record for a fully-qualified rpc name.
func (s *SymbolIndex) Method(name string) (*descriptorpb.MethodDescriptorProto, bool) {
	m, ok := s.symbols[name].(*descriptorpb.MethodDescriptorProto)
	return m, ok
}

func (s *SymbolIndex) Len() int {
	return len(s.symbols)
}

// Names lists every indexed name in sorted order.
func (s *SymbolIndex) Names() []string {
	names := make([]string, 0, len(s.symbols))
	for name := range s.symbols {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
