package model

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

type Message struct {
	node
	md   protoreflect.MessageDescriptor
	file *File

	fields         []*Field
	fieldsByName   map[string]*Field
	fieldsByNumber map[int32]*Field
	oneofs         []*Oneof
	oneofsByName   map[string]*Oneof
}

func newMessage(db *Database, file *File, md protoreflect.MessageDescriptor) *Message {
	m := &Message{
		md:             md,
		file:           file,
		fieldsByName:   make(map[string]*Field),
		fieldsByNumber: make(map[int32]*Field),
		oneofsByName:   make(map[string]*Oneof),
	}
	m.init(db, md)

	fds := md.Fields()
	for i := 0; i < fds.Len(); i++ {
		fd := fds.Get(i)
		f := &Field{fd: fd, container: m}
		f.init(db, fd)
		m.fields = append(m.fields, f)
		m.fieldsByName[f.name] = f
		m.fieldsByNumber[int32(fd.Number())] = f
	}

	ods := md.Oneofs()
	for i := 0; i < ods.Len(); i++ {
		od := ods.Get(i)
		members := make([]*Field, 0, od.Fields().Len())
		for j := 0; j < od.Fields().Len(); j++ {
			members = append(members, m.fieldsByNumber[int32(od.Fields().Get(j).Number())])
		}
		o := newOneof(db, m, od, members)
		m.oneofs = append(m.oneofs, o)
		m.oneofsByName[o.name] = o
	}
	return m
}

func (m *Message) File() *File { return m.file }

// Fields lists the fields in declaration order.
func (m *Message) Fields() []*Field { return m.fields }

func (m *Message) FieldByName(name string) *Field { return m.fieldsByName[name] }

func (m *Message) FieldByNumber(number int32) *Field { return m.fieldsByNumber[number] }

func (m *Message) Oneofs() []*Oneof { return m.oneofs }

func (m *Message) OneofByName(name string) *Oneof { return m.oneofsByName[name] }

// Parent returns the enclosing message of a nested message.
func (m *Message) Parent() *Message {
	if parent, ok := m.md.Parent().(protoreflect.MessageDescriptor); ok {
		return m.db.GetMessage(string(parent.FullName()))
	}
	return nil
}

// NestedMessages lists directly nested messages, skipping map entries.
func (m *Message) NestedMessages() []*Message {
	return messagesOf(m.db, m.md.Messages())
}

// AllNestedMessages lists nested messages at every depth, parents first.
func (m *Message) AllNestedMessages() []*Message {
	var out []*Message
	for _, nested := range m.NestedMessages() {
		out = append(out, nested)
		out = append(out, nested.AllNestedMessages()...)
	}
	return out
}

func (m *Message) NestedEnums() []*Enum {
	return enumsOf(m.db, m.md.Enums())
}

func (m *Message) IsMapEntry() bool { return m.md.IsMapEntry() }

type Field struct {
	node
	fd        protoreflect.FieldDescriptor
	container *Message
}

func (f *Field) Container() *Message { return f.container }

func (f *Field) File() *File { return f.container.file }

func (f *Field) Number() int32 { return int32(f.fd.Number()) }

func (f *Field) JSONName() string { return f.fd.JSONName() }

// Kind is the protobuf kind name, e.g. "string", "message" or "enum".
func (f *Field) Kind() string { return f.fd.Kind().String() }

// TypeName is the full name of a message or enum typed field and the kind
// name for scalars.
func (f *Field) TypeName() string {
	switch {
	case f.fd.Message() != nil:
		return string(f.fd.Message().FullName())
	case f.fd.Enum() != nil:
		return string(f.fd.Enum().FullName())
	}
	return f.Kind()
}

func (f *Field) IsRepeated() bool { return f.fd.IsList() }

func (f *Field) IsMap() bool { return f.fd.IsMap() }

func (f *Field) HasPresence() bool { return f.fd.HasPresence() }

// Message resolves the field's message type, nil for other kinds.
func (f *Field) Message() *Message {
	if md := f.fd.Message(); md != nil {
		return f.db.GetMessage(string(md.FullName()))
	}
	return nil
}

// Enum resolves the field's enum type, nil for other kinds.
func (f *Field) Enum() *Enum {
	if ed := f.fd.Enum(); ed != nil {
		return f.db.GetEnum(string(ed.FullName()))
	}
	return nil
}

// Oneof returns the oneof the field belongs to, if any.
func (f *Field) Oneof() *Oneof {
	if od := f.fd.ContainingOneof(); od != nil {
		return f.container.oneofsByName[string(od.Name())]
	}
	return nil
}

func (f *Field) IsValid(ignore IgnoreSet) bool {
	return !ignore.Has(f.fullName)
}

type Oneof struct {
	node
	container      *Message
	fields         []*Field
	fieldsByName   map[string]*Field
	fieldsByNumber map[int32]*Field
}

func newOneof(db *Database, container *Message, od protoreflect.OneofDescriptor, members []*Field) *Oneof {
	o := &Oneof{
		container:      container,
		fields:         members,
		fieldsByName:   make(map[string]*Field, len(members)),
		fieldsByNumber: make(map[int32]*Field, len(members)),
	}
	o.init(db, od)
	o.pkg = container.pkg
	for _, f := range members {
		o.fieldsByName[f.name] = f
		o.fieldsByNumber[f.Number()] = f
	}
	return o
}

func (o *Oneof) Container() *Message { return o.container }

func (o *Oneof) Fields() []*Field { return o.fields }

func (o *Oneof) FieldByName(name string) *Field { return o.fieldsByName[name] }

func (o *Oneof) FieldByNumber(number int32) *Field { return o.fieldsByNumber[number] }
