package model

import (
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/Alia5/pbtmpl/internal/schema"
)

// Database resolves nodes from a loaded schema. Nodes are built on first
// lookup and cached until the next Load or Reset.
//
// Lookups return nil when the name is unknown so templates can test the
// result directly.
type Database struct {
	mu       sync.Mutex
	set      *schema.Set
	files    map[string]*File
	messages map[string]*Message
	enums    map[string]*Enum
	services map[string]*Service
}

func NewDatabase() *Database {
	db := &Database{}
	db.clear()
	return db
}

// Open loads the descriptor set at path into a new Database.
func Open(path string) (*Database, error) {
	db := NewDatabase()
	if err := db.Load(path); err != nil {
		return nil, err
	}
	return db, nil
}

// Load replaces the schema with the descriptor set at path. On failure the
// previous schema and caches are kept.
func (db *Database) Load(path string) error {
	set, err := schema.Load(path)
	if err != nil {
		return err
	}
	db.Reset(set)
	return nil
}

// Reset replaces the schema and drops every cached node.
func (db *Database) Reset(set *schema.Set) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.set = set
	db.clear()
}

func (db *Database) clear() {
	db.files = make(map[string]*File)
	db.messages = make(map[string]*Message)
	db.enums = make(map[string]*Enum)
	db.services = make(map[string]*Service)
}

func (db *Database) Set() *schema.Set {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.set
}

// RawFiles returns the input files as decoded without custom options.
func (db *Database) RawFiles() []*descriptorpb.FileDescriptorProto {
	if set := db.Set(); set != nil {
		return set.RawFiles
	}
	return nil
}

// RawSymbol returns the undecorated descriptor record for a full name.
func (db *Database) RawSymbol(fullName string) proto.Message {
	set := db.Set()
	if set == nil || set.Symbols == nil {
		return nil
	}
	m, _ := set.Symbols.Lookup(fullName)
	return m
}

// Files returns the input files in their original order.
func (db *Database) Files() []*File {
	set := db.Set()
	if set == nil {
		return nil
	}
	out := make([]*File, 0, len(set.Files))
	for _, f := range set.Files {
		if file := db.GetFile(f.GetName()); file != nil {
			out = append(out, file)
		}
	}
	return out
}

func (db *Database) GetFile(name string) *File {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.fileLocked(name)
}

func (db *Database) fileLocked(name string) *File {
	if name == "" || db.set == nil {
		return nil
	}
	if f, ok := db.files[name]; ok {
		return f
	}
	fd, err := db.set.Extended.FindFileByPath(name)
	if err != nil {
		return nil
	}
	f := newFile(db, fd)
	db.files[name] = f
	return f
}

func (db *Database) findLocked(fullName string) protoreflect.Descriptor {
	if fullName == "" || db.set == nil {
		return nil
	}
	d, err := db.set.Extended.FindDescriptorByName(protoreflect.FullName(fullName))
	if err != nil || d.IsPlaceholder() {
		return nil
	}
	return d
}

func (db *Database) GetMessage(fullName string) *Message {
	db.mu.Lock()
	defer db.mu.Unlock()
	if m, ok := db.messages[fullName]; ok {
		return m
	}
	md, ok := db.findLocked(fullName).(protoreflect.MessageDescriptor)
	if !ok {
		return nil
	}
	file := db.fileLocked(md.ParentFile().Path())
	if file == nil {
		return nil
	}
	m := newMessage(db, file, md)
	db.messages[fullName] = m
	return m
}

func (db *Database) GetEnum(fullName string) *Enum {
	db.mu.Lock()
	defer db.mu.Unlock()
	if e, ok := db.enums[fullName]; ok {
		return e
	}
	ed, ok := db.findLocked(fullName).(protoreflect.EnumDescriptor)
	if !ok {
		return nil
	}
	file := db.fileLocked(ed.ParentFile().Path())
	if file == nil {
		return nil
	}
	e := newEnum(db, file, ed)
	db.enums[fullName] = e
	return e
}

func (db *Database) GetService(fullName string) *Service {
	db.mu.Lock()
	defer db.mu.Unlock()
	if s, ok := db.services[fullName]; ok {
		return s
	}
	sd, ok := db.findLocked(fullName).(protoreflect.ServiceDescriptor)
	if !ok {
		return nil
	}
	file := db.fileLocked(sd.ParentFile().Path())
	if file == nil {
		return nil
	}
	s := newService(db, file, sd)
	db.services[fullName] = s
	return s
}

// Messages lists every message of the input files, nested ones after their
// parent.
func (db *Database) Messages() []*Message {
	var out []*Message
	for _, f := range db.Files() {
		for _, m := range f.Messages() {
			out = append(out, m)
			out = append(out, m.AllNestedMessages()...)
		}
	}
	return out
}

// Enums lists every enum of the input files including nested ones.
func (db *Database) Enums() []*Enum {
	var out []*Enum
	for _, f := range db.Files() {
		out = append(out, f.Enums()...)
	}
	for _, m := range db.Messages() {
		out = append(out, m.NestedEnums()...)
	}
	return out
}

func (db *Database) Services() []*Service {
	var out []*Service
	for _, f := range db.Files() {
		out = append(out, f.Services()...)
	}
	return out
}
