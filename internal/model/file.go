package model

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

type File struct {
	node
	fd protoreflect.FileDescriptor
}

func newFile(db *Database, fd protoreflect.FileDescriptor) *File {
	f := &File{fd: fd}
	f.init(db, fd)
	// A file is addressed by its path.
	f.name = fd.Path()
	f.fullName = fd.Path()
	return f
}

func (f *File) Path() string { return f.fd.Path() }

func (f *File) Syntax() string { return f.fd.Syntax().String() }

// Dependencies lists the imported file paths.
func (f *File) Dependencies() []string {
	imports := f.fd.Imports()
	out := make([]string, 0, imports.Len())
	for i := 0; i < imports.Len(); i++ {
		out = append(out, imports.Get(i).Path())
	}
	return out
}

// Messages lists the top-level messages in declaration order.
func (f *File) Messages() []*Message {
	return messagesOf(f.db, f.fd.Messages())
}

func (f *File) Enums() []*Enum {
	return enumsOf(f.db, f.fd.Enums())
}

func (f *File) Services() []*Service {
	svcs := f.fd.Services()
	out := make([]*Service, 0, svcs.Len())
	for i := 0; i < svcs.Len(); i++ {
		if s := f.db.GetService(string(svcs.Get(i).FullName())); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func messagesOf(db *Database, mds protoreflect.MessageDescriptors) []*Message {
	out := make([]*Message, 0, mds.Len())
	for i := 0; i < mds.Len(); i++ {
		md := mds.Get(i)
		if md.IsMapEntry() {
			continue
		}
		if m := db.GetMessage(string(md.FullName())); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func enumsOf(db *Database, eds protoreflect.EnumDescriptors) []*Enum {
	out := make([]*Enum, 0, eds.Len())
	for i := 0; i < eds.Len(); i++ {
		if e := db.GetEnum(string(eds.Get(i).FullName())); e != nil {
			out = append(out, e)
		}
	}
	return out
}
