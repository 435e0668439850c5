package model

import (
	"sync"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

type Service struct {
	node
	sd   protoreflect.ServiceDescriptor
	file *File

	rpcs       []*Rpc
	rpcsByName map[string]*Rpc
}

func newService(db *Database, file *File, sd protoreflect.ServiceDescriptor) *Service {
	s := &Service{sd: sd, file: file, rpcsByName: make(map[string]*Rpc)}
	s.init(db, sd)

	mds := sd.Methods()
	for i := 0; i < mds.Len(); i++ {
		md := mds.Get(i)
		r := &Rpc{md: md, service: s}
		r.init(db, md)
		s.rpcs = append(s.rpcs, r)
		s.rpcsByName[r.name] = r
	}
	return s
}

func (s *Service) File() *File { return s.file }

// Rpcs lists the methods in declaration order.
func (s *Service) Rpcs() []*Rpc { return s.rpcs }

func (s *Service) Rpc(name string) *Rpc { return s.rpcsByName[name] }

type Rpc struct {
	node
	md      protoreflect.MethodDescriptor
	service *Service

	requestOnce  sync.Once
	request      *Message
	responseOnce sync.Once
	response     *Message
}

func (r *Rpc) Service() *Service { return r.service }

func (r *Rpc) RequestName() string { return string(r.md.Input().FullName()) }

func (r *Rpc) ResponseName() string { return string(r.md.Output().FullName()) }

// Request resolves the input message on first use.
func (r *Rpc) Request() *Message {
	r.requestOnce.Do(func() {
		r.request = r.db.GetMessage(r.RequestName())
	})
	return r.request
}

// Response resolves the output message on first use.
func (r *Rpc) Response() *Message {
	r.responseOnce.Do(func() {
		r.response = r.db.GetMessage(r.ResponseName())
	})
	return r.response
}

func (r *Rpc) RequestExtension(name string, def any) any {
	if m := r.Request(); m != nil {
		return m.Extension(name, def)
	}
	return def
}

func (r *Rpc) ResponseExtension(name string, def any) any {
	if m := r.Response(); m != nil {
		return m.Extension(name, def)
	}
	return def
}

// IsRequestStream reports client streaming from the raw method record;
// false when the method is not indexed.
func (r *Rpc) IsRequestStream() bool {
	m, ok := r.rawMethod()
	return ok && m.GetClientStreaming()
}

// IsResponseStream reports server streaming from the raw method record;
// false when the method is not indexed.
func (r *Rpc) IsResponseStream() bool {
	m, ok := r.rawMethod()
	return ok && m.GetServerStreaming()
}

func (r *Rpc) rawMethod() (*descriptorpb.MethodDescriptorProto, bool) {
	set := r.db.Set()
	if set == nil || set.Symbols == nil {
		return nil, false
	}
	return set.Symbols.Method(r.fullName)
}

// IsValid is false when the request message is ignored.
func (r *Rpc) IsValid(ignore IgnoreSet) bool {
	return !ignore.Has(r.RequestName())
}
