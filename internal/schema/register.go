package schema

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// RegisterFiles calls register once for every distinct file name, handing
// over a file's dependencies before the file itself. Dependencies that are
// not part of files are ignored, and cyclic or self imports terminate
// because a file leaves the pending set before its dependencies are visited.
func RegisterFiles(files []*descriptorpb.FileDescriptorProto, register func(*descriptorpb.FileDescriptorProto) error) error {
	pending := make(map[string]*descriptorpb.FileDescriptorProto, len(files))
	for _, f := range files {
		pending[f.GetName()] = f
	}

	var add func(*descriptorpb.FileDescriptorProto) error
	add = func(f *descriptorpb.FileDescriptorProto) error {
		for _, dep := range f.GetDependency() {
			next, ok := pending[dep]
			if !ok {
				continue
			}
			delete(pending, dep)
			if err := add(next); err != nil {
				return err
			}
		}
		return register(f)
	}

	for len(pending) > 0 {
		for name, f := range pending {
			delete(pending, name)
			if err := add(f); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// registerInto builds every file against pool and registers it there.
// Unresolvable references become placeholders instead of failing the load.
func registerInto(pool *protoregistry.Files, files []*descriptorpb.FileDescriptorProto) error {
	opts := protodesc.FileOptions{AllowUnresolvable: true}
	return RegisterFiles(files, func(fdp *descriptorpb.FileDescriptorProto) error {
		fd, err := opts.New(withoutSelfImports(fdp), pool)
		if err != nil {
			return fmt.Errorf("build %s: %w", fdp.GetName(), err)
		}
		if err := pool.RegisterFile(fd); err != nil {
			return fmt.Errorf("register %s: %w", fdp.GetName(), err)
		}
		return nil
	})
}

// withoutSelfImports returns fdp unchanged unless it imports itself or lists
// a dependency twice, which protodesc rejects. Otherwise it returns a copy
// without those entries, with public and weak indices remapped.
func withoutSelfImports(fdp *descriptorpb.FileDescriptorProto) *descriptorpb.FileDescriptorProto {
	deps := fdp.GetDependency()
	index := make([]int32, len(deps))
	seen := make(map[string]bool, len(deps))
	var kept []string
	for i, dep := range deps {
		if dep == fdp.GetName() || seen[dep] {
			index[i] = -1
			continue
		}
		seen[dep] = true
		index[i] = int32(len(kept))
		kept = append(kept, dep)
	}
	if len(kept) == len(deps) {
		return fdp
	}

	remap := func(old []int32) []int32 {
		var out []int32
		for _, i := range old {
			if i >= 0 && int(i) < len(index) && index[i] >= 0 {
				out = append(out, index[i])
			}
		}
		return out
	}
	out := proto.Clone(fdp).(*descriptorpb.FileDescriptorProto)
	out.Dependency = kept
	out.PublicDependency = remap(fdp.GetPublicDependency())
	out.WeakDependency = remap(fdp.GetWeakDependency())
	return out
}
