// Package schema loads a serialized descriptor set into two independent
// descriptor pools: a raw pool that reflects the file bytes as written, and an
// extended pool whose option messages carry the custom options declared by
// the set itself.
package schema

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

const containerType protoreflect.FullName = "google.protobuf.FileDescriptorSet"

// Set is a fully loaded descriptor set.
type Set struct {
	// Raw holds the files as decoded without any custom option knowledge.
	Raw *protoregistry.Files
	// Extended holds the same files re-decoded with every extension declared
	// in Raw known, so custom options are readable through reflection.
	Extended *protoregistry.Files
	// Types resolves every extension declared in the set.
	Types   *protoregistry.Types
	Symbols *SymbolIndex
	// RawFiles are the input files as first decoded, in their original order.
	RawFiles []*descriptorpb.FileDescriptorProto
	// Files are the re-decoded input files in their original order, without
	// the patched well-known type files.
	Files []*descriptorpb.FileDescriptorProto
}

// Load reads and loads the descriptor set stored at path.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Stage: "read", Cause: err}
	}
	set, err := LoadBytes(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return set, nil
}

// LoadBytes loads a serialized FileDescriptorSet.
func LoadBytes(data []byte) (*Set, error) {
	var raw descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Stage: "decode", Cause: err}
	}
	patch := missingWellKnown(raw.GetFile())

	rawPool := new(protoregistry.Files)
	if err := registerInto(rawPool, withFiles(raw.GetFile(), patch)); err != nil {
		return nil, &LoadError{Stage: "register raw files", Cause: err}
	}

	symbols := NewSymbolIndex()
	for _, f := range raw.GetFile() {
		symbols.AddFile(f)
	}

	d, err := rawPool.FindDescriptorByName(containerType)
	if err != nil {
		return nil, &LoadError{Stage: "resolve container", Cause: fmt.Errorf("%w: %v", ErrContainerType, err)}
	}
	if _, ok := d.(protoreflect.MessageDescriptor); !ok {
		return nil, &LoadError{Stage: "resolve container", Cause: fmt.Errorf("%w: %s is not a message", ErrContainerType, containerType)}
	}

	types, err := extensionTypes(rawPool)
	if err != nil {
		return nil, &LoadError{Stage: "collect extensions", Cause: err}
	}

	var extended descriptorpb.FileDescriptorSet
	if err := (proto.UnmarshalOptions{Resolver: types}).Unmarshal(data, &extended); err != nil {
		return nil, &LoadError{Stage: "decode with extensions", Cause: err}
	}

	extPool := new(protoregistry.Files)
	if err := registerInto(extPool, withFiles(extended.GetFile(), patch)); err != nil {
		return nil, &LoadError{Stage: "register extended files", Cause: err}
	}

	return &Set{
		Raw:      rawPool,
		Extended: extPool,
		Types:    types,
		Symbols:  symbols,
		RawFiles: raw.GetFile(),
		Files:    extended.GetFile(),
	}, nil
}

func withFiles(files, patch []*descriptorpb.FileDescriptorProto) []*descriptorpb.FileDescriptorProto {
	return append(slices.Clip(files), patch...)
}

// extensionTypes registers a dynamic extension type for every extension
// declared anywhere in pool.
func extensionTypes(pool *protoregistry.Files) (*protoregistry.Types, error) {
	types := new(protoregistry.Types)
	var err error
	pool.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		if err = registerExtensions(types, fd.Extensions()); err != nil {
			return false
		}
		err = registerMessageExtensions(types, fd.Messages())
		return err == nil
	})
	return types, err
}

func registerMessageExtensions(types *protoregistry.Types, msgs protoreflect.MessageDescriptors) error {
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		if err := registerExtensions(types, md.Extensions()); err != nil {
			return err
		}
		if err := registerMessageExtensions(types, md.Messages()); err != nil {
			return err
		}
	}
	return nil
}

func registerExtensions(types *protoregistry.Types, exts protoreflect.ExtensionDescriptors) error {
	for i := 0; i < exts.Len(); i++ {
		xd := exts.Get(i)
		if xd.IsPlaceholder() || xd.ContainingMessage().IsPlaceholder() {
			continue
		}
		if err := types.RegisterExtension(dynamicpb.NewExtensionType(xd)); err != nil {
			return fmt.Errorf("extension %s: %w", xd.FullName(), err)
		}
	}
	return nil
}
