package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	pbtesting "github.com/Alia5/pbtmpl/internal/testing"
)

func optionValue(t *testing.T, opts proto.Message, name protoreflect.FullName) (protoreflect.Value, bool) {
	t.Helper()
	var (
		found protoreflect.Value
		ok    bool
	)
	opts.ProtoReflect().Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		if fd.IsExtension() && fd.FullName() == name {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}

func TestLoadCustomOptions(t *testing.T) {
	set, err := Load(pbtesting.WriteDescriptorSet(t, pbtesting.SampleSet()))
	require.NoError(t, err)

	d, err := set.Extended.FindDescriptorByName("demo.User")
	require.NoError(t, err)
	md := d.(protoreflect.MessageDescriptor)

	v, ok := optionValue(t, md.Options(), "demo.table_name")
	require.True(t, ok, "table_name should be visible on the extended pool")
	assert.Equal(t, "users", v.String())

	email := md.Fields().ByName("email")
	require.NotNil(t, email)
	v, ok = optionValue(t, email.Options(), "demo.secret")
	require.True(t, ok)
	assert.True(t, v.Bool())

	raw, err := set.Raw.FindDescriptorByName("demo.User")
	require.NoError(t, err)
	_, ok = optionValue(t, raw.(protoreflect.MessageDescriptor).Options(), "demo.table_name")
	assert.False(t, ok, "raw pool must not decode custom options")
}

func TestLoadPatchesWellKnownTypes(t *testing.T) {
	set, err := LoadBytes(pbtesting.MarshalSet(t, pbtesting.SampleSet()))
	require.NoError(t, err)

	for _, name := range []string{
		"google/protobuf/descriptor.proto",
		"google/protobuf/timestamp.proto",
		"google/protobuf/wrappers.proto",
	} {
		_, err := set.Raw.FindFileByPath(name)
		assert.NoError(t, err, "raw %s", name)
		_, err = set.Extended.FindFileByPath(name)
		assert.NoError(t, err, "extended %s", name)
	}
	assert.Len(t, set.Files, 3)
}

func TestLoadCycle(t *testing.T) {
	set, err := LoadBytes(pbtesting.MarshalSet(t, pbtesting.CycleSet()))
	require.NoError(t, err)
	for _, name := range []protoreflect.FullName{"cycle.A", "cycle.B", "cycle.C", "cycle.Self"} {
		_, err := set.Extended.FindDescriptorByName(name)
		assert.NoError(t, err, "%s", name)
	}
	for _, f := range set.RawFiles {
		if f.GetName() == "cycle/self.proto" {
			assert.Equal(t, []string{"cycle/self.proto"}, f.GetDependency())
		}
	}

	self := &descriptorpb.FileDescriptorSet{File: []*descriptorpb.FileDescriptorProto{
		pbtesting.CycleSet().GetFile()[3],
	}}
	set, err = LoadBytes(pbtesting.MarshalSet(t, self))
	require.NoError(t, err)
	_, err = set.Raw.FindDescriptorByName("cycle.Self")
	assert.NoError(t, err)
}

func TestLoadSkipsBundledFileWhenPresent(t *testing.T) {
	fds := pbtesting.SampleSet()
	fds.File = append(fds.File, protodesc.ToFileDescriptorProto(descriptorpb.File_google_protobuf_descriptor_proto))
	set, err := LoadBytes(pbtesting.MarshalSet(t, fds))
	require.NoError(t, err)
	assert.Len(t, set.Files, 4)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.pb"))
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, "read", le.Stage)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("garbage", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.pb")
		require.NoError(t, os.WriteFile(path, []byte{0xff, 0xff, 0xff}, 0o644))
		_, err := Load(path)
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, "decode", le.Stage)
		assert.Equal(t, path, le.Path)
	})
}

func TestSymbolIndex(t *testing.T) {
	idx := NewSymbolIndex()
	for _, f := range pbtesting.SampleSet().GetFile() {
		idx.AddFile(f)
	}

	tests := []struct {
		name string
		want any
	}{
		{"demo.Status", &descriptorpb.EnumDescriptorProto{}},
		{"demo.Status.STATUS_ACTIVE", &descriptorpb.EnumValueDescriptorProto{}},
		{"demo.table_name", &descriptorpb.FieldDescriptorProto{}},
		{"demo.User", &descriptorpb.DescriptorProto{}},
		{"demo.User.Profile", &descriptorpb.DescriptorProto{}},
		{"demo.User.Profile.bio", &descriptorpb.FieldDescriptorProto{}},
		{"demo.User.Role.ROLE_ADMIN", &descriptorpb.EnumValueDescriptorProto{}},
		{"demo.User.contact", &descriptorpb.OneofDescriptorProto{}},
		{"demo.UserService", &descriptorpb.ServiceDescriptorProto{}},
		{"demo.UserService.getUser2", &descriptorpb.MethodDescriptorProto{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := idx.Lookup(tt.name)
			require.True(t, ok)
			assert.IsType(t, tt.want, got)
		})
	}

	m, ok := idx.Method("demo.UserService.getUser2")
	require.True(t, ok)
	assert.True(t, m.GetServerStreaming())
	assert.False(t, m.GetClientStreaming())

	_, ok = idx.Method("demo.User")
	assert.False(t, ok)
	assert.Equal(t, idx.Len(), len(idx.Names()))
}
