// Package testing builds descriptor-set fixtures for package tests so that no
// schema compiler is needed to run them.
package testing

import (
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Extension numbers declared by the sample options file.
const (
	TableNameOption  protowire.Number = 50001
	SecretOption     protowire.Number = 50002
	RpcTimeoutOption protowire.Number = 50003
)

var (
	optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()
	repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
)

func scalar(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  optional,
		Type:   typ.Enum(),
	}
}

func typed(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, number, typ)
	f.TypeName = proto.String(typeName)
	return f
}

func extension(name string, number protowire.Number, typ descriptorpb.FieldDescriptorProto_Type, extendee string) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, int32(number), typ)
	f.Extendee = proto.String(extendee)
	return f
}

func setUnknown(m proto.Message, b []byte) {
	m.ProtoReflect().SetUnknown(protoreflect.RawFields(b))
}

// StringOption encodes a string-valued custom option.
func StringOption(num protowire.Number, v string) []byte {
	b := protowire.AppendTag(nil, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// VarintOption encodes a bool or integer custom option.
func VarintOption(num protowire.Number, v uint64) []byte {
	b := protowire.AppendTag(nil, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// OptionsFile declares the custom options used by the sample schema.
func OptionsFile() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String("demo/options.proto"),
		Package:    proto.String("demo"),
		Dependency: []string{"google/protobuf/descriptor.proto"},
		Syntax:     proto.String("proto3"),
		Extension: []*descriptorpb.FieldDescriptorProto{
			extension("table_name", TableNameOption, descriptorpb.FieldDescriptorProto_TYPE_STRING, ".google.protobuf.MessageOptions"),
			extension("secret", SecretOption, descriptorpb.FieldDescriptorProto_TYPE_BOOL, ".google.protobuf.FieldOptions"),
			extension("rpc_timeout", RpcTimeoutOption, descriptorpb.FieldDescriptorProto_TYPE_INT32, ".google.protobuf.MethodOptions"),
		},
	}
}

// CommonFile holds the messages and enums of the sample schema.
//
//	enum Status { STATUS_UNKNOWN = 0; STATUS_ACTIVE = 1; STATUS_BANNED = 2; }
//	message User {
//	  option (table_name) = "users";
//	  message Profile { string bio = 1; }
//	  enum Role { ROLE_GUEST = 0; ROLE_ADMIN = 1; }
//	  int64 id = 1; string user_name = 2; Status status = 3;
//	  oneof contact { string email = 4 [(secret) = true]; string phone = 5; }
//	}
//	message GetUserRequest { int64 id = 1; }
//	message GetUserResponse { User user = 1; }
//	message ListItemsRequest {}
//	message ListItemsResponse { repeated string items = 1; }
func CommonFile() *descriptorpb.FileDescriptorProto {
	email := scalar("email", 4, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	email.OneofIndex = proto.Int32(0)
	email.Options = &descriptorpb.FieldOptions{}
	setUnknown(email.Options, VarintOption(SecretOption, 1))

	phone := scalar("phone", 5, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	phone.OneofIndex = proto.Int32(0)

	userOptions := &descriptorpb.MessageOptions{}
	setUnknown(userOptions, StringOption(TableNameOption, "users"))

	items := scalar("items", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	items.Label = repeated

	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String("demo/common.proto"),
		Package:    proto.String("demo"),
		Dependency: []string{"demo/options.proto"},
		Syntax:     proto.String("proto3"),
		EnumType: []*descriptorpb.EnumDescriptorProto{{
			Name: proto.String("Status"),
			Value: []*descriptorpb.EnumValueDescriptorProto{
				{Name: proto.String("STATUS_UNKNOWN"), Number: proto.Int32(0)},
				{Name: proto.String("STATUS_ACTIVE"), Number: proto.Int32(1)},
				{Name: proto.String("STATUS_BANNED"), Number: proto.Int32(2)},
			},
		}},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("User"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("id", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64),
					scalar("user_name", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					typed("status", 3, descriptorpb.FieldDescriptorProto_TYPE_ENUM, ".demo.Status"),
					email,
					phone,
				},
				OneofDecl: []*descriptorpb.OneofDescriptorProto{{Name: proto.String("contact")}},
				NestedType: []*descriptorpb.DescriptorProto{{
					Name:  proto.String("Profile"),
					Field: []*descriptorpb.FieldDescriptorProto{scalar("bio", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING)},
				}},
				EnumType: []*descriptorpb.EnumDescriptorProto{{
					Name: proto.String("Role"),
					Value: []*descriptorpb.EnumValueDescriptorProto{
						{Name: proto.String("ROLE_GUEST"), Number: proto.Int32(0)},
						{Name: proto.String("ROLE_ADMIN"), Number: proto.Int32(1)},
					},
				}},
				Options: userOptions,
			},
			{
				Name:  proto.String("GetUserRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{scalar("id", 1, descriptorpb.FieldDescriptorProto_TYPE_INT64)},
			},
			{
				Name:  proto.String("GetUserResponse"),
				Field: []*descriptorpb.FieldDescriptorProto{typed("user", 1, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".demo.User")},
			},
			{Name: proto.String("ListItemsRequest")},
			{
				Name:  proto.String("ListItemsResponse"),
				Field: []*descriptorpb.FieldDescriptorProto{items},
			},
		},
	}
}

// ServiceFile declares UserService with three rpcs:
// get_user (unary, rpc_timeout = 30), getUser2 (server streaming) and
// list_items (client streaming).
func ServiceFile() *descriptorpb.FileDescriptorProto {
	getUserOptions := &descriptorpb.MethodOptions{}
	setUnknown(getUserOptions, VarintOption(RpcTimeoutOption, 30))

	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String("demo/service.proto"),
		Package:    proto.String("demo"),
		Dependency: []string{"demo/common.proto", "demo/options.proto"},
		Syntax:     proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("UserService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				{
					Name:       proto.String("get_user"),
					InputType:  proto.String(".demo.GetUserRequest"),
					OutputType: proto.String(".demo.GetUserResponse"),
					Options:    getUserOptions,
				},
				{
					Name:            proto.String("getUser2"),
					InputType:       proto.String(".demo.GetUserRequest"),
					OutputType:      proto.String(".demo.GetUserResponse"),
					ServerStreaming: proto.Bool(true),
				},
				{
					Name:            proto.String("list_items"),
					InputType:       proto.String(".demo.ListItemsRequest"),
					OutputType:      proto.String(".demo.ListItemsResponse"),
					ClientStreaming: proto.Bool(true),
				},
			},
		}},
	}
}

// SampleSet is the demo schema. Files are listed dependents first so that the
// loader has to order registrations itself.
func SampleSet() *descriptorpb.FileDescriptorSet {
	return &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{ServiceFile(), CommonFile(), OptionsFile()},
	}
}

// CycleSet has the dependency edges a -> b -> c -> a plus a file importing
// itself.
func CycleSet() *descriptorpb.FileDescriptorSet {
	file := func(name, message string, deps ...string) *descriptorpb.FileDescriptorProto {
		return &descriptorpb.FileDescriptorProto{
			Name:        proto.String(name),
			Package:     proto.String("cycle"),
			Dependency:  deps,
			Syntax:      proto.String("proto3"),
			MessageType: []*descriptorpb.DescriptorProto{{Name: proto.String(message)}},
		}
	}
	return &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{
			file("cycle/a.proto", "A", "cycle/b.proto"),
			file("cycle/b.proto", "B", "cycle/c.proto"),
			file("cycle/c.proto", "C", "cycle/a.proto"),
			file("cycle/self.proto", "Self", "cycle/self.proto"),
		},
	}
}

// MarshalSet serializes a descriptor set, failing the test on error.
func MarshalSet(t testing.TB, set *descriptorpb.FileDescriptorSet) []byte {
	t.Helper()
	data, err := proto.Marshal(set)
	if err != nil {
		t.Fatalf("marshal descriptor set: %v", err)
	}
	return data
}

// WriteDescriptorSet writes set into a fresh temporary directory and returns
// the file path.
func WriteDescriptorSet(t testing.TB, set *descriptorpb.FileDescriptorSet) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.pb")
	if err := os.WriteFile(path, MarshalSet(t, set), 0o644); err != nil {
		t.Fatalf("write descriptor set: %v", err)
	}
	return path
}

// WriteFile writes content below dir, creating parent directories.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
