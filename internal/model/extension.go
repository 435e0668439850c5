package model

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

func collectExtensions(opts protoreflect.ProtoMessage) map[string]any {
	out := make(map[string]any)
	if opts == nil {
		return out
	}
	m := opts.ProtoReflect()
	if !m.IsValid() {
		return out
	}
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		if !fd.IsExtension() {
			return true
		}
		val := convertValue(fd, v)
		out[string(fd.Name())] = val
		out[string(fd.FullName())] = val
		return true
	})
	return out
}

// convertValue turns a reflected option value into plain Go values: lists
// become []any, maps become map[string]any, enums their value name and
// messages stay proto messages.
func convertValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch {
	case fd.IsList():
		list := v.List()
		out := make([]any, 0, list.Len())
		for i := 0; i < list.Len(); i++ {
			out = append(out, convertScalar(fd, list.Get(i)))
		}
		return out
	case fd.IsMap():
		out := make(map[string]any, v.Map().Len())
		v.Map().Range(func(k protoreflect.MapKey, mv protoreflect.Value) bool {
			out[k.String()] = convertScalar(fd.MapValue(), mv)
			return true
		})
		return out
	}
	return convertScalar(fd, v)
}

func convertScalar(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.EnumKind:
		if ev := fd.Enum().Values().ByNumber(v.Enum()); ev != nil {
			return string(ev.Name())
		}
		return int32(v.Enum())
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return v.Message().Interface()
	}
	return v.Interface()
}
