package model

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

type Enum struct {
	node
	ed   protoreflect.EnumDescriptor
	file *File

	values         []*EnumValue
	valuesByName   map[string]*EnumValue
	valuesByNumber map[int32]*EnumValue
}

func newEnum(db *Database, file *File, ed protoreflect.EnumDescriptor) *Enum {
	e := &Enum{
		ed:             ed,
		file:           file,
		valuesByName:   make(map[string]*EnumValue),
		valuesByNumber: make(map[int32]*EnumValue),
	}
	e.init(db, ed)

	vds := ed.Values()
	for i := 0; i < vds.Len(); i++ {
		vd := vds.Get(i)
		v := &EnumValue{vd: vd, container: e}
		v.init(db, vd)
		// Value descriptors are scoped next to their enum; address them
		// below it instead.
		v.fullName = e.fullName + "." + v.name
		v.pkg = e.pkg
		e.values = append(e.values, v)
		e.valuesByName[v.name] = v
		e.valuesByNumber[int32(vd.Number())] = v
	}
	return e
}

func (e *Enum) File() *File { return e.file }

// Values lists the values in declaration order.
func (e *Enum) Values() []*EnumValue { return e.values }

func (e *Enum) ValueByName(name string) *EnumValue { return e.valuesByName[name] }

func (e *Enum) ValueByNumber(number int32) *EnumValue { return e.valuesByNumber[number] }

type EnumValue struct {
	node
	vd        protoreflect.EnumValueDescriptor
	container *Enum
}

func (v *EnumValue) Container() *Enum { return v.container }

func (v *EnumValue) Number() int32 { return int32(v.vd.Number()) }
