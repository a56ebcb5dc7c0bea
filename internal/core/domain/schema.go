package domain

import (
	"encoding/json"
	"sort"
)

// TypeKind is one of the five portable type kinds.
type TypeKind string

const (
	TypeString  TypeKind = "string"
	TypeInteger TypeKind = "integer"
	TypeEnum    TypeKind = "enum"
	TypeArray   TypeKind = "array"
	TypeStruct  TypeKind = "struct"
)

// EnumMember is one allowed value of an enum type.
type EnumMember struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// TypeSpec describes the type of a property, argument or payload field.
// Scalar kinds need only Kind; the other fields apply to enum, array and
// struct kinds respectively.
type TypeSpec struct {
	Kind TypeKind

	// ValueType is the scalar kind of enum member values.
	ValueType TypeKind
	// Members lists the allowed enum values.
	Members []EnumMember

	// ItemType is the element type of an array. Nil means any element.
	ItemType *TypeSpec

	// Fields are the declared members of a struct.
	Fields Schema
	// Open structs tolerate members beyond Fields.
	Open bool
}

// Field is a named member of a Schema.
type Field struct {
	Label    string   `json:"label,omitempty"`
	Type     TypeSpec `json:"type"`
	Required bool     `json:"required,omitempty"`
}

// Schema maps argument or member names to their declared fields.
type Schema map[string]Field

// StringType returns the string type.
func StringType() TypeSpec { return TypeSpec{Kind: TypeString} }

// IntegerType returns the integer type.
func IntegerType() TypeSpec { return TypeSpec{Kind: TypeInteger} }

// EnumOf returns an enum type over the given members.
func EnumOf(valueType TypeKind, members ...EnumMember) TypeSpec {
	return TypeSpec{Kind: TypeEnum, ValueType: valueType, Members: members}
}

// ArrayOf returns an array type with the given element type.
func ArrayOf(item TypeSpec) TypeSpec {
	return TypeSpec{Kind: TypeArray, ItemType: &item}
}

// StructOf returns a struct type with the given members.
func StructOf(fields Schema, open bool) TypeSpec {
	return TypeSpec{Kind: TypeStruct, Fields: fields, Open: open}
}

// IsScalar reports whether the type is string or integer.
func (t TypeSpec) IsScalar() bool {
	return t.Kind == TypeString || t.Kind == TypeInteger
}

// MarshalJSON renders scalar kinds as a bare name ("string") and composite
// kinds as an object carrying their parameters.
func (t TypeSpec) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TypeEnum:
		return json.Marshal(struct {
			Kind      TypeKind     `json:"kind"`
			ValueType TypeKind     `json:"value_type"`
			Members   []EnumMember `json:"members"`
		}{t.Kind, t.ValueType, t.Members})
	case TypeArray:
		return json.Marshal(struct {
			Kind     TypeKind  `json:"kind"`
			ItemType *TypeSpec `json:"item_type,omitempty"`
		}{t.Kind, t.ItemType})
	case TypeStruct:
		members := t.Fields
		if members == nil {
			members = Schema{}
		}
		return json.Marshal(struct {
			Kind    TypeKind `json:"kind"`
			Members Schema   `json:"members"`
			Open    bool     `json:"open,omitempty"`
		}{t.Kind, members, t.Open})
	default:
		return json.Marshal(string(t.Kind))
	}
}

// Names returns the schema's field names in sorted order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Property is a named attribute of an Entity: either a *SimpleProperty
// or a nested EntitySet.
type Property interface {
	isProperty()
}

// SimpleProperty is a scalar-valued property.
type SimpleProperty struct {
	Label string
	Type  TypeSpec
	Value any
}

func (*SimpleProperty) isProperty() {}

// NewSimpleProperty returns a scalar property.
func NewSimpleProperty(label string, typ TypeSpec, value any) *SimpleProperty {
	return &SimpleProperty{Label: label, Type: typ, Value: value}
}
