package internal

import (
	"fmt"
	"reflect"
)

var (
	AnyType   = reflect.TypeFor[any]()
	ErrorType = reflect.TypeFor[error]()
)

// TypeOf returns the reflect.Type of T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// IsNil reports if val is nil or a nil reference.
func IsNil(val any) bool {
	if val == nil {
		return true
	}
	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map,
		reflect.Ptr, reflect.UnsafePointer,
		reflect.Interface, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// IsAnonymousSpec reports if typ is a *struct{...} with no name.
// Anonymous struct pointers carry binding metadata in their fields.
func IsAnonymousSpec(typ reflect.Type) bool {
	if typ.Kind() != reflect.Ptr {
		return false
	}
	elem := typ.Elem()
	return elem.Kind() == reflect.Struct && elem.Name() == ""
}

// NewWithTag creates a new instance of typ and lets it
// initialize itself from the struct tag if it wants to.
// typ must be a pointer type.
func NewWithTag(
	typ reflect.Type,
	tag reflect.StructTag,
) (any, error) {
	if typ.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("NewWithTag: %v is not a pointer type", typ)
	}
	instance := reflect.New(typ.Elem()).Interface()
	if init, ok := instance.(interface {
		InitWithTag(reflect.StructTag) error
	}); ok {
		if err := init.InitWithTag(tag); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Assign returns val converted to typ if assignable, otherwise
// the zero value of typ and false.
func Assign(val any, typ reflect.Type) (reflect.Value, bool) {
	if val == nil {
		return reflect.Zero(typ), false
	}
	v := reflect.ValueOf(val)
	if v.Type().AssignableTo(typ) {
		return v, true
	}
	return reflect.Zero(typ), false
}
