package promise

import (
	"context"
	"reflect"
)

// Reflect exposes a Promise without knowing its type parameter.
type Reflect interface {
	UnderlyingType() reflect.Type
	AwaitAny(ctx context.Context) (any, error)
}

func (p *Promise[T]) UnderlyingType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (p *Promise[T]) AwaitAny(ctx context.Context) (any, error) {
	return p.AwaitContext(ctx)
}

// Inspect reports if typ is a promise and returns its underlying type.
func Inspect(typ reflect.Type) (reflect.Type, bool) {
	if typ != nil && typ.Kind() != reflect.Interface && typ.Implements(reflectType) {
		promise := reflect.Zero(typ).Interface().(Reflect)
		return promise.UnderlyingType(), true
	}
	if typ == reflectType {
		return reflect.TypeFor[any](), true
	}
	return nil, false
}

var reflectType = reflect.TypeFor[Reflect]()
