package mvc

import (
	"reflect"

	"github.com/miruken-go/mvc/internal"
)

type (
	// Dependencies holds the factories of values injected into
	// handler parameters and controller constructors.
	// A factory is called every time a value is needed.
	Dependencies struct {
		factories map[depKey]func() any
	}

	depKey struct {
		typ reflect.Type
		key string
	}
)

func NewDependencies() *Dependencies {
	return &Dependencies{}
}

// Provide registers factory for values of type T.
func Provide[T any](d *Dependencies, factory func() T) *Dependencies {
	return ProvideKeyed(d, "", factory)
}

// ProvideKeyed registers factory for values of type T under key.
func ProvideKeyed[T any](d *Dependencies, key string, factory func() T) *Dependencies {
	if factory == nil {
		panic("factory cannot be nil")
	}
	return d.ProvideType(internal.TypeOf[T](), key, func() any {
		return factory()
	})
}

// Instance registers a single value for type T.
func Instance[T any](d *Dependencies, value T) *Dependencies {
	return Provide(d, func() T { return value })
}

func (d *Dependencies) ProvideType(
	typ     reflect.Type,
	key     string,
	factory func() any,
) *Dependencies {
	if typ == nil {
		panic("typ cannot be nil")
	}
	if d.factories == nil {
		d.factories = make(map[depKey]func() any)
	}
	d.factories[depKey{typ, key}] = factory
	return d
}

func (d *Dependencies) Has(typ reflect.Type, key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.factories[depKey{typ, key}]
	return ok
}

func (d *Dependencies) Resolve(typ reflect.Type, key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	if factory, ok := d.factories[depKey{typ, key}]; ok {
		return factory(), true
	}
	return nil, false
}
