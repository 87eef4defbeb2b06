package mvc

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/mvc/internal"
	"github.com/miruken-go/mvc/view"
)

type (
	// ControllerFactory creates controllers of a type for a node.
	ControllerFactory interface {
		NewController(typ reflect.Type, node view.Node) (any, error)
	}

	// ControllerFactoryFunc adapts a function to a ControllerFactory.
	ControllerFactoryFunc func(typ reflect.Type, node view.Node) (any, error)

	// ControllerTypes maps keys to the controller types of
	// the nodes having that key.  The key of a node defaults
	// to its name.
	ControllerTypes struct {
		key   func(view.Node) string
		types map[string][]reflect.Type
	}

	// constructorFactory creates controllers by calling their
	// optional Constructor method with arguments from Dependencies.
	constructorFactory struct {
		engine *Engine
	}
)


func (f ControllerFactoryFunc) NewController(
	typ  reflect.Type,
	node view.Node,
) (any, error) {
	return f(typ, node)
}


// ControllerTypes

func NewControllerTypes() *ControllerTypes {
	return &ControllerTypes{}
}

// KeyBy changes how the key of a node is computed.
func (t *ControllerTypes) KeyBy(key func(view.Node) string) *ControllerTypes {
	t.key = key
	return t
}

// RegisterType associates a controller type with key.
func (t *ControllerTypes) RegisterType(
	key string,
	typ reflect.Type,
) *ControllerTypes {
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("controller type %v must be a pointer to a struct", typ))
	}
	if t.types == nil {
		t.types = make(map[string][]reflect.Type)
	}
	for _, existing := range t.types[key] {
		if existing == typ {
			return t
		}
	}
	t.types[key] = append(t.types[key], typ)
	return t
}

// Resolve returns the controller types registered for node.
func (t *ControllerTypes) Resolve(node view.Node) []reflect.Type {
	if t == nil || internal.IsNil(node) {
		return nil
	}
	key := node.Name()
	if t.key != nil {
		key = t.key(node)
	}
	return t.types[key]
}

// Types returns every registered controller type once,
// ordered by key and then registration.
func (t *ControllerTypes) Types() []reflect.Type {
	if t == nil || len(t.types) == 0 {
		return nil
	}
	keys := make([]string, 0, len(t.types))
	for key := range t.types {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var types []reflect.Type
	seen := make(map[reflect.Type]struct{})
	for _, key := range keys {
		for _, typ := range t.types[key] {
			if _, ok := seen[typ]; !ok {
				seen[typ] = struct{}{}
				types = append(types, typ)
			}
		}
	}
	return types
}

// Register associates controller type C with key.
// C must be a pointer to a struct.
func Register[C any](t *ControllerTypes, key string) *ControllerTypes {
	return t.RegisterType(key, internal.TypeOf[C]())
}


// constructorFactory

func (f *constructorFactory) NewController(
	typ  reflect.Type,
	node view.Node,
) (any, error) {
	if typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return nil, &DescriptorError{typ, ErrInvalidController}
	}
	controller := reflect.New(typ.Elem())
	ctor := controller.MethodByName("Constructor")
	if !ctor.IsValid() {
		return controller.Interface(), nil
	}
	ctorType := ctor.Type()
	args := make([]reflect.Value, ctorType.NumIn())
	var err error
	for i := range args {
		pt := ctorType.In(i)
		if pt == nodeType {
			args[i] = reflect.ValueOf(&node).Elem()
			continue
		}
		if dep, ok := f.engine.deps.Resolve(pt, ""); ok {
			if v, ok := internal.Assign(dep, pt); ok {
				args[i] = v
				continue
			}
		}
		err = multierror.Append(err, &ResolutionError{
			Member: typ.String() + ".Constructor",
			Index:  i,
			Type:   pt,
		})
	}
	if err != nil {
		return nil, err
	}
	out := ctor.Call(args)
	if len(out) > 0 {
		if last := out[len(out)-1]; last.Type() == internal.ErrorType && !last.IsNil() {
			return nil, last.Interface().(error)
		}
	}
	return controller.Interface(), nil
}


// Attach creates the controllers registered for node and attaches
// them.  Controllers already associated with node are kept.
func (e *Engine) Attach(node view.Node) (*Controllers, error) {
	if internal.IsNil(node) {
		return nil, fmt.Errorf("mvc: node cannot be nil")
	}
	controllers := ControllersOf(node)
	if controllers == nil {
		controllers = &Controllers{engine: e}
	}
	var err error
	for _, typ := range e.types.Resolve(node) {
		if controllers.hasType(typ) {
			continue
		}
		controller, invalid := e.factory.NewController(typ, node)
		if invalid == nil {
			invalid = controllers.Add(controller)
		}
		if invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	if invalid := controllers.AttachTo(node); invalid != nil {
		err = multierror.Append(err, invalid)
	}
	return controllers, err
}

// AttachControllers associates controllers with node using the
// default Engine.
func AttachControllers(node view.Node, controllers ...any) (*Controllers, error) {
	engine, err := DefaultEngine()
	if err != nil {
		return nil, err
	}
	c, err := engine.NewControllers(controllers...)
	if err != nil {
		return nil, err
	}
	return c, c.AttachTo(node)
}
