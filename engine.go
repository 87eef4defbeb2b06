package mvc

import (
	"maps"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	"github.com/miruken-go/mvc/internal"
	"github.com/miruken-go/mvc/view"
)

// Engine binds controllers to view nodes.
// An Engine is created with Setup and is safe to share.
type Engine struct {
	options   Options
	logger    logr.Logger
	sink      ErrorSink
	deps      *Dependencies
	resolvers []ParameterResolver
	commands  view.CommandLookup
	types     *ControllerTypes
	factory   ControllerFactory
	lock      sync.Mutex
	cache     atomic.Pointer[map[reflect.Type]*descriptor]
}

func (e *Engine) Options() Options {
	return e.options
}

func (e *Engine) Logger() logr.Logger {
	return e.logger
}

func (e *Engine) ErrorSink() ErrorSink {
	return e.sink
}

func (e *Engine) Dependencies() *Dependencies {
	return e.deps
}

func (e *Engine) Commands() view.CommandLookup {
	return e.commands
}

func (e *Engine) ControllerTypes() *ControllerTypes {
	return e.types
}

// NewControllers creates a Controllers collection.
func (e *Engine) NewControllers(controllers ...any) (*Controllers, error) {
	c := &Controllers{engine: e}
	for _, controller := range controllers {
		if err := c.Add(controller); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Scan returns the bindings discovered on controller.  If node
// is not nil, the target of each binding is resolved against it.
func (e *Engine) Scan(controller any, node view.Node) ([]BindingSpec, error) {
	if internal.IsNil(controller) {
		return nil, ErrInvalidController
	}
	desc, err := e.describe(reflect.TypeOf(controller))
	if err != nil {
		return nil, err
	}
	specs := desc.specs()
	if internal.IsNil(node) {
		return specs, nil
	}
	for i := range specs {
		spec := &specs[i]
		switch spec.Kind {
		case BindDataContext, BindCommand:
			spec.Target = node
		default:
			spec.Target = findElement(node, spec.Element, spec.Convention)
		}
	}
	return specs, nil
}

// describe returns the descriptor of a controller type.
func (e *Engine) describe(typ reflect.Type) (*descriptor, error) {
	if cache := e.cache.Load(); cache != nil {
		if d, ok := (*cache)[typ]; ok {
			return d, nil
		}
	}

	// Use copy-on-write idiom since reads should be more frequent than writes.
	e.lock.Lock()
	defer e.lock.Unlock()

	var cc map[reflect.Type]*descriptor
	if cache := e.cache.Load(); cache != nil {
		if d, ok := (*cache)[typ]; ok {
			return d, nil
		}
		cc = maps.Clone(*cache)
	} else {
		cc = make(map[reflect.Type]*descriptor, 1)
	}

	d, err := describe(typ, e.options.NamingConvention == OptionTrue)
	if err != nil {
		e.logger.Error(err, "controller type cannot be bound", "type", typ)
		return nil, err
	}
	e.trace("controller type described", "type", typ.String())
	cc[typ] = d
	e.cache.Store(&cc)
	return d, nil
}

func (e *Engine) trace(msg string, keysAndValues ...any) {
	e.logger.V(1).Info(msg, keysAndValues...)
}
