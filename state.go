package mvc

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/mvc/internal"
	"github.com/miruken-go/mvc/view"
)

type (
	// controllerHandlers is the binding state of one controller
	// instance attached to one node.
	controllerHandlers struct {
		engine      *Engine
		controller  any
		value       reflect.Value
		desc        *descriptor
		node        view.Node
		events      *EventHandlers
		commands    *CommandHandlers
		dataContext any
		bound       bool
		attached    atomic.Bool
	}

	// attachedState maps controller instances to their binding
	// state on a node.  It lives as long as the node.
	attachedState struct {
		handlers map[any]*controllerHandlers
	}

	attachedKey int
)

const (
	stateKey attachedKey = iota
	controllersKey
)


func newControllerHandlers(
	engine     *Engine,
	node       view.Node,
	controller any,
	desc       *descriptor,
) *controllerHandlers {
	h := &controllerHandlers{
		engine:     engine,
		controller: controller,
		value:      reflect.ValueOf(controller),
		desc:       desc,
		node:       node,
	}
	h.events = &EventHandlers{owner: h}
	h.commands = &CommandHandlers{owner: h}
	return h
}

func (h *controllerHandlers) bindingContext() *BindingContext {
	return &BindingContext{
		Node:         h.node,
		Controller:   h.controller,
		Dependencies: h.engine.deps,
	}
}

func (h *controllerHandlers) typeName() string {
	return h.desc.typ.String()
}

// bind creates the handler adapters of the controller instance.
// Function fields that are nil are skipped.
func (h *controllerHandlers) bind() (err error) {
	if h.bound {
		return nil
	}
	resolvers := h.engine.resolvers
	for _, spec := range h.desc.events {
		adapter, invalid := h.adapt(spec.handler, resolvers)
		if invalid != nil {
			err = multierror.Append(err, invalid)
		} else if adapter != nil {
			h.events.add(spec, adapter)
		}
	}
	for _, spec := range h.desc.commands {
		adapter, invalid := h.adapt(spec.handler, resolvers)
		if invalid != nil {
			err = multierror.Append(err, invalid)
		} else if adapter != nil {
			h.commands.add(spec, adapter)
		}
	}
	if err != nil {
		h.events.items, h.commands.items = nil, nil
		return err
	}
	h.bound = true
	return nil
}

func (h *controllerHandlers) adapt(
	spec      *handlerSpec,
	resolvers []ParameterResolver,
) (*handlerAdapter, error) {
	fun, err := spec.member.value(h.value)
	if err != nil {
		return nil, err
	}
	if fun.IsNil() {
		h.engine.trace("skipped nil handler",
			"controller", h.typeName(), "handler", spec.member.name)
		return nil, nil
	}
	return newHandlerAdapter(h, spec, fun, resolvers)
}

func (h *controllerHandlers) register() error {
	err := h.events.register(h.node)
	h.commands.register(h.node, h.engine.commands)
	return err
}

func (h *controllerHandlers) unregister() {
	h.events.unregister()
	h.commands.unregister()
}

// injectElements assigns the named children of the node.
// Missing children are assigned the zero value.
func (h *controllerHandlers) injectElements() (err error) {
	for _, el := range h.desc.elements {
		var value any
		if child := findElement(h.node, el.name, el.convention); child != nil {
			value = child
		} else if h.engine.options.StrictElements == OptionTrue {
			err = multierror.Append(err, fmt.Errorf(
				"mvc: element %q of %v not found", el.name, el.member.name))
			continue
		} else {
			h.engine.trace("element not found",
				"controller", h.typeName(), "element", el.name)
		}
		if invalid := h.inject(el, value); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}

func (h *controllerHandlers) clearElements() (err error) {
	for _, el := range h.desc.elements {
		if invalid := h.inject(el, nil); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}

func (h *controllerHandlers) injectDataContext(value any) error {
	h.dataContext = value
	if dc := h.desc.dataContext; dc != nil {
		return h.inject(dc, value)
	}
	return nil
}

func (h *controllerHandlers) clearDataContext() error {
	return h.injectDataContext(nil)
}

// inject assigns value to a field or passes it to an injection
// method.  Values not assignable to the member are replaced by
// the zero value.
func (h *controllerHandlers) inject(
	spec  *injectSpec,
	value any,
) (err error) {
	v, ok := internal.Assign(value, spec.typ)
	if !ok && value != nil {
		h.engine.trace("value not assignable",
			"controller", h.typeName(), "member", spec.member.name,
			"type", fmt.Sprintf("%T", value))
	}
	if spec.member.isField() {
		field, invalid := spec.member.value(h.value)
		if invalid != nil {
			return invalid
		}
		field.Set(v)
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{spec.member.name, r}
		}
	}()
	method := h.value.Method(spec.member.method)
	out := method.Call([]reflect.Value{reflect.Zero(method.Type().In(0)), v})
	if spec.returnsError && !out[0].IsNil() {
		return &HandlerError{spec.member.name, out[0].Interface().(error)}
	}
	return nil
}


// attachedState

func stateOf(node view.Node, create bool) *attachedState {
	if state, ok := node.AttachedValue(stateKey).(*attachedState); ok {
		return state
	}
	if !create {
		return nil
	}
	state := &attachedState{handlers: make(map[any]*controllerHandlers)}
	node.SetAttachedValue(stateKey, state)
	return state
}

func lookupHandlers(node view.Node, controller any) *controllerHandlers {
	if internal.IsNil(node) {
		return nil
	}
	if state := stateOf(node, false); state != nil {
		return state.handlers[controller]
	}
	return nil
}

// EventHandlersOf returns the event handlers controller has
// on node or nil if it was never attached to it.
func EventHandlersOf(node view.Node, controller any) *EventHandlers {
	if h := lookupHandlers(node, controller); h != nil {
		return h.events
	}
	return nil
}

// CommandHandlersOf returns the command handlers controller has
// on node or nil if it was never attached to it.
func CommandHandlersOf(node view.Node, controller any) *CommandHandlers {
	if h := lookupHandlers(node, controller); h != nil {
		return h.commands
	}
	return nil
}
