package mvc

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/mvc/internal"
	"github.com/miruken-go/mvc/slices"
	"github.com/miruken-go/mvc/view"
)

type (
	// ControllerState is the attachment state of a controller.
	ControllerState uint8

	// Controllers is the ordered set of controllers associated
	// with one node.  Controllers attach when the node initializes
	// and detach when it unloads.
	Controllers struct {
		engine      *Engine
		node        view.Node
		entries     []*controllerEntry
		lifecycle   []*lifecycleHandler
		initialized bool
	}

	controllerEntry struct {
		controller any
		desc       *descriptor
		state      ControllerState
		handlers   *controllerHandlers
	}

	// lifecycleHandler observes one lifecycle event of the node.
	lifecycleHandler struct {
		controllers *Controllers
		event       string
	}
)

const (
	Detached ControllerState = iota
	Attaching
	Attached
	Detaching
)

var ErrControllersAssigned = errors.New("mvc: node already has controllers")

var lifecycleEvents = []string{
	view.Initialized,
	view.DataContextChanged,
	view.Unloaded,
}


func (s ControllerState) String() string {
	switch s {
	case Detached:  return "Detached"
	case Attaching: return "Attaching"
	case Attached:  return "Attached"
	case Detaching: return "Detaching"
	default:        return fmt.Sprintf("ControllerState(%d)", s)
	}
}


// Controllers

func (c *Controllers) Engine() *Engine {
	return c.engine
}

// Node returns the node the collection is attached to.
func (c *Controllers) Node() view.Node {
	return c.node
}

func (c *Controllers) Len() int {
	return len(c.entries)
}

// Controllers returns the controllers in the order they were added.
func (c *Controllers) Controllers() []any {
	return slices.Map[*controllerEntry, any](c.entries, func(e *controllerEntry) any {
		return e.controller
	})
}

// State returns the attachment state of controller.
func (c *Controllers) State(controller any) ControllerState {
	if entry := c.entry(controller); entry != nil {
		return entry.state
	}
	return Detached
}

// Add appends controller to the collection.  The controller type
// is scanned immediately and attached if the node is initialized.
// Adding a controller twice has no effect.
func (c *Controllers) Add(controller any) error {
	if internal.IsNil(controller) {
		return ErrInvalidController
	}
	if c.entry(controller) != nil {
		return nil
	}
	desc, err := c.engine.describe(reflect.TypeOf(controller))
	if err != nil {
		return err
	}
	entry := &controllerEntry{controller: controller, desc: desc}
	c.entries = append(c.entries, entry)
	if c.node != nil && c.initialized {
		if err := c.attach(entry); err != nil {
			return &ControllerError{controller, "attach", err}
		}
	}
	return nil
}

// Remove detaches controller and removes it from the collection.
// The controller is disposed if it is Disposable.
func (c *Controllers) Remove(controller any) error {
	entry := c.entry(controller)
	if entry == nil {
		return nil
	}
	var err error
	if invalid := c.detach(entry); invalid != nil {
		err = &ControllerError{controller, "detach", invalid}
	}
	if c.node != nil {
		if state := stateOf(c.node, false); state != nil {
			delete(state.handlers, controller)
		}
	}
	c.entries = slices.Remove(c.entries, entry)
	if d, ok := controller.(Disposable); ok {
		d.Dispose()
	}
	return err
}

// AttachTo associates the collection with node.  Controllers
// attach immediately if node is already initialized.
func (c *Controllers) AttachTo(node view.Node) error {
	if internal.IsNil(node) {
		return errors.New("mvc: node cannot be nil")
	}
	if c.node == node {
		return nil
	}
	if other := ControllersOf(node); other != nil && other != c {
		return ErrControllersAssigned
	}
	err := c.Detach()
	c.node = node
	node.SetAttachedValue(controllersKey, c)
	for _, event := range lifecycleEvents {
		handler := &lifecycleHandler{c, event}
		node.AddHandler(event, handler, true)
		c.lifecycle = append(c.lifecycle, handler)
	}
	c.engine.trace("controllers attached to node",
		"node", node.Name(), "controllers", len(c.entries))
	if n, ok := node.(interface{ IsInitialized() bool }); ok && n.IsInitialized() {
		if invalid := c.Initialize(); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}

// Detach unloads the controllers and dissociates the collection
// from its node.
func (c *Controllers) Detach() error {
	node := c.node
	if node == nil {
		return nil
	}
	err := c.Unload()
	for _, handler := range c.lifecycle {
		node.RemoveHandler(handler.event, handler)
	}
	c.lifecycle = nil
	node.SetAttachedValue(controllersKey, nil)
	c.node = nil
	return err
}

// Initialize attaches every detached controller in order.
// A controller failing to attach is rolled back without
// affecting the others.
func (c *Controllers) Initialize() error {
	if c.node == nil {
		return ErrNotAttached
	}
	c.initialized = true
	var err error
	for _, entry := range c.snapshot() {
		if invalid := c.attach(entry); invalid != nil {
			c.engine.logger.Error(invalid, "controller failed to attach",
				"controller", entry.desc.typ.String(), "node", c.node.Name())
			err = multierror.Append(err, &ControllerError{entry.controller, "attach", invalid})
		}
	}
	return err
}

// DataContextChanged injects value into every attached controller.
func (c *Controllers) DataContextChanged(value any) error {
	var err error
	for _, entry := range c.snapshot() {
		if entry.state != Attached {
			continue
		}
		if invalid := entry.handlers.injectDataContext(value); invalid != nil {
			err = multierror.Append(err, &ControllerError{entry.controller, "dataContext", invalid})
		}
	}
	return err
}

// Unload detaches every attached controller.
func (c *Controllers) Unload() error {
	c.initialized = false
	var err error
	for _, entry := range c.snapshot() {
		if invalid := c.detach(entry); invalid != nil {
			err = multierror.Append(err, &ControllerError{entry.controller, "detach", invalid})
		}
	}
	return err
}

// Scan returns the bindings of controller on the attached node.
func (c *Controllers) Scan(controller any) ([]BindingSpec, error) {
	return c.engine.Scan(controller, c.node)
}

func (c *Controllers) entry(controller any) *controllerEntry {
	for _, entry := range c.entries {
		if entry.controller == controller {
			return entry
		}
	}
	return nil
}

func (c *Controllers) hasType(typ reflect.Type) bool {
	for _, entry := range c.entries {
		if entry.desc.typ == typ {
			return true
		}
	}
	return false
}

func (c *Controllers) snapshot() []*controllerEntry {
	return append([]*controllerEntry(nil), c.entries...)
}

// attach injects the elements and data context of the node into
// the controller, binds its handlers and registers them.
func (c *Controllers) attach(entry *controllerEntry) (err error) {
	if entry.state != Detached {
		return nil
	}
	node := c.node
	entry.state = Attaching
	state := stateOf(node, true)
	handlers := state.handlers[entry.controller]
	if handlers == nil {
		handlers = newControllerHandlers(c.engine, node, entry.controller, entry.desc)
		state.handlers[entry.controller] = handlers
	}
	entry.handlers = handlers

	defer func() {
		if err != nil && entry.state == Attaching {
			handlers.unregister()
			_ = handlers.clearElements()
			_ = handlers.clearDataContext()
			entry.state = Detached
		}
	}()

	if err = handlers.injectElements(); err != nil {
		return err
	}
	dataContext := node.DataContext()
	if err = handlers.injectDataContext(dataContext); err != nil {
		return err
	}
	if err = handlers.bind(); err != nil {
		return err
	}
	if err = handlers.register(); err != nil {
		return err
	}
	handlers.attached.Store(true)
	entry.state = Attached
	c.engine.trace("controller attached",
		"controller", entry.desc.typ.String(), "node", node.Name())

	// handlers observe the data context present at attach time
	e := &view.DataContextChangedEventArgs{NewValue: dataContext}
	e.Event, e.Source = view.DataContextChanged, node
	var items EventHandlerItems
	for _, item := range handlers.events.items {
		if item.target == node {
			items = append(items, item)
		}
	}
	return items.Raise(view.DataContextChanged, node, e)
}

func (c *Controllers) detach(entry *controllerEntry) error {
	if entry.state != Attached {
		return nil
	}
	entry.state = Detaching
	handlers := entry.handlers
	handlers.attached.Store(false)
	handlers.unregister()
	var err error
	if invalid := handlers.clearElements(); invalid != nil {
		err = multierror.Append(err, invalid)
	}
	if invalid := handlers.clearDataContext(); invalid != nil {
		err = multierror.Append(err, invalid)
	}
	entry.state = Detached
	c.engine.trace("controller detached",
		"controller", entry.desc.typ.String(), "node", c.node.Name())
	return err
}


// lifecycleHandler

func (h *lifecycleHandler) HandleEvent(_ any, e view.EventArgs) error {
	c := h.controllers
	if c.node == nil || e.RoutedArgs().Source != c.node {
		return nil
	}
	switch h.event {
	case view.Initialized:
		return c.Initialize()
	case view.DataContextChanged:
		if args, ok := e.(*view.DataContextChangedEventArgs); ok {
			return c.DataContextChanged(args.NewValue)
		}
		return c.DataContextChanged(c.node.DataContext())
	case view.Unloaded:
		return c.Unload()
	}
	return nil
}


// ControllersOf returns the controllers associated with node.
func ControllersOf(node view.Node) *Controllers {
	if internal.IsNil(node) {
		return nil
	}
	c, _ := node.AttachedValue(controllersKey).(*Controllers)
	return c
}
