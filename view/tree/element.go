// Package tree is an in-memory retained-mode view tree.
//
// Elements have names, children, attached values and an inherited
// data context. Events bubble from the source to the root unless
// they are lifecycle events, which are raised directly.
package tree

import (
	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/mvc/view"
)

type (
	// Element is a view.Node.
	Element struct {
		name        string
		parent      *Element
		children    []*Element
		attached    map[any]any
		handlers    map[string][]registration
		dataContext any
		hasContext  bool
		initialized bool
	}

	registration struct {
		handler          view.Handler
		handledEventsToo bool
	}
)

// New creates an Element with optional children.
func New(name string, children ...*Element) *Element {
	e := &Element{name: name}
	return e.Add(children...)
}

func (e *Element) Name() string {
	return e.name
}

func (e *Element) Parent() view.Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Element) Children() []*Element {
	return e.children
}

// Add appends children, detaching them from any previous parent.
func (e *Element) Add(children ...*Element) *Element {
	for _, child := range children {
		if child == nil {
			continue
		}
		if child.parent != nil {
			child.parent.Remove(child)
		}
		child.parent = e
		e.children = append(e.children, child)
	}
	return e
}

func (e *Element) Remove(child *Element) bool {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Find searches the descendants of e depth-first for name.
func (e *Element) Find(name string) *Element {
	for _, child := range e.children {
		if child.name == name {
			return child
		}
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

func (e *Element) FindChild(name string) view.Node {
	if found := e.Find(name); found != nil {
		return found
	}
	return nil
}

func (e *Element) AttachedValue(key any) any {
	return e.attached[key]
}

// SetAttachedValue stores value under key.  A nil value removes the key.
func (e *Element) SetAttachedValue(key any, value any) {
	if value == nil {
		delete(e.attached, key)
		return
	}
	if e.attached == nil {
		e.attached = make(map[any]any)
	}
	e.attached[key] = value
}

// DataContext returns the data context of e or the nearest ancestor
// that has one.
func (e *Element) DataContext() any {
	for n := e; n != nil; n = n.parent {
		if n.hasContext {
			return n.dataContext
		}
	}
	return nil
}

// SetDataContext assigns the data context of e and raises
// view.DataContextChanged on every element whose effective
// data context changed.
func (e *Element) SetDataContext(value any) error {
	old := e.DataContext()
	e.dataContext, e.hasContext = value, true
	return e.contextChanged(old, value)
}

// ClearDataContext removes the data context of e so it inherits again.
func (e *Element) ClearDataContext() error {
	old := e.DataContext()
	e.dataContext, e.hasContext = nil, false
	return e.contextChanged(old, e.DataContext())
}

func (e *Element) contextChanged(old, value any) (err error) {
	if old == value {
		return nil
	}
	if invalid := e.Raise(view.DataContextChanged, &view.DataContextChangedEventArgs{
		OldValue: old,
		NewValue: value,
	}); invalid != nil {
		err = multierror.Append(err, invalid)
	}
	for _, child := range e.children {
		if !child.hasContext {
			if invalid := child.contextChanged(old, value); invalid != nil {
				err = multierror.Append(err, invalid)
			}
		}
	}
	return err
}

func (e *Element) IsInitialized() bool {
	return e.initialized
}

// Initialize initializes the children of e and then e, raising
// view.Initialized on each element not yet initialized.
func (e *Element) Initialize() (err error) {
	for _, child := range e.children {
		if invalid := child.Initialize(); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	if !e.initialized {
		e.initialized = true
		if invalid := e.Raise(view.Initialized, &view.RoutedEventArgs{}); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}

// Load raises view.Loaded on e and its descendants.
func (e *Element) Load() (err error) {
	if invalid := e.Raise(view.Loaded, &view.RoutedEventArgs{}); invalid != nil {
		err = multierror.Append(err, invalid)
	}
	for _, child := range e.children {
		if invalid := child.Load(); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}

// Unload raises view.Unloaded on e and its descendants and marks
// them uninitialized so they can be initialized again.
func (e *Element) Unload() (err error) {
	if e.initialized {
		e.initialized = false
		if invalid := e.Raise(view.Unloaded, &view.RoutedEventArgs{}); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	for _, child := range e.children {
		if invalid := child.Unload(); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}

func (e *Element) AddHandler(
	event            string,
	handler          view.Handler,
	handledEventsToo bool,
) {
	if handler == nil {
		panic("handler cannot be nil")
	}
	if e.handlers == nil {
		e.handlers = make(map[string][]registration)
	}
	e.handlers[event] = append(e.handlers[event], registration{handler, handledEventsToo})
}

func (e *Element) RemoveHandler(
	event   string,
	handler view.Handler,
) {
	regs := e.handlers[event]
	for i, reg := range regs {
		if reg.handler == handler {
			e.handlers[event] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// HandlerCount returns the number of handlers registered for event.
func (e *Element) HandlerCount(event string) int {
	return len(e.handlers[event])
}

// Raise routes event from e to the root.  Every handler on the route
// is called even if an earlier one failed, and the failures are
// returned together.
func (e *Element) Raise(event string, args view.EventArgs) (err error) {
	if args == nil {
		args = &view.RoutedEventArgs{}
	}
	routed := args.RoutedArgs()
	routed.Event = event
	if routed.Source == nil {
		routed.Source = e
	}
	direct := view.IsLifecycle(event)
	for n := e; n != nil; n = n.parent {
		if invalid := n.invoke(event, args, routed); invalid != nil {
			err = multierror.Append(err, invalid)
		}
		if direct {
			break
		}
	}
	return err
}

func (e *Element) invoke(
	event  string,
	args   view.EventArgs,
	routed *view.RoutedEventArgs,
) (err error) {
	regs := e.handlers[event]
	if len(regs) == 0 {
		return nil
	}
	// handlers may add or remove handlers
	regs = append([]registration(nil), regs...)
	for _, reg := range regs {
		if routed.Handled && !reg.handledEventsToo {
			continue
		}
		if invalid := reg.handler.HandleEvent(e, args); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}
