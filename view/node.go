// Package view defines the view tree abstraction the controller
// binding engine is driven by.
//
// A concrete toolkit provides Node. The engine only needs to look up
// named children, keep per-node attached values, add and remove
// event handlers, and raise events.
package view

type (
	// Node is an element of a retained-mode view tree.
	Node interface {
		Name() string
		Parent() Node
		FindChild(name string) Node
		AttachedValue(key any) any
		SetAttachedValue(key any, value any)
		DataContext() any
		AddHandler(event string, handler Handler, handledEventsToo bool)
		RemoveHandler(event string, handler Handler)
		Raise(event string, e EventArgs) error
	}

	// Handler receives events raised on a Node.
	// Implementations must be comparable so they can be removed.
	Handler interface {
		HandleEvent(sender any, e EventArgs) error
	}

	// EventArgs is implemented by all event arguments.
	EventArgs interface {
		RoutedArgs() *RoutedEventArgs
	}

	// RoutedEventArgs carries the state shared by every event.
	RoutedEventArgs struct {
		Event   string
		Source  Node
		Handled bool
	}

	// DataContextChangedEventArgs is raised when the data
	// context of a Node changes.
	DataContextChangedEventArgs struct {
		RoutedEventArgs
		OldValue any
		NewValue any
	}

	funcHandler struct {
		fun func(sender any, e EventArgs) error
	}
)

// Lifecycle events raised directly on a Node.
const (
	Initialized        = "Initialized"
	Loaded             = "Loaded"
	Unloaded           = "Unloaded"
	DataContextChanged = "DataContextChanged"
)


// RoutedEventArgs

func (e *RoutedEventArgs) RoutedArgs() *RoutedEventArgs {
	return e
}


// HandlerFunc adapts fun to a Handler.
// The returned Handler has pointer identity.
func HandlerFunc(fun func(sender any, e EventArgs) error) Handler {
	if fun == nil {
		panic("fun cannot be nil")
	}
	return &funcHandler{fun}
}

func (h *funcHandler) HandleEvent(sender any, e EventArgs) error {
	return h.fun(sender, e)
}

// IsLifecycle reports if event is one of the lifecycle events.
func IsLifecycle(event string) bool {
	switch event {
	case Initialized, Loaded, Unloaded, DataContextChanged:
		return true
	}
	return false
}
