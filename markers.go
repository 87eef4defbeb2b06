package mvc

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type (
	// DataContext marks the member receiving the data context
	// of the associated node.
	DataContext struct{}

	// Element marks a member receiving a named child of the
	// associated node.  The name defaults to the member name.
	Element struct {
		Name string
	}

	// EventHandler marks a member handling an event raised on a
	// named child, or on the associated node if Element is empty.
	EventHandler struct {
		Element          string
		Event            string
		HandledEventsToo bool
	}

	// CommandHandler marks a member handling a command event.
	CommandHandler struct {
		Command string
		Kind    CommandKind
	}

	// FromDependency resolves the next parameter from Dependencies.
	FromDependency struct {
		Key string
	}

	// FromElement resolves the next parameter to a named child.
	FromElement struct {
		Name string
	}

	// FromDataContext resolves the next parameter to the data
	// context injected into the controller.
	FromDataContext struct{}

	// Optional allows the next parameter to resolve to its zero value.
	Optional struct{}

	// CommandKind identifies one of the four command events.
	CommandKind uint8
)

const (
	Executed CommandKind = iota
	CanExecute
	PreviewExecuted
	PreviewCanExecute
)

var commandKindNames = [...]string{
	"Executed", "CanExecute", "PreviewExecuted", "PreviewCanExecute",
}


// CommandKind

func (k CommandKind) String() string {
	if int(k) < len(commandKindNames) {
		return commandKindNames[k]
	}
	return "CommandKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseCommandKind converts the name of a command event to a CommandKind.
func ParseCommandKind(name string) (CommandKind, bool) {
	for i, n := range commandKindNames {
		if n == name {
			return CommandKind(i), true
		}
	}
	return 0, false
}


func (e *Element) InitWithTag(tag reflect.StructTag) error {
	if name, ok := tag.Lookup("name"); ok {
		e.Name = strings.TrimSpace(name)
	}
	return nil
}

func (e *EventHandler) InitWithTag(tag reflect.StructTag) error {
	e.Element = strings.TrimSpace(tag.Get("element"))
	e.Event = strings.TrimSpace(tag.Get("event"))
	if e.Event == "" {
		return fmt.Errorf("event handler for element %q is missing the event", e.Element)
	}
	if too, ok := tag.Lookup("handledEventsToo"); ok {
		b, err := strconv.ParseBool(too)
		if err != nil {
			return fmt.Errorf("invalid handledEventsToo %q: %w", too, err)
		}
		e.HandledEventsToo = b
	}
	return nil
}

func (c *CommandHandler) InitWithTag(tag reflect.StructTag) error {
	c.Command = strings.TrimSpace(tag.Get("command"))
	if c.Command == "" {
		return fmt.Errorf("command handler is missing the command")
	}
	if kind, ok := tag.Lookup("kind"); ok {
		k, valid := ParseCommandKind(strings.TrimSpace(kind))
		if !valid {
			return fmt.Errorf("command %q has unknown kind %q", c.Command, kind)
		}
		c.Kind = k
	}
	return nil
}

func (d *FromDependency) InitWithTag(tag reflect.StructTag) error {
	d.Key = strings.TrimSpace(tag.Get("key"))
	return nil
}

func (f *FromElement) InitWithTag(tag reflect.StructTag) error {
	f.Name = strings.TrimSpace(tag.Get("name"))
	if f.Name == "" {
		return fmt.Errorf("FromElement requires a name")
	}
	return nil
}


var (
	dataContextType     = reflect.TypeFor[DataContext]()
	elementType         = reflect.TypeFor[Element]()
	eventHandlerType    = reflect.TypeFor[EventHandler]()
	commandHandlerType  = reflect.TypeFor[CommandHandler]()
	fromDependencyType  = reflect.TypeFor[FromDependency]()
	fromElementType     = reflect.TypeFor[FromElement]()
	fromDataContextType = reflect.TypeFor[FromDataContext]()
	optionalType        = reflect.TypeFor[Optional]()
)
