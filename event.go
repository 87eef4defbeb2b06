package mvc

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/mvc/internal"
	"github.com/miruken-go/mvc/view"
)

type (
	// EventHandlerItem binds the handlers of one event on one
	// element of the associated node.
	EventHandlerItem struct {
		element          string
		event            string
		handledEventsToo bool
		convention       bool
		handlers         []*handlerAdapter
		owner            *controllerHandlers
		target           view.Node
	}

	// EventHandlerItems is a selection of EventHandlerItem's.
	EventHandlerItems []*EventHandlerItem

	// EventHandlers holds the event handlers of one controller
	// attached to one node.
	EventHandlers struct {
		owner *controllerHandlers
		items []*EventHandlerItem
	}
)


// EventHandlerItem

func (i *EventHandlerItem) ElementName() string {
	return i.element
}

func (i *EventHandlerItem) EventName() string {
	return i.event
}

func (i *EventHandlerItem) HandledEventsToo() bool {
	return i.handledEventsToo
}

// Bound reports if the item is registered with its target.
func (i *EventHandlerItem) Bound() bool {
	return i.target != nil
}

// Target returns the node the item is registered with.
func (i *EventHandlerItem) Target() view.Node {
	return i.target
}

// Len returns the number of handlers merged into the item.
func (i *EventHandlerItem) Len() int {
	return len(i.handlers)
}

// HandleEvent is called by the target node.
func (i *EventHandlerItem) HandleEvent(sender any, e view.EventArgs) error {
	return i.Raise(sender, e)
}

// Raise calls every handler in registration order.
// Asynchronous handlers are not awaited.
func (i *EventHandlerItem) Raise(sender any, e view.EventArgs) (err error) {
	for _, h := range i.handlers {
		if invalid := h.call(sender, e); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}

// RaiseAsync calls every handler in registration order and awaits
// each asynchronous handler before calling the next.
func (i *EventHandlerItem) RaiseAsync(
	ctx    context.Context,
	sender any,
	e      view.EventArgs,
) (err error) {
	for _, h := range i.handlers {
		if invalid := h.callAsync(ctx, sender, e); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}

func (i *EventHandlerItem) matches(element string) bool {
	return i.element == element ||
		(i.convention && lowerFirst(i.element) == element)
}

func (i *EventHandlerItem) register(node view.Node) error {
	if i.target != nil {
		return nil
	}
	target := findElement(node, i.element, i.convention)
	if target == nil {
		engine := i.owner.engine
		if engine.options.StrictElements == OptionTrue {
			return fmt.Errorf("mvc: element %q for event %q not found", i.element, i.event)
		}
		engine.trace("element not found",
			"controller", i.owner.typeName(), "element", i.element, "event", i.event)
		return nil
	}
	target.AddHandler(i.event, i, i.handledEventsToo)
	i.target = target
	return nil
}

func (i *EventHandlerItem) unregister() {
	if target := i.target; target != nil {
		target.RemoveHandler(i.event, i)
		i.target = nil
	}
}


// EventHandlerItems

// Raise raises event on the items handling it.
func (items EventHandlerItems) Raise(
	event  string,
	sender any,
	e      view.EventArgs,
) (err error) {
	if e == nil {
		e = &view.RoutedEventArgs{Event: event}
	}
	for _, item := range items {
		if item.event == event {
			if invalid := item.Raise(sender, e); invalid != nil {
				err = multierror.Append(err, invalid)
			}
		}
	}
	return err
}

// RaiseAsync raises event on the items handling it and awaits
// the asynchronous handlers in order.
func (items EventHandlerItems) RaiseAsync(
	ctx    context.Context,
	event  string,
	sender any,
	e      view.EventArgs,
) (err error) {
	if e == nil {
		e = &view.RoutedEventArgs{Event: event}
	}
	for _, item := range items {
		if item.event == event {
			if invalid := item.RaiseAsync(ctx, sender, e); invalid != nil {
				err = multierror.Append(err, invalid)
			}
		}
	}
	return err
}


// EventHandlers

func (h *EventHandlers) Items() []*EventHandlerItem {
	if h == nil {
		return nil
	}
	return h.items
}

func (h *EventHandlers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.items)
}

// GetBy returns the items of the named element.
// An empty name selects the associated node, including items
// naming it that are bound to it.
func (h *EventHandlers) GetBy(element string) EventHandlerItems {
	if h == nil {
		return nil
	}
	var items EventHandlerItems
	for _, item := range h.items {
		if item.matches(element) || (element == "" && h.targetsNode(item)) {
			items = append(items, item)
		}
	}
	return items
}

func (h *EventHandlers) targetsNode(item *EventHandlerItem) bool {
	if h.owner == nil || item.target == nil || internal.IsNil(h.owner.node) {
		return false
	}
	return item.target == h.owner.node
}

// add merges handler into the item with the same element, event
// and handledEventsToo, creating the item if needed.
func (h *EventHandlers) add(spec *eventSpec, handler *handlerAdapter) {
	for _, item := range h.items {
		if item.element == spec.Element && item.event == spec.Event &&
			item.handledEventsToo == spec.HandledEventsToo {
			item.handlers = append(item.handlers, handler)
			item.convention = item.convention || spec.convention
			return
		}
	}
	h.items = append(h.items, &EventHandlerItem{
		element:          spec.Element,
		event:            spec.Event,
		handledEventsToo: spec.HandledEventsToo,
		convention:       spec.convention,
		handlers:         []*handlerAdapter{handler},
		owner:            h.owner,
	})
}

func (h *EventHandlers) register(node view.Node) (err error) {
	for _, item := range h.items {
		if invalid := item.register(node); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}

func (h *EventHandlers) unregister() {
	for _, item := range h.items {
		item.unregister()
	}
}


// findElement resolves an element name against node.
// The empty name is the node itself.
func findElement(
	node       view.Node,
	name       string,
	convention bool,
) view.Node {
	if name == "" {
		return node
	}
	if child := node.FindChild(name); !internal.IsNil(child) {
		return child
	}
	lower := name
	if convention {
		lower = lowerFirst(name)
		if lower != name {
			if child := node.FindChild(lower); !internal.IsNil(child) {
				return child
			}
		}
	}
	if own := node.Name(); own == name || own == lower {
		return node
	}
	return nil
}
