package mvc

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/mvc/view"
)

type (
	// CommandHandlerItem binds the handlers of one named command.
	CommandHandlerItem struct {
		command string
		slots   [commandKinds][]*handlerAdapter
		owner   *controllerHandlers
		cmd     *view.Command
		node    view.Node
		routed  [commandKinds]*commandRoute
	}

	// CommandHandlers holds the command handlers of one controller
	// attached to one node.
	CommandHandlers struct {
		owner *controllerHandlers
		items []*CommandHandlerItem
	}

	// commandRoute receives one routed command event for an item.
	commandRoute struct {
		item *CommandHandlerItem
		kind CommandKind
	}
)

const commandKinds = int(PreviewCanExecute) + 1

var commandEvents = [commandKinds]string{
	Executed:          view.Executed,
	CanExecute:        view.CanExecute,
	PreviewExecuted:   view.PreviewExecuted,
	PreviewCanExecute: view.PreviewCanExecute,
}


// CommandHandlerItem

func (i *CommandHandlerItem) CommandName() string {
	if i == nil {
		return ""
	}
	return i.command
}

// Command returns the command instance the item is bound to.
func (i *CommandHandlerItem) Command() *view.Command {
	if i == nil {
		return nil
	}
	return i.cmd
}

func (i *CommandHandlerItem) Bound() bool {
	return i != nil && i.node != nil
}

// Has reports if the item has handlers of kind.
func (i *CommandHandlerItem) Has(kind CommandKind) bool {
	return i != nil && len(i.slots[kind]) > 0
}

// RaiseCanExecute runs the PreviewCanExecute then CanExecute
// handlers of a bound item.  A command with Executed handlers but no CanExecute
// handler can always execute.
func (i *CommandHandlerItem) RaiseCanExecute(parameter any) (bool, error) {
	return i.raiseCanExecute(nil, false, parameter)
}

// RaiseExecuted runs the PreviewExecuted then Executed handlers.
func (i *CommandHandlerItem) RaiseExecuted(parameter any) error {
	return i.raiseExecuted(nil, false, parameter)
}

// Execute runs the executed handlers if the command can execute.
func (i *CommandHandlerItem) Execute(parameter any) (bool, error) {
	return i.execute(nil, false, parameter)
}

func (i *CommandHandlerItem) RaiseCanExecuteAsync(
	ctx       context.Context,
	parameter any,
) (bool, error) {
	return i.raiseCanExecute(ctx, true, parameter)
}

func (i *CommandHandlerItem) RaiseExecutedAsync(
	ctx       context.Context,
	parameter any,
) error {
	return i.raiseExecuted(ctx, true, parameter)
}

func (i *CommandHandlerItem) ExecuteAsync(
	ctx       context.Context,
	parameter any,
) (bool, error) {
	return i.execute(ctx, true, parameter)
}

func (i *CommandHandlerItem) raiseCanExecute(
	ctx       context.Context,
	async     bool,
	parameter any,
) (bool, error) {
	if !i.Bound() {
		return false, nil
	}
	e := &view.CanExecuteEventArgs{Command: i.cmd, Parameter: parameter}
	e.Event, e.Source = view.PreviewCanExecute, i.node
	err := i.onCanExecute(ctx, async, PreviewCanExecute, i.sender(), e)
	if !e.Handled {
		e.Event = view.CanExecute
		if invalid := i.onCanExecute(ctx, async, CanExecute, i.sender(), e); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return e.CanExecute, err
}

func (i *CommandHandlerItem) raiseExecuted(
	ctx       context.Context,
	async     bool,
	parameter any,
) error {
	if !i.Bound() {
		return nil
	}
	e := &view.ExecutedEventArgs{Command: i.cmd, Parameter: parameter}
	e.Event, e.Source = view.PreviewExecuted, i.node
	err := i.onExecuted(ctx, async, PreviewExecuted, i.sender(), e)
	if !e.Handled {
		e.Event = view.Executed
		if invalid := i.onExecuted(ctx, async, Executed, i.sender(), e); invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}

func (i *CommandHandlerItem) execute(
	ctx       context.Context,
	async     bool,
	parameter any,
) (bool, error) {
	ok, err := i.raiseCanExecute(ctx, async, parameter)
	if err != nil || !ok {
		return false, err
	}
	return true, i.raiseExecuted(ctx, async, parameter)
}

func (i *CommandHandlerItem) sender() any {
	if i.node == nil {
		return nil
	}
	return i.node
}

func (i *CommandHandlerItem) invoke(
	ctx    context.Context,
	async  bool,
	kind   CommandKind,
	sender any,
	e      view.EventArgs,
) (err error) {
	for _, h := range i.slots[kind] {
		var invalid error
		if async {
			invalid = h.callAsync(ctx, sender, e)
		} else {
			invalid = h.call(sender, e)
		}
		if invalid != nil {
			err = multierror.Append(err, invalid)
		}
	}
	return err
}

func (i *CommandHandlerItem) onCanExecute(
	ctx    context.Context,
	async  bool,
	kind   CommandKind,
	sender any,
	e      *view.CanExecuteEventArgs,
) error {
	if len(i.slots[kind]) == 0 {
		if kind == CanExecute && i.executes() {
			e.CanExecute, e.Handled = true, true
		}
		return nil
	}
	err := i.invoke(ctx, async, kind, sender, e)
	e.Handled = true
	return err
}

func (i *CommandHandlerItem) onExecuted(
	ctx    context.Context,
	async  bool,
	kind   CommandKind,
	sender any,
	e      *view.ExecutedEventArgs,
) error {
	if len(i.slots[kind]) == 0 {
		return nil
	}
	err := i.invoke(ctx, async, kind, sender, e)
	e.Handled = true
	return err
}

func (i *CommandHandlerItem) executes() bool {
	return len(i.slots[Executed]) > 0 || len(i.slots[PreviewExecuted]) > 0
}

func (i *CommandHandlerItem) matches(cmd *view.Command) bool {
	return cmd != nil && i.cmd != nil && (cmd == i.cmd || cmd.Name() == i.cmd.Name())
}

func (i *CommandHandlerItem) register(
	node   view.Node,
	lookup view.CommandLookup,
) {
	if i.node != nil {
		return
	}
	var cmd *view.Command
	if lookup != nil {
		cmd = lookup.Command(i.command)
	}
	if cmd == nil {
		i.owner.engine.trace("command not found",
			"controller", i.owner.typeName(), "command", i.command)
		return
	}
	i.cmd, i.node = cmd, node
	for k := range i.slots {
		kind := CommandKind(k)
		if len(i.slots[kind]) > 0 || (kind == CanExecute && i.executes()) {
			route := &commandRoute{item: i, kind: kind}
			node.AddHandler(commandEvents[kind], route, false)
			i.routed[kind] = route
		}
	}
}

func (i *CommandHandlerItem) unregister() {
	if i.node == nil {
		return
	}
	for k, route := range i.routed {
		if route != nil {
			i.node.RemoveHandler(commandEvents[k], route)
			i.routed[k] = nil
		}
	}
	i.node = nil
}


// commandRoute

func (r *commandRoute) HandleEvent(sender any, e view.EventArgs) error {
	item := r.item
	switch args := e.(type) {
	case *view.CanExecuteEventArgs:
		if item.matches(args.Command) {
			return item.onCanExecute(nil, false, r.kind, sender, args)
		}
	case *view.ExecutedEventArgs:
		if item.matches(args.Command) {
			return item.onExecuted(nil, false, r.kind, sender, args)
		}
	}
	return nil
}


// CommandHandlers

func (h *CommandHandlers) Items() []*CommandHandlerItem {
	if h == nil {
		return nil
	}
	return h.items
}

func (h *CommandHandlers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.items)
}

// GetBy returns the item of the named command or nil.
func (h *CommandHandlers) GetBy(command string) *CommandHandlerItem {
	if h == nil {
		return nil
	}
	for _, item := range h.items {
		if item.command == command {
			return item
		}
	}
	return nil
}

func (h *CommandHandlers) add(spec *commandSpec, handler *handlerAdapter) {
	item := h.GetBy(spec.Command)
	if item == nil {
		item = &CommandHandlerItem{command: spec.Command, owner: h.owner}
		h.items = append(h.items, item)
	}
	item.slots[spec.Kind] = append(item.slots[spec.Kind], handler)
}

func (h *CommandHandlers) register(
	node   view.Node,
	lookup view.CommandLookup,
) {
	for _, item := range h.items {
		item.register(node, lookup)
	}
}

func (h *CommandHandlers) unregister() {
	for _, item := range h.items {
		item.unregister()
	}
}
