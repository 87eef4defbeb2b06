package view

import (
	"errors"
	"fmt"
)

type (
	// Command is a named action gated by a can-execute query.
	Command struct {
		name string
	}

	// CommandLookup finds the Command bound to a name.
	CommandLookup interface {
		Command(name string) *Command
	}

	// CommandSet is a CommandLookup over a fixed set of commands.
	CommandSet map[string]*Command

	// ExecutedEventArgs is raised to execute a Command.
	ExecutedEventArgs struct {
		RoutedEventArgs
		Command   *Command
		Parameter any
	}

	// CanExecuteEventArgs is raised to ask if a Command can execute.
	// Handlers set CanExecute to allow execution.
	CanExecuteEventArgs struct {
		RoutedEventArgs
		Command    *Command
		Parameter  any
		CanExecute bool
	}
)

// Command events.
const (
	Executed          = "Executed"
	CanExecute        = "CanExecute"
	PreviewExecuted   = "PreviewExecuted"
	PreviewCanExecute = "PreviewCanExecute"
)

var ErrNilCommand = errors.New("view: command cannot be nil")


// Command

func NewCommand(name string) *Command {
	if name == "" {
		panic("name cannot be empty")
	}
	return &Command{name}
}

func (c *Command) Name() string {
	return c.name
}

func (c *Command) String() string {
	return fmt.Sprintf("Command(%s)", c.name)
}


// CommandSet

func NewCommandSet(commands ...*Command) CommandSet {
	set := make(CommandSet, len(commands))
	for _, cmd := range commands {
		set[cmd.Name()] = cmd
	}
	return set
}

func (s CommandSet) Command(name string) *Command {
	return s[name]
}


// CanExecuteCommand routes the can-execute query for cmd from target.
func CanExecuteCommand(
	target    Node,
	cmd       *Command,
	parameter any,
) (bool, error) {
	if cmd == nil {
		return false, ErrNilCommand
	}
	e := &CanExecuteEventArgs{Command: cmd, Parameter: parameter}
	if err := target.Raise(PreviewCanExecute, e); err != nil {
		return false, err
	}
	if err := target.Raise(CanExecute, e); err != nil {
		return false, err
	}
	return e.CanExecute, nil
}

// ExecuteCommand executes cmd from target if it can execute.
// It reports whether a handler executed the command.
func ExecuteCommand(
	target    Node,
	cmd       *Command,
	parameter any,
) (bool, error) {
	if ok, err := CanExecuteCommand(target, cmd, parameter); !ok || err != nil {
		return false, err
	}
	e := &ExecutedEventArgs{Command: cmd, Parameter: parameter}
	if err := target.Raise(PreviewExecuted, e); err != nil {
		return false, err
	}
	if err := target.Raise(Executed, e); err != nil {
		return false, err
	}
	return e.Handled, nil
}
