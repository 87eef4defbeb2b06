package mvc

import (
	"errors"
	"fmt"
	"reflect"
)

type (
	// SignatureError reports a member that cannot be bound as a handler.
	SignatureError struct {
		Member string
		Reason error
	}

	// ResolutionError reports a handler parameter no
	// ParameterResolver can satisfy.
	ResolutionError struct {
		Member string
		Index  int
		Type   reflect.Type
	}

	// DescriptorError reports a controller type that failed to scan.
	DescriptorError struct {
		Type  reflect.Type
		Cause error
	}

	// ControllerError reports a controller that failed a
	// lifecycle transition.
	ControllerError struct {
		Controller any
		Op         string
		Cause      error
	}

	// HandlerError reports an error returned by a bound handler.
	HandlerError struct {
		Member string
		Cause  error
	}

	// PanicError reports a panic recovered from a bound handler.
	PanicError struct {
		Member string
		Value  any
	}
)

var (
	ErrInvalidController = errors.New("mvc: controller must be a non-nil pointer to a struct")
	ErrNotAttached       = errors.New("mvc: controllers are not attached to a node")
)


func (e *SignatureError) Error() string {
	return fmt.Sprintf("mvc: invalid handler %v: %v", e.Member, e.Reason)
}

func (e *SignatureError) Unwrap() error { return e.Reason }

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("mvc: unable to resolve parameter %d (%v) of %v",
		e.Index, e.Type, e.Member)
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("mvc: invalid controller %v: %v", e.Type, e.Cause)
}

func (e *DescriptorError) Unwrap() error { return e.Cause }

func (e *ControllerError) Error() string {
	return fmt.Sprintf("mvc: %s %T failed: %v", e.Op, e.Controller, e.Cause)
}

func (e *ControllerError) Unwrap() error { return e.Cause }

func (e *HandlerError) Error() string {
	return fmt.Sprintf("mvc: handler %v failed: %v", e.Member, e.Cause)
}

func (e *HandlerError) Unwrap() error { return e.Cause }

func (e *PanicError) Error() string {
	return fmt.Sprintf("mvc: handler %v panicked: %v", e.Member, e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
