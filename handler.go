package mvc

import (
	"context"
	"errors"
	"reflect"

	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/mvc/promise"
	"github.com/miruken-go/mvc/view"
)

// handlerAdapter normalizes a bound field or method into a
// single calling convention.
type handlerAdapter struct {
	owner  *controllerHandlers
	spec   *handlerSpec
	fun    reflect.Value
	args   []arg
	direct func(sender any, e view.EventArgs) error
}

func newHandlerAdapter(
	owner     *controllerHandlers,
	spec      *handlerSpec,
	fun       reflect.Value,
	resolvers []ParameterResolver,
) (*handlerAdapter, error) {
	h := &handlerAdapter{owner: owner, spec: spec, fun: fun}
	if spec.direct {
		switch f := fun.Interface().(type) {
		case func(any, view.EventArgs):
			h.direct = func(sender any, e view.EventArgs) error {
				f(sender, e)
				return nil
			}
		case func(any, view.EventArgs) error:
			h.direct = f
		}
		if h.direct != nil {
			return h, nil
		}
	}
	var invalid error
	ctx := owner.bindingContext()
	h.args = make([]arg, len(spec.args))
	for i, as := range spec.args {
		switch as.kind {
		case argZero:
			h.args[i] = zeroArg{as.typ}
		case argSender:
			h.args[i] = senderArg{as.typ}
		case argEventArgs:
			h.args[i] = eventArgsArg{as.typ}
		case argResolved:
			a, err := bindResolvedArg(spec.member.name, as.param, resolvers, ctx)
			if err != nil {
				invalid = multierror.Append(invalid, err)
				continue
			}
			h.args[i] = a
		}
	}
	if invalid != nil {
		return nil, invalid
	}
	return h, nil
}

func (h *handlerAdapter) name() string {
	return h.spec.member.name
}

// invoke calls the handler.  Errors are reported to the sink and
// returned only if the sink did not handle them.  Asynchronous
// handlers return their promise.
func (h *handlerAdapter) invoke(
	sender any,
	e      view.EventArgs,
) (p promise.Reflect, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, h.report(&PanicError{h.name(), r})
		}
	}()

	if h.direct != nil {
		if invalid := h.direct(sender, e); invalid != nil {
			return nil, h.report(&HandlerError{h.name(), invalid})
		}
		return nil, nil
	}

	ctx := &CallContext{
		BindingContext: *h.owner.bindingContext(),
		Sender:         sender,
		Args:           e,
		owner:          h.owner,
	}
	args := make([]reflect.Value, len(h.args))
	for i, a := range h.args {
		v, invalid := a.resolve(ctx)
		if invalid != nil {
			return nil, h.report(invalid)
		}
		args[i] = v
	}

	out := h.fun.Call(args)
	switch {
	case h.spec.returnsError:
		if !out[0].IsNil() {
			return nil, h.report(&HandlerError{h.name(), out[0].Interface().(error)})
		}
	case h.spec.async:
		if !out[0].IsNil() {
			return out[0].Interface().(promise.Reflect), nil
		}
	}
	return nil, nil
}

// call invokes the handler without waiting for asynchronous completion.
func (h *handlerAdapter) call(sender any, e view.EventArgs) error {
	p, err := h.invoke(sender, e)
	if p != nil {
		h.forget(p)
	}
	return err
}

// callAsync invokes the handler and waits for asynchronous completion.
func (h *handlerAdapter) callAsync(
	ctx    context.Context,
	sender any,
	e      view.EventArgs,
) error {
	p, err := h.invoke(sender, e)
	if err != nil || p == nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err = p.AwaitAny(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			// the handler keeps running, its outcome goes to the sink
			h.forget(p)
			return err
		}
		return h.report(&HandlerError{h.name(), err})
	}
	return nil
}

func (h *handlerAdapter) forget(p promise.Reflect) {
	go func() {
		if _, err := p.AwaitAny(context.Background()); err != nil {
			h.reportLate(&HandlerError{h.name(), err})
		}
	}()
}

func (h *handlerAdapter) report(err error) error {
	if h.owner.engine.sink.UnhandledError(err) {
		return nil
	}
	return err
}

// reportLate reports the failure of a handler nobody waits for.
func (h *handlerAdapter) reportLate(err error) {
	owner := h.owner
	engine := owner.engine
	if !owner.attached.Load() && engine.options.InFlight == InFlightDiscard {
		engine.trace("discarded late handler error",
			"controller", owner.typeName(), "handler", h.name(), "error", err.Error())
		return
	}
	if !engine.sink.UnhandledError(err) {
		engine.logger.Error(err, "unhandled asynchronous handler error",
			"controller", owner.typeName(), "handler", h.name())
	}
}
