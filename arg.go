package mvc

import (
	"fmt"
	"reflect"

	"github.com/miruken-go/mvc/internal"
	"github.com/miruken-go/mvc/view"
)

type (
	// Parameter describes a handler parameter supplied by
	// a ParameterResolver.
	Parameter struct {
		Index           int
		Type            reflect.Type
		FromDependency  *FromDependency
		FromElement     *FromElement
		FromDataContext bool
		Optional        bool
	}

	// BindingContext is available to ParameterResolver's
	// when a handler is bound to a controller and node.
	BindingContext struct {
		Node         view.Node
		Controller   any
		Dependencies *Dependencies
	}

	// CallContext is available to ParameterResolver's
	// when a handler is invoked.
	CallContext struct {
		BindingContext
		Sender any
		Args   view.EventArgs
		owner  *controllerHandlers
	}

	// ParameterResolver supplies values for handler parameters.
	// Accepts is consulted once when the handler is bound and
	// Resolve on every call.  Resolve returns false if no value
	// is available so the next resolver in the chain can try.
	ParameterResolver interface {
		Accepts(param *Parameter, ctx *BindingContext) bool
		Resolve(param *Parameter, ctx *CallContext) (reflect.Value, bool)
	}

	// DependencyResolver resolves parameters from Dependencies
	// by type and optional key.
	DependencyResolver struct{}

	// ElementResolver resolves FromElement parameters.
	ElementResolver struct{}

	// DataContextResolver resolves FromDataContext parameters.
	DataContextResolver struct{}
)


// Parameter

// Unmarked reports if no source was declared for the parameter.
func (p *Parameter) Unmarked() bool {
	return p.FromDependency == nil && p.FromElement == nil && !p.FromDataContext
}

func (p *Parameter) dependencyKey() string {
	if dep := p.FromDependency; dep != nil {
		return dep.Key
	}
	return ""
}


// CallContext

// DataContext returns the data context injected into the controller.
func (c *CallContext) DataContext() any {
	if owner := c.owner; owner != nil {
		return owner.dataContext
	}
	return nil
}


// DependencyResolver

func (DependencyResolver) Accepts(
	param *Parameter,
	ctx   *BindingContext,
) bool {
	if param.FromDependency == nil && !param.Unmarked() {
		return false
	}
	return ctx.Dependencies.Has(param.Type, param.dependencyKey())
}

func (DependencyResolver) Resolve(
	param *Parameter,
	ctx   *CallContext,
) (reflect.Value, bool) {
	if dep, ok := ctx.Dependencies.Resolve(param.Type, param.dependencyKey()); ok {
		return internal.Assign(dep, param.Type)
	}
	return reflect.Value{}, false
}


// ElementResolver

func (ElementResolver) Accepts(
	param *Parameter,
	ctx   *BindingContext,
) bool {
	if param.FromElement == nil || ctx.Node == nil {
		return false
	}
	if child := findElement(ctx.Node, param.FromElement.Name, false); child != nil {
		return reflect.TypeOf(child).AssignableTo(param.Type)
	}
	return param.Optional
}

func (ElementResolver) Resolve(
	param *Parameter,
	ctx   *CallContext,
) (reflect.Value, bool) {
	if ctx.Node == nil {
		return reflect.Value{}, false
	}
	if child := findElement(ctx.Node, param.FromElement.Name, false); child != nil {
		return internal.Assign(child, param.Type)
	}
	return reflect.Value{}, false
}


// DataContextResolver

func (DataContextResolver) Accepts(
	param *Parameter,
	_     *BindingContext,
) bool {
	return param.FromDataContext
}

func (DataContextResolver) Resolve(
	param *Parameter,
	ctx   *CallContext,
) (reflect.Value, bool) {
	return internal.Assign(ctx.DataContext(), param.Type)
}


type (
	// arg produces one argument of a handler call.
	arg interface {
		resolve(ctx *CallContext) (reflect.Value, error)
	}

	// zeroArg fills spec parameters.
	zeroArg struct {
		typ reflect.Type
	}

	// senderArg passes the sender of the event.
	senderArg struct {
		typ reflect.Type
	}

	// eventArgsArg passes the event arguments.
	eventArgsArg struct {
		typ reflect.Type
	}

	// resolvedArg consults the accepting resolvers in order.
	resolvedArg struct {
		member    string
		param     *Parameter
		resolvers []ParameterResolver
	}
)

func (a zeroArg) resolve(*CallContext) (reflect.Value, error) {
	return reflect.Zero(a.typ), nil
}

func (a senderArg) resolve(ctx *CallContext) (reflect.Value, error) {
	v, _ := internal.Assign(ctx.Sender, a.typ)
	return v, nil
}

func (a eventArgsArg) resolve(ctx *CallContext) (reflect.Value, error) {
	if internal.IsNil(ctx.Args) {
		return reflect.Zero(a.typ), nil
	}
	if v, ok := internal.Assign(ctx.Args, a.typ); ok {
		return v, nil
	}
	return reflect.Value{}, fmt.Errorf(
		"event args %T are not assignable to %v", ctx.Args, a.typ)
}

func (a *resolvedArg) resolve(ctx *CallContext) (reflect.Value, error) {
	for _, resolver := range a.resolvers {
		if v, ok := resolver.Resolve(a.param, ctx); ok {
			return v, nil
		}
	}
	if a.param.Optional {
		return reflect.Zero(a.param.Type), nil
	}
	return reflect.Value{}, &ResolutionError{
		Member: a.member,
		Index:  a.param.Index,
		Type:   a.param.Type,
	}
}

// bindResolvedArg selects the resolvers accepting param.
// A required parameter no resolver accepts fails the binding.
func bindResolvedArg(
	member    string,
	param     *Parameter,
	resolvers []ParameterResolver,
	ctx       *BindingContext,
) (arg, error) {
	var accepted []ParameterResolver
	for _, resolver := range resolvers {
		if resolver.Accepts(param, ctx) {
			accepted = append(accepted, resolver)
		}
	}
	if len(accepted) == 0 && !param.Optional {
		return nil, &ResolutionError{
			Member: member,
			Index:  param.Index,
			Type:   param.Type,
		}
	}
	return &resolvedArg{member, param, accepted}, nil
}

var defaultResolvers = []ParameterResolver{
	DependencyResolver{},
	ElementResolver{},
	DataContextResolver{},
}
