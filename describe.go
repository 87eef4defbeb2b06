package mvc

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/mvc/internal"
	"github.com/miruken-go/mvc/promise"
	"github.com/miruken-go/mvc/view"
)

type (
	// BindingKind classifies a BindingSpec.
	BindingKind uint8

	// BindingSpec describes one binding discovered on a controller.
	BindingSpec struct {
		Member           string
		Kind             BindingKind
		Element          string
		Event            string
		HandledEventsToo bool
		Command          string
		CommandKind      CommandKind
		Convention       bool
		Async            bool
		Target           view.Node
	}

	// descriptor is the binding metadata of a controller type.
	// It is computed once per type and shared by all instances.
	descriptor struct {
		typ         reflect.Type
		dataContext *injectSpec
		elements    []*injectSpec
		events      []*eventSpec
		commands    []*commandSpec
	}

	memberRef struct {
		name   string
		field  []int
		method int
	}

	injectSpec struct {
		member       memberRef
		name         string
		typ          reflect.Type
		returnsError bool
		convention   bool
	}

	eventSpec struct {
		EventHandler
		convention bool
		handler    *handlerSpec
	}

	commandSpec struct {
		CommandHandler
		convention bool
		handler    *handlerSpec
	}

	handlerSpec struct {
		member       memberRef
		args         []argSpec
		async        bool
		returnsError bool
		direct       bool
	}

	argKind uint8

	argSpec struct {
		kind  argKind
		typ   reflect.Type
		param *Parameter
	}
)

const (
	BindDataContext BindingKind = iota
	BindElement
	BindEvent
	BindCommand
)

const (
	argZero argKind = iota
	argSender
	argEventArgs
	argResolved
)


func (k BindingKind) String() string {
	switch k {
	case BindDataContext: return "DataContext"
	case BindElement:     return "Element"
	case BindEvent:       return "Event"
	case BindCommand:     return "Command"
	default:              return fmt.Sprintf("BindingKind(%d)", k)
	}
}


// memberRef

func (m memberRef) isField() bool {
	return m.field != nil
}

// value returns the field or bound method of the controller.
func (m memberRef) value(controller reflect.Value) (reflect.Value, error) {
	if m.isField() {
		return controller.Elem().FieldByIndexErr(m.field)
	}
	return controller.Method(m.method), nil
}


// describe scans a controller type for binding metadata.
// Fields are visited in declaration order.  Methods with explicit
// metadata are visited before methods bound by naming convention,
// both in method set order.
func describe(
	typ        reflect.Type,
	convention bool,
) (*descriptor, error) {
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return nil, &DescriptorError{typ, ErrInvalidController}
	}
	d := &descriptor{typ: typ}

	var invalid error
	for _, field := range reflect.VisibleFields(typ.Elem()) {
		metadata, err := parseFieldTag(field)
		if err != nil {
			invalid = multierror.Append(invalid, err)
			continue
		}
		if len(metadata) > 0 && !field.IsExported() {
			invalid = multierror.Append(invalid, fmt.Errorf(
				"field %v must be exported to be bound", field.Name))
			continue
		}
		for _, md := range metadata {
			if err := d.addField(field, md); err != nil {
				invalid = multierror.Append(invalid, err)
			}
		}
	}

	var conventional []reflect.Method
	for i := 0; i < typ.NumMethod(); i++ {
		method := typ.Method(i)
		if method.Type.NumIn() > 1 && internal.IsAnonymousSpec(method.Type.In(1)) {
			members, param, err := parseSpec(method.Type.In(1))
			if err != nil {
				invalid = multierror.Append(invalid, &SignatureError{method.Name, err})
				continue
			}
			if param == nil {
				if err := d.addMethod(method, members); err != nil {
					invalid = multierror.Append(invalid, err)
				}
				continue
			}
		}
		if convention {
			conventional = append(conventional, method)
		}
	}
	for _, method := range conventional {
		if err := d.addConventional(method); err != nil {
			invalid = multierror.Append(invalid, err)
		}
	}

	if invalid != nil {
		return nil, &DescriptorError{typ, invalid}
	}
	return d, nil
}

func (d *descriptor) addField(
	field    reflect.StructField,
	metadata any,
) error {
	member := memberRef{name: field.Name, field: field.Index}
	switch md := metadata.(type) {
	case *DataContext:
		d.dataContext = &injectSpec{member: member, typ: field.Type}
	case *Element:
		inject := &injectSpec{member: member, name: md.Name, typ: field.Type}
		if inject.name == "" {
			inject.name, inject.convention = field.Name, true
		}
		d.elements = append(d.elements, inject)
	case *EventHandler:
		handler, err := analyzeField(member, field)
		if err != nil {
			return err
		}
		d.events = append(d.events, &eventSpec{EventHandler: *md, handler: handler})
	case *CommandHandler:
		handler, err := analyzeField(member, field)
		if err != nil {
			return err
		}
		d.commands = append(d.commands, &commandSpec{CommandHandler: *md, handler: handler})
	}
	return nil
}

func (d *descriptor) addMethod(
	method   reflect.Method,
	metadata []any,
) (err error) {
	member := memberRef{name: method.Name, method: method.Index}
	var handler *handlerSpec
	for _, md := range metadata {
		switch md := md.(type) {
		case *DataContext:
			inject, invalid := analyzeInjector(member, method.Type)
			if invalid != nil {
				err = multierror.Append(err, invalid)
				continue
			}
			d.dataContext = inject
		case *Element:
			inject, invalid := analyzeInjector(member, method.Type)
			if invalid != nil {
				err = multierror.Append(err, invalid)
				continue
			}
			inject.name = md.Name
			if inject.name == "" {
				inject.name, inject.convention = method.Name, true
			}
			d.elements = append(d.elements, inject)
		case *EventHandler, *CommandHandler:
			if handler == nil {
				var invalid error
				if handler, invalid = analyzeHandler(member, method.Type, 1, true); invalid != nil {
					return multierror.Append(err, invalid)
				}
			}
			if eh, ok := md.(*EventHandler); ok {
				d.events = append(d.events, &eventSpec{EventHandler: *eh, handler: handler})
			} else {
				ch := md.(*CommandHandler)
				d.commands = append(d.commands, &commandSpec{CommandHandler: *ch, handler: handler})
			}
		}
	}
	return err
}

func (d *descriptor) addConventional(method reflect.Method) error {
	hn, ok := ParseHandlerName(method.Name)
	if !ok {
		return nil
	}
	member := memberRef{name: method.Name, method: method.Index}
	handler, err := analyzeHandler(member, method.Type, 1, false)
	if err != nil {
		return err
	}
	if hn.Command {
		d.commands = append(d.commands, &commandSpec{
			CommandHandler: CommandHandler{Command: hn.Target, Kind: hn.Kind},
			convention:     true,
			handler:        handler,
		})
	} else {
		d.events = append(d.events, &eventSpec{
			EventHandler: EventHandler{Element: hn.Target, Event: hn.Event},
			convention:   true,
			handler:      handler,
		})
	}
	return nil
}

// specs lists the bindings of the descriptor in discovery order.
func (d *descriptor) specs() []BindingSpec {
	var specs []BindingSpec
	if dc := d.dataContext; dc != nil {
		specs = append(specs, BindingSpec{Member: dc.member.name, Kind: BindDataContext})
	}
	for _, el := range d.elements {
		specs = append(specs, BindingSpec{
			Member:     el.member.name,
			Kind:       BindElement,
			Element:    el.name,
			Convention: el.convention,
		})
	}
	for _, ev := range d.events {
		specs = append(specs, BindingSpec{
			Member:           ev.handler.member.name,
			Kind:             BindEvent,
			Element:          ev.Element,
			Event:            ev.Event,
			HandledEventsToo: ev.HandledEventsToo,
			Convention:       ev.convention,
			Async:            ev.handler.async,
		})
	}
	for _, cmd := range d.commands {
		specs = append(specs, BindingSpec{
			Member:      cmd.handler.member.name,
			Kind:        BindCommand,
			Command:     cmd.Command,
			CommandKind: cmd.Kind,
			Convention:  cmd.convention,
			Async:       cmd.handler.async,
		})
	}
	return specs
}

func analyzeField(
	member memberRef,
	field  reflect.StructField,
) (*handlerSpec, error) {
	if field.Type.Kind() != reflect.Func {
		return nil, &SignatureError{member.name, fmt.Errorf(
			"field type %v is not a function", field.Type)}
	}
	return analyzeHandler(member, field.Type, 0, false)
}

// analyzeInjector validates func(receiver, spec, value) [error].
func analyzeInjector(
	member memberRef,
	funTyp reflect.Type,
) (*injectSpec, error) {
	if funTyp.NumIn() != 3 || funTyp.IsVariadic() {
		return nil, &SignatureError{member.name,
			errors.New("injection methods take the binding struct and one value")}
	}
	inject := &injectSpec{member: member, typ: funTyp.In(2)}
	switch funTyp.NumOut() {
	case 0:
	case 1:
		if funTyp.Out(0) != internal.ErrorType {
			return nil, &SignatureError{member.name,
				fmt.Errorf("injection methods can only return error, found %v", funTyp.Out(0))}
		}
		inject.returnsError = true
	default:
		return nil, &SignatureError{member.name,
			errors.New("injection methods can only return error")}
	}
	return inject, nil
}

// analyzeHandler classifies the parameters of a handler function
// beginning at offset.  A leading spec is passed as nil.
func analyzeHandler(
	member  memberRef,
	funTyp  reflect.Type,
	offset  int,
	hasSpec bool,
) (*handlerSpec, error) {
	if funTyp.IsVariadic() {
		return nil, &SignatureError{member.name, errors.New("variadic handlers are not supported")}
	}
	spec := &handlerSpec{member: member}
	start := offset
	if hasSpec {
		spec.args = append(spec.args, argSpec{kind: argZero, typ: funTyp.In(offset)})
		start++
	}

	var invalid error
	var pending *Parameter
	senders, eventArgs, plain := 0, 0, 0
	for i := start; i < funTyp.NumIn(); i++ {
		pt := funTyp.In(i)
		index := i - offset
		if internal.IsAnonymousSpec(pt) {
			members, param, err := parseSpec(pt)
			switch {
			case err != nil:
				invalid = multierror.Append(invalid, err)
			case len(members) > 0:
				invalid = multierror.Append(invalid, fmt.Errorf(
					"parameter %d: member markers must be in the first parameter", index))
			case pending != nil:
				invalid = multierror.Append(invalid, fmt.Errorf(
					"parameter %d: consecutive parameter specs", index))
			default:
				pending = param
			}
			spec.args = append(spec.args, argSpec{kind: argZero, typ: pt})
			continue
		}
		if pending != nil {
			pending.Index, pending.Type = index, pt
			spec.args = append(spec.args, argSpec{kind: argResolved, typ: pt, param: pending})
			pending = nil
			continue
		}
		plain++
		switch {
		case pt == internal.AnyType || pt == nodeType:
			senders++
			spec.args = append(spec.args, argSpec{kind: argSender, typ: pt})
		case pt.Implements(eventArgsType):
			eventArgs++
			spec.args = append(spec.args, argSpec{kind: argEventArgs, typ: pt})
		default:
			spec.args = append(spec.args, argSpec{
				kind:  argResolved,
				typ:   pt,
				param: &Parameter{Index: index, Type: pt},
			})
		}
	}
	if pending != nil {
		invalid = multierror.Append(invalid, errors.New("parameter spec is not followed by a parameter"))
	}
	if senders > 1 {
		invalid = multierror.Append(invalid, errors.New("more than one sender parameter"))
	}
	if eventArgs > 1 {
		invalid = multierror.Append(invalid, errors.New("more than one event args parameter"))
	}

	switch funTyp.NumOut() {
	case 0:
	case 1:
		out := funTyp.Out(0)
		if out == internal.ErrorType {
			spec.returnsError = true
		} else if _, ok := promise.Inspect(out); ok {
			spec.async = true
		} else {
			invalid = multierror.Append(invalid, fmt.Errorf(
				"handlers can only return error or a promise, found %v", out))
		}
	default:
		invalid = multierror.Append(invalid, errors.New(
			"handlers can only return error or a promise"))
	}

	if invalid != nil {
		return nil, &SignatureError{member.name, invalid}
	}

	spec.direct = !hasSpec && plain == 2 && len(spec.args) == 2 &&
		spec.args[0].typ == internal.AnyType && spec.args[1].typ == eventArgsType &&
		!spec.async
	return spec, nil
}

var (
	nodeType      = reflect.TypeFor[view.Node]()
	eventArgsType = reflect.TypeFor[view.EventArgs]()
)
