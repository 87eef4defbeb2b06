package mvc

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/mvc/internal"
)

const tagKey = "mvc"

// parseFieldTag reads the binding metadata of a controller field.
//
//	mvc:"dataContext"
//	mvc:"element,name=okButton"
//	mvc:"event,element=button,name=Click,handledEventsToo"
//	mvc:"command,name=Save,kind=CanExecute"
//
// Entries are separated by ';'.
func parseFieldTag(field reflect.StructField) (metadata []any, err error) {
	tag, ok := field.Tag.Lookup(tagKey)
	if !ok {
		return nil, nil
	}
	for _, entry := range strings.Split(tag, ";") {
		if entry = strings.TrimSpace(entry); entry == "" {
			continue
		}
		if md, invalid := parseTagEntry(entry); invalid != nil {
			err = multierror.Append(err, fmt.Errorf(
				"field %v tag %q: %w", field.Name, entry, invalid))
		} else {
			metadata = append(metadata, md)
		}
	}
	return metadata, err
}

func parseTagEntry(entry string) (any, error) {
	parts := strings.Split(entry, ",")
	kind := strings.TrimSpace(parts[0])
	opts := make(map[string]string, len(parts)-1)
	for _, part := range parts[1:] {
		key, val, _ := strings.Cut(strings.TrimSpace(part), "=")
		opts[key] = strings.TrimSpace(val)
	}
	switch kind {
	case "dataContext":
		return &DataContext{}, nil
	case "element":
		return &Element{Name: opts["name"]}, nil
	case "event":
		handler := &EventHandler{Element: opts["element"], Event: opts["name"]}
		if handler.Event == "" {
			return nil, fmt.Errorf("missing event name")
		}
		if too, ok := opts["handledEventsToo"]; ok {
			if too == "" {
				handler.HandledEventsToo = true
			} else if b, err := strconv.ParseBool(too); err != nil {
				return nil, fmt.Errorf("invalid handledEventsToo %q: %w", too, err)
			} else {
				handler.HandledEventsToo = b
			}
		}
		return handler, nil
	case "command":
		handler := &CommandHandler{Command: opts["name"]}
		if handler.Command == "" {
			return nil, fmt.Errorf("missing command name")
		}
		if kind, ok := opts["kind"]; ok {
			k, valid := ParseCommandKind(kind)
			if !valid {
				return nil, fmt.Errorf("unknown command kind %q", kind)
			}
			handler.Kind = k
		}
		return handler, nil
	default:
		return nil, fmt.Errorf("unknown binding %q", kind)
	}
}

// parseSpec reads the marker fields of an anonymous spec struct.
// Member markers bind the method, parameter markers qualify the
// parameter that follows the binding struct.
func parseSpec(spec reflect.Type) (members []any, param *Parameter, err error) {
	typ := spec.Elem()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		switch ft {
		case dataContextType, elementType, eventHandlerType, commandHandlerType:
			md, invalid := internal.NewWithTag(reflect.PointerTo(ft), field.Tag)
			if invalid != nil {
				err = multierror.Append(err, fmt.Errorf(
					"spec field %v (%v): %w", field.Name, i, invalid))
				continue
			}
			members = append(members, md)
		case fromDependencyType, fromElementType, fromDataContextType, optionalType:
			md, invalid := internal.NewWithTag(reflect.PointerTo(ft), field.Tag)
			if invalid != nil {
				err = multierror.Append(err, fmt.Errorf(
					"spec field %v (%v): %w", field.Name, i, invalid))
				continue
			}
			if param == nil {
				param = &Parameter{}
			}
			switch m := md.(type) {
			case *FromDependency:
				param.FromDependency = m
			case *FromElement:
				param.FromElement = m
			case *FromDataContext:
				param.FromDataContext = true
			case *Optional:
				param.Optional = true
			}
		default:
			err = multierror.Append(err, fmt.Errorf(
				"spec field %v (%v) has unsupported type %v", field.Name, i, field.Type))
		}
	}
	if err == nil && len(members) > 0 && param != nil {
		err = fmt.Errorf("spec %v mixes member and parameter markers", spec)
	}
	if err == nil && len(members) == 0 && param == nil {
		err = fmt.Errorf("spec %v has no markers", spec)
	}
	if err == nil && param != nil {
		sources := 0
		if param.FromDependency != nil {
			sources++
		}
		if param.FromElement != nil {
			sources++
		}
		if param.FromDataContext {
			sources++
		}
		if sources > 1 {
			err = fmt.Errorf("spec %v names more than one parameter source", spec)
		}
	}
	return members, param, err
}
