package mvc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// HandlerName is the binding implied by a handler name.
type HandlerName struct {
	// Target is the element name, or the command name
	// when Command is true.
	Target  string
	Event   string
	Command bool
	Kind    CommandKind
	Async   bool
}

var handlerNameRegex = regexp.MustCompile(
	`^([\pL][\pL\pN]*)_([\pL][\pL\pN]*?)(Async)?$`)

// ParseHandlerName applies the naming convention to a method name.
//
//	Save_Executed            command Save, Executed
//	Save_CanExecuteAsync     command Save, CanExecute, async
//	Button_Click             element Button, event Click
//
// The suffixes Executed, CanExecute, PreviewExecuted and
// PreviewCanExecute select command handlers.
func ParseHandlerName(name string) (HandlerName, bool) {
	match := handlerNameRegex.FindStringSubmatch(name)
	if match == nil {
		return HandlerName{}, false
	}
	hn := HandlerName{
		Target: match[1],
		Event:  match[2],
		Async:  match[3] != "",
	}
	if kind, ok := ParseCommandKind(hn.Event); ok {
		hn.Command = true
		hn.Kind = kind
	}
	return hn, true
}

// lowerFirst lower-cases the first rune of name.
// Exported method names map to conventional element names.
func lowerFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsLower(r) {
		return name
	}
	var sb strings.Builder
	sb.WriteRune(unicode.ToLower(r))
	sb.WriteString(name[size:])
	return sb.String()
}
