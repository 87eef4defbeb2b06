package mvc

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	play "github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
	"github.com/imdario/mergo"
)

// OptionBool should be used in option structs instead of bool to
// be able to represent a bool not set.  Otherwise, the Zero value
// for of a bool cannot be distinguished from false.
type OptionBool byte

const (
	OptionNone OptionBool = iota
	OptionFalse
	OptionTrue
)

// InFlightPolicy decides what happens to asynchronous handlers
// still running when their controller detaches.
type InFlightPolicy string

const (
	// InFlightComplete lets handlers complete and reports their errors.
	InFlightComplete InFlightPolicy = "complete"
	// InFlightDiscard lets handlers complete and drops their errors.
	InFlightDiscard InFlightPolicy = "discard"
)

// Options control the binding behavior of an Engine.
type Options struct {
	NamingConvention OptionBool     `validate:"lte=2"`
	StrictElements   OptionBool     `validate:"lte=2"`
	InFlight         InFlightPolicy `validate:"omitempty,oneof=complete discard"`
}

// DefaultOptions are merged into every Options.
var DefaultOptions = Options{
	NamingConvention: OptionTrue,
	StrictElements:   OptionFalse,
	InFlight:         InFlightComplete,
}


func (b OptionBool) Bool() bool {
	switch b {
	case OptionFalse: return false
	case OptionTrue: return true
	default:
		panic("only OptionFalse and OptionTrue can convert to a bool")
	}
}

// OptionBoolOf converts b to an OptionBool.
func OptionBoolOf(b bool) OptionBool {
	if b {
		return OptionTrue
	}
	return OptionFalse
}


// Options

// Merge fills the unset options from from.
func (o *Options) Merge(from Options) error {
	return mergo.Merge(o, from)
}

// Validate checks the options and describes each violation.
func (o *Options) Validate() error {
	err := optionsValidator.Struct(o)
	if err == nil {
		return nil
	}
	var violations play.ValidationErrors
	if !errors.As(err, &violations) {
		return err
	}
	messages := make([]string, 0, len(violations))
	for _, msg := range violations.Translate(optionsTranslator) {
		messages = append(messages, msg)
	}
	sort.Strings(messages)
	return &OptionsError{messages}
}

// OptionsError reports invalid Options.
type OptionsError struct {
	Violations []string
}

func (e *OptionsError) Error() string {
	return "mvc: invalid options: " + strings.Join(e.Violations, "; ")
}


var (
	optionsValidator  = play.New()
	optionsTranslator ut.Translator
)

func init() {
	english := en.New()
	optionsTranslator, _ = ut.New(english, english).GetTranslator("en")
	if err := entrans.RegisterDefaultTranslations(optionsValidator, optionsTranslator); err != nil {
		panic(err)
	}
}
