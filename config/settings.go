package config

import (
	"fmt"

	"github.com/miruken-go/mvc"
)

// Settings is the configuration of mvc.Options.
// Settings left out of the configuration keep their defaults.
type Settings struct {
	NamingConvention *bool  `path:"namingConvention"`
	StrictElements   *bool  `path:"strictElements"`
	InFlight         string `path:"inFlight"`
}

// Options converts the settings to mvc.Options.
func (s *Settings) Options() (mvc.Options, error) {
	var options mvc.Options
	if b := s.NamingConvention; b != nil {
		options.NamingConvention = mvc.OptionBoolOf(*b)
	}
	if b := s.StrictElements; b != nil {
		options.StrictElements = mvc.OptionBoolOf(*b)
	}
	options.InFlight = mvc.InFlightPolicy(s.InFlight)
	if err := options.Validate(); err != nil {
		return options, fmt.Errorf("config: %w", err)
	}
	return options, nil
}
