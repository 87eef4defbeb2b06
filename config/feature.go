package config

import (
	"fmt"

	"github.com/miruken-go/mvc"
	"github.com/miruken-go/mvc/internal"
)

type (
	// Provider defines the api to allow configuration
	// providers to expose their configuration information.
	// output can be a pointer to a struct or map[string]any.
	Provider interface {
		Unmarshal(path string, flat bool, output any) error
	}

	// Installer loads engine options from a Provider.
	Installer struct {
		provider Provider
		path     string
	}
)

// DefaultPath is where options are loaded from by default.
const DefaultPath = "mvc"

func (v *Installer) SetPath(path string) {
	v.path = path
}

func (v *Installer) Install(setup *mvc.SetupBuilder) error {
	if setup.CanInstall(&featureTag) {
		var settings Settings
		if err := v.provider.Unmarshal(v.path, false, &settings); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		options, err := settings.Options()
		if err != nil {
			return err
		}
		setup.Options(options)
	}
	return nil
}

// Path loads the options from path instead of DefaultPath.
func Path(path string) func(*Installer) {
	return func(installer *Installer) {
		installer.SetPath(path)
	}
}

// Feature creates and configures configuration support
// using the supplied configuration Provider.
func Feature(
	provider Provider,
	config   ...func(*Installer),
) mvc.Feature {
	if internal.IsNil(provider) {
		panic("provider cannot be nil")
	}
	installer := &Installer{provider: provider, path: DefaultPath}
	for _, configure := range config {
		if configure != nil {
			configure(installer)
		}
	}
	return installer
}

var featureTag byte
