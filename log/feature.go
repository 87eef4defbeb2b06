package log

import (
	"github.com/go-logr/logr"
	"github.com/miruken-go/mvc"
)

// Installer configures logging support.
type Installer struct {
	root      logr.Logger
	verbosity int
}

func (v *Installer) SetVerbosity(verbosity int) {
	v.verbosity = verbosity
}

func (v *Installer) Install(setup *mvc.SetupBuilder) error {
	if setup.CanInstall(&featureTag) {
		setup.Logger(v.root.WithName("mvc").V(v.verbosity))
	}
	return nil
}

// Verbosity sets the verbosity the engine logs at.
func Verbosity(verbosity int) func(installer *Installer) {
	return func(installer *Installer) {
		installer.SetVerbosity(verbosity)
	}
}

// Feature creates and configures logging support.
func Feature(
	rootLogger logr.Logger,
	config     ...func(installer *Installer),
) mvc.Feature {
	installer := &Installer{root: rootLogger}
	for _, configure := range config {
		if configure != nil {
			configure(installer)
		}
	}
	return installer
}

var featureTag byte
