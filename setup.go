package mvc

import (
	"container/list"
	"sync"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/imdario/mergo"
	"github.com/miruken-go/mvc/internal"
	"github.com/miruken-go/mvc/view"
)

type (
	// Feature encapsulates custom setup.
	Feature interface {
		Install(setup *SetupBuilder) error
	}
	InstallFeature func(setup *SetupBuilder) error

	// SetupBuilder orchestrates the setup of an Engine.
	SetupBuilder struct {
		options   Options
		logger    *logr.Logger
		sink      ErrorSink
		deps      *Dependencies
		resolvers []ParameterResolver
		commands  view.CommandLookup
		types     *ControllerTypes
		factory   ControllerFactory
		features  []Feature
		tags      map[any]struct{}
	}
)

func (f InstallFeature) Install(
	setup *SetupBuilder,
) error {
	return f(setup)
}


// SetupBuilder

func NewSetup(features ...Feature) *SetupBuilder {
	return &SetupBuilder{features: features}
}

// Options overrides the options set so far with the
// options set in options.
func (s *SetupBuilder) Options(options Options) *SetupBuilder {
	if err := mergo.Merge(&s.options, options, mergo.WithOverride); err != nil {
		panic(err)
	}
	return s
}

func (s *SetupBuilder) Logger(logger logr.Logger) *SetupBuilder {
	s.logger = &logger
	return s
}

func (s *SetupBuilder) ErrorSink(sink ErrorSink) *SetupBuilder {
	s.sink = sink
	return s
}

// Dependencies returns the Dependencies of the Engine.
func (s *SetupBuilder) Dependencies() *Dependencies {
	if s.deps == nil {
		s.deps = NewDependencies()
	}
	return s.deps
}

// Resolvers adds resolvers consulted before the built-in ones.
func (s *SetupBuilder) Resolvers(resolvers ...ParameterResolver) *SetupBuilder {
	s.resolvers = append(s.resolvers, resolvers...)
	return s
}

func (s *SetupBuilder) Commands(commands view.CommandLookup) *SetupBuilder {
	s.commands = commands
	return s
}

// ControllerTypes returns the ControllerTypes of the Engine.
func (s *SetupBuilder) ControllerTypes() *ControllerTypes {
	if s.types == nil {
		s.types = NewControllerTypes()
	}
	return s.types
}

func (s *SetupBuilder) Factory(factory ControllerFactory) *SetupBuilder {
	s.factory = factory
	return s
}

func (s *SetupBuilder) Features(features ...Feature) *SetupBuilder {
	s.features = append(s.features, features...)
	return s
}

// CanInstall reports true the first time tag is seen so
// features install once.
func (s *SetupBuilder) CanInstall(tag any) bool {
	if tags := s.tags; tags == nil {
		s.tags = map[any]struct{}{tag: {}}
		return true
	} else if _, found := tags[tag]; !found {
		tags[tag] = struct{}{}
		return true
	}
	return false
}

func (s *SetupBuilder) Build() (*Engine, error) {
	buildErrors := s.installGraph(s.features)

	options := s.options
	if err := options.Merge(DefaultOptions); err != nil {
		buildErrors = multierror.Append(buildErrors, err)
	}
	if err := options.Validate(); err != nil {
		buildErrors = multierror.Append(buildErrors, err)
	}

	engine := &Engine{
		options:  options,
		logger:   logr.Discard(),
		sink:     s.sink,
		deps:     s.Dependencies(),
		commands: s.commands,
		types:    s.ControllerTypes(),
		factory:  s.factory,
	}
	if s.logger != nil {
		engine.logger = *s.logger
	}
	if internal.IsNil(engine.sink) {
		engine.sink = UnhandledErrors
	}
	if internal.IsNil(engine.factory) {
		engine.factory = &constructorFactory{engine}
	}
	engine.resolvers = append(append([]ParameterResolver(nil), s.resolvers...), defaultResolvers...)

	// call after setup hooks
	for _, feature := range s.features {
		if after, ok := feature.(interface {
			AfterInstall(*SetupBuilder, *Engine) error
		}); ok {
			if err := after.AfterInstall(s, engine); err != nil {
				buildErrors = multierror.Append(buildErrors, err)
			}
		}
	}

	// bind registered controller types up front
	for _, typ := range engine.types.Types() {
		if _, err := engine.describe(typ); err != nil {
			buildErrors = multierror.Append(buildErrors, err)
		}
	}

	if buildErrors != nil {
		return nil, buildErrors
	}
	return engine, nil
}

func (s *SetupBuilder) installGraph(
	features []Feature,
) (err error) {
	// traverse level-order so overrides can be applied in any order
	queue := list.New()
	for _, feature := range features {
		if !internal.IsNil(feature) {
			queue.PushBack(feature)
		}
	}
	for queue.Len() > 0 {
		front := queue.Front()
		queue.Remove(front)
		feature := front.Value.(Feature)
		if dependsOn, ok := feature.(interface {
			DependsOn() []Feature
		}); ok {
			for _, dep := range dependsOn.DependsOn() {
				if !internal.IsNil(dep) {
					queue.PushBack(dep)
				}
			}
		}
		if ie := feature.Install(s); ie != nil {
			err = multierror.Append(err, ie)
		}
	}
	return err
}


// WithOptions installs options.
func WithOptions(options Options) InstallFeature {
	return func(setup *SetupBuilder) error {
		setup.Options(options)
		return nil
	}
}

// WithErrorSink installs the ErrorSink of the Engine.
func WithErrorSink(sink ErrorSink) InstallFeature {
	return func(setup *SetupBuilder) error {
		setup.ErrorSink(sink)
		return nil
	}
}

// WithCommands installs the commands handlers are bound to.
func WithCommands(commands view.CommandLookup) InstallFeature {
	return func(setup *SetupBuilder) error {
		setup.Commands(commands)
		return nil
	}
}

// WithResolvers installs additional ParameterResolver's.
func WithResolvers(resolvers ...ParameterResolver) InstallFeature {
	return func(setup *SetupBuilder) error {
		setup.Resolvers(resolvers...)
		return nil
	}
}

// Setup builds an Engine from features.
func Setup(features ...Feature) (*Engine, error) {
	return NewSetup(features...).Build()
}

// DefaultEngine returns the Engine built with no features.
var DefaultEngine = sync.OnceValues(func() (*Engine, error) {
	return Setup()
})
