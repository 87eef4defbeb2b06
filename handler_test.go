package mvc

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/miruken-go/mvc/promise"
	"github.com/miruken-go/mvc/view"
	"github.com/miruken-go/mvc/view/tree"
	"github.com/stretchr/testify/suite"
)

type (
	arityController struct {
		Direct  func(any, view.EventArgs) `mvc:"event,element=button,name=Click"`
		calls   int
		args    []view.EventArgs
		senders []any
	}

	resolverController struct {
		Model   any `mvc:"dataContext"`
		label   *tree.Element
		model   string
		utc     *Clock
		local   *Clock
		missing view.Node
		custom  string
	}

	customController struct {
		custom string
	}

	panicController struct{}

	asyncController struct {
		lock    sync.Mutex
		log     []string
		pending promise.Deferred[any]
	}

	rejectController struct{}

	customResolver struct{}
)


// arityController

func (c *arityController) NoArgs(
	_*struct{ EventHandler `element:"button" event:"Click"` },
) {
	c.calls++
}

func (c *arityController) OneArg(
	_*struct{ EventHandler `element:"button" event:"Click"` },
	e *view.RoutedEventArgs,
) {
	c.args = append(c.args, e)
}

func (c *arityController) Reversed(
	_*struct{ EventHandler `element:"button" event:"Click"` },
	e      view.EventArgs,
	sender view.Node,
) error {
	c.args = append(c.args, e)
	c.senders = append(c.senders, sender)
	return nil
}

func (c *arityController) TwoArgs(
	_*struct{ EventHandler `element:"button" event:"Click"` },
	sender any,
	e      view.EventArgs,
) {
	c.args = append(c.args, e)
	c.senders = append(c.senders, sender)
}


// resolverController

func (c *resolverController) Button_Click(
	_*struct{ FromElement `name:"label"` }, label *tree.Element,
	_*struct{ FromDataContext }, model string,
	_*struct{ FromDependency `key:"utc"` }, utc *Clock,
	local *Clock,
	_*struct{
		FromElement `name:"missing"`
		Optional
	}, missing view.Node,
) {
	c.label, c.model, c.utc, c.local, c.missing = label, model, utc, local, missing
}


// customController

func (c *customController) Button_Click(custom string) {
	c.custom = custom
}


// panicController

func (c *panicController) Button_Click() {
	panic("boom")
}


// asyncController

func (c *asyncController) append(entry string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.log = append(c.log, entry)
}

func (c *asyncController) entries() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string(nil), c.log...)
}

func (c *asyncController) First(
	_*struct{ EventHandler `element:"button" event:"Click"` },
) *promise.Promise[any] {
	return promise.Run(context.Background(), func(context.Context) (any, error) {
		time.Sleep(20 * time.Millisecond)
		c.append("first")
		return nil, nil
	})
}

func (c *asyncController) Second(
	_*struct{ EventHandler `element:"button" event:"Click"` },
) {
	c.append("second")
}

func (c *asyncController) Button_PressAsync() *promise.Promise[any] {
	return c.pending.Promise()
}


// rejectController

func (c *rejectController) Button_ClickAsync() *promise.Promise[string] {
	return promise.Reject[string](errors.New("rejected"))
}


// customResolver

func (customResolver) Accepts(param *Parameter, _ *BindingContext) bool {
	return param.Unmarked() && param.Type == reflect.TypeFor[string]()
}

func (customResolver) Resolve(param *Parameter, _ *CallContext) (reflect.Value, bool) {
	return reflect.ValueOf("custom"), true
}


type HandlerTestSuite struct {
	suite.Suite
	errors chan error
	handle bool
	root   *tree.Element
	button *tree.Element
}

func (suite *HandlerTestSuite) SetupTest() {
	suite.errors = make(chan error, 10)
	suite.handle = false
	suite.button = tree.New("button")
	suite.root = tree.New("root", suite.button, tree.New("label"))
}

func (suite *HandlerTestSuite) engine(features ...Feature) *Engine {
	handle := suite.handle
	errs := suite.errors
	setup := NewSetup(WithErrorSink(ErrorSinkFunc(func(err error) bool {
		errs <- err
		return handle
	}))).Logger(logr.Discard())
	engine, err := setup.Features(features...).Build()
	suite.Require().Nil(err)
	return engine
}

func (suite *HandlerTestSuite) attach(engine *Engine, controllers ...any) *Controllers {
	c, err := engine.NewControllers(controllers...)
	suite.Require().Nil(err)
	suite.Require().Nil(c.AttachTo(suite.root))
	suite.Require().Nil(suite.root.Initialize())
	return c
}

func (suite *HandlerTestSuite) TestArity() {
	ctrl := &arityController{}
	var direct []view.EventArgs
	ctrl.Direct = func(sender any, e view.EventArgs) {
		direct = append(direct, e)
	}
	suite.attach(suite.engine(), ctrl)

	items := EventHandlersOf(suite.root, ctrl).GetBy("button")
	suite.Require().Len(items, 1)
	suite.Equal(5, items[0].Len())
	suite.Same(suite.button, items[0].Target())

	e := &view.RoutedEventArgs{}
	suite.Nil(suite.button.Raise("Click", e))
	suite.Equal(1, ctrl.calls)
	suite.Require().Len(ctrl.args, 3)
	for _, args := range ctrl.args {
		suite.Same(e, args)
	}
	suite.Equal([]view.EventArgs{e}, direct)
	suite.Equal([]any{suite.button, suite.button}, ctrl.senders)
	suite.Equal("Click", e.Event)
	suite.Same(suite.button, e.Source)
}

func (suite *HandlerTestSuite) TestResolvers() {
	suite.Run("Chain", func() {
		suite.SetupTest()
		engine := suite.engine(InstallFeature(func(setup *SetupBuilder) error {
			deps := setup.Dependencies()
			ProvideKeyed(deps, "utc", func() *Clock { return &Clock{Now: "12:00Z"} })
			Instance(deps, &Clock{Now: "08:00"})
			return nil
		}))
		ctrl := &resolverController{}
		suite.Nil(suite.root.SetDataContext("model"))
		suite.attach(engine, ctrl)

		suite.Nil(suite.button.Raise("Click", nil))
		suite.Same(suite.root.Find("label"), ctrl.label)
		suite.Equal("model", ctrl.model)
		suite.Equal("12:00Z", ctrl.utc.Now)
		suite.Equal("08:00", ctrl.local.Now)
		suite.Nil(ctrl.missing)
	})

	suite.Run("UnresolvedAtCall", func() {
		suite.SetupTest()
		engine := suite.engine(InstallFeature(func(setup *SetupBuilder) error {
			ProvideKeyed(setup.Dependencies(), "utc", func() *Clock { return &Clock{} })
			Instance(setup.Dependencies(), &Clock{})
			return nil
		}))
		ctrl := &resolverController{}
		suite.Nil(suite.root.SetDataContext(42))
		suite.attach(engine, ctrl)

		err := suite.button.Raise("Click", nil)
		var resErr *ResolutionError
		suite.Require().True(errors.As(err, &resErr))
		suite.Equal(3, resErr.Index)
		suite.Equal(reflect.TypeFor[string](), resErr.Type)
		suite.Len(suite.errors, 1)
	})

	suite.Run("Custom", func() {
		suite.SetupTest()
		engine := suite.engine(WithResolvers(customResolver{}))
		ctrl := &customController{}
		suite.attach(engine, ctrl)
		suite.Nil(suite.button.Raise("Click", nil))
		suite.Equal("custom", ctrl.custom)
	})
}

func (suite *HandlerTestSuite) TestErrorSink() {
	suite.Run("Handled", func() {
		suite.SetupTest()
		suite.handle = true
		suite.attach(suite.engine(), &failingController{})
		suite.Nil(suite.button.Raise("Click", nil))
		err := <-suite.errors
		suite.EqualError(errors.Unwrap(err), "click failed")
	})

	suite.Run("Panic", func() {
		suite.SetupTest()
		suite.attach(suite.engine(), &panicController{})
		err := suite.button.Raise("Click", nil)
		var panicErr *PanicError
		suite.Require().True(errors.As(err, &panicErr))
		suite.Equal("boom", panicErr.Value)
		suite.Equal("Button_Click", panicErr.Member)
	})

	suite.Run("UnhandledErrors", func() {
		suite.SetupTest()
		var received []error
		unsubscribe := UnhandledErrors.Subscribe(func(e *UnhandledErrorEvent) {
			received = append(received, e.Err)
			e.Handled = true
		})
		defer unsubscribe()
		engine, err := Setup()
		suite.Require().Nil(err)
		suite.attach(engine, &failingController{})
		suite.Nil(suite.button.Raise("Click", nil))
		suite.Len(received, 1)
	})
}

func (suite *HandlerTestSuite) TestAsync() {
	suite.Run("RaiseAwaitsInOrder", func() {
		suite.SetupTest()
		ctrl := &asyncController{pending: promise.Defer[any]()}
		suite.attach(suite.engine(), ctrl)
		items := EventHandlersOf(suite.root, ctrl).GetBy("button")
		suite.Nil(items.RaiseAsync(context.Background(), "Click", suite.button, nil))
		suite.Equal([]string{"first", "second"}, ctrl.entries())
	})

	suite.Run("RaiseDoesNotAwait", func() {
		suite.SetupTest()
		ctrl := &asyncController{pending: promise.Defer[any]()}
		suite.attach(suite.engine(), ctrl)
		suite.Nil(suite.button.Raise("Click", nil))
		suite.Equal([]string{"second"}, ctrl.entries())
		suite.Eventually(func() bool {
			return len(ctrl.entries()) == 2
		}, time.Second, 5*time.Millisecond)
	})

	suite.Run("AwaitedError", func() {
		suite.SetupTest()
		ctrl := &rejectController{}
		suite.attach(suite.engine(), ctrl)
		items := EventHandlersOf(suite.root, ctrl).GetBy("button")
		err := items.RaiseAsync(context.Background(), "Click", suite.button, nil)
		var handlerErr *HandlerError
		suite.Require().True(errors.As(err, &handlerErr))
		suite.Equal("Button_ClickAsync", handlerErr.Member)
		suite.Len(suite.errors, 1)
	})

	suite.Run("ForgottenError", func() {
		suite.SetupTest()
		suite.attach(suite.engine(), &rejectController{})
		suite.Nil(suite.button.Raise("Click", nil))
		select {
		case err := <-suite.errors:
			suite.ErrorContains(err, "rejected")
		case <-time.After(time.Second):
			suite.Fail("asynchronous error not reported")
		}
	})

	suite.Run("Canceled", func() {
		suite.SetupTest()
		ctrl := &asyncController{pending: promise.Defer[any]()}
		suite.attach(suite.engine(), ctrl)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		items := EventHandlersOf(suite.root, ctrl).GetBy("button")
		err := items.RaiseAsync(ctx, "Press", suite.button, nil)
		suite.ErrorIs(err, context.Canceled)
		suite.Len(suite.errors, 0)
		ctrl.pending.Reject(errors.New("rejected after cancel"))
		select {
		case err := <-suite.errors:
			suite.ErrorContains(err, "rejected after cancel")
		case <-time.After(time.Second):
			suite.Fail("error after cancel not reported")
		}
	})
}

func (suite *HandlerTestSuite) TestInFlight() {
	suite.Run("Complete", func() {
		suite.SetupTest()
		ctrl := &asyncController{pending: promise.Defer[any]()}
		suite.attach(suite.engine(), ctrl)
		suite.Nil(suite.button.Raise("Press", nil))
		suite.Nil(suite.root.Unload())
		ctrl.pending.Reject(errors.New("late"))
		select {
		case err := <-suite.errors:
			suite.ErrorContains(err, "late")
		case <-time.After(time.Second):
			suite.Fail("late error not reported")
		}
	})

	suite.Run("Discard", func() {
		suite.SetupTest()
		ctrl := &asyncController{pending: promise.Defer[any]()}
		suite.attach(suite.engine(WithOptions(Options{InFlight: InFlightDiscard})), ctrl)
		suite.Nil(suite.button.Raise("Press", nil))
		suite.Nil(suite.root.Unload())
		ctrl.pending.Reject(errors.New("late"))
		suite.Never(func() bool {
			return len(suite.errors) > 0
		}, 50*time.Millisecond, 5*time.Millisecond)
	})

	suite.Run("DiscardWhileAttached", func() {
		suite.SetupTest()
		ctrl := &asyncController{pending: promise.Defer[any]()}
		suite.attach(suite.engine(WithOptions(Options{InFlight: InFlightDiscard})), ctrl)
		suite.Nil(suite.button.Raise("Press", nil))
		ctrl.pending.Reject(errors.New("attached"))
		select {
		case err := <-suite.errors:
			suite.ErrorContains(err, "attached")
		case <-time.After(time.Second):
			suite.Fail("error not reported")
		}
	})
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
