package mvc

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/miruken-go/mvc/view"
	"github.com/miruken-go/mvc/view/tree"
	"github.com/stretchr/testify/suite"
)

type (
	formController struct {
		Model   any           `mvc:"dataContext"`
		Button  *tree.Element `mvc:"element"`
		Caption view.Node     `mvc:"element,name=label"`
		Clicked func()        `mvc:"event,element=button,name=Click;event,element=button,name=DoubleClick"`
		Saved   func(*view.ExecutedEventArgs) `mvc:"command,name=Save"`
	}

	badArgsController struct{}
	badResultController struct{}
	unexportedController struct {
		button *tree.Element `mvc:"element"`
	}
	badTagController struct {
		Button *tree.Element `mvc:"widget"`
	}
	badSpecController struct{}
	mixedSpecController struct{}
	noConventionController struct{}
)

func (c *formController) Loaded(
	_*struct{ EventHandler `event:"Loaded"` },
) {
}

func (c *formController) Button_Click(e *view.RoutedEventArgs) {}

func (c *formController) Save_CanExecute(e *view.CanExecuteEventArgs) {
	e.CanExecute = true
}

func (c *formController) Reset() {}

func (c *badArgsController) Button_Click(a, b *view.RoutedEventArgs) {}

func (c *badResultController) Button_Click() int { return 0 }

func (c *badSpecController) Click(
	_*struct{ EventHandler `element:"button"` },
) {
}

func (c *mixedSpecController) Click(
	_*struct{
		EventHandler `event:"Click"`
		Optional
	},
) {
}

func (c *noConventionController) Button_Click() {}

type DescribeTestSuite struct {
	suite.Suite
	engine *Engine
	root   *tree.Element
}

func (suite *DescribeTestSuite) SetupTest() {
	engine, err := Setup()
	suite.Require().Nil(err)
	suite.engine = engine
	suite.root = tree.New("form", tree.New("button"), tree.New("label"))
}

func (suite *DescribeTestSuite) TestScan() {
	suite.Run("DiscoveryOrder", func() {
		specs, err := suite.engine.Scan(&formController{}, nil)
		suite.Require().Nil(err)
		expected := []BindingSpec{
			{Member: "Model", Kind: BindDataContext},
			{Member: "Button", Kind: BindElement, Element: "Button", Convention: true},
			{Member: "Caption", Kind: BindElement, Element: "label"},
			{Member: "Clicked", Kind: BindEvent, Element: "button", Event: "Click"},
			{Member: "Clicked", Kind: BindEvent, Element: "button", Event: "DoubleClick"},
			{Member: "Loaded", Kind: BindEvent, Event: "Loaded"},
			{Member: "Button_Click", Kind: BindEvent, Element: "Button", Event: "Click", Convention: true},
			{Member: "Saved", Kind: BindCommand, Command: "Save", CommandKind: Executed},
			{Member: "Save_CanExecute", Kind: BindCommand, Command: "Save", CommandKind: CanExecute, Convention: true},
		}
		if diff := cmp.Diff(expected, specs, cmpopts.IgnoreFields(BindingSpec{}, "Target")); diff != "" {
			suite.Fail("unexpected bindings (-want +got)", diff)
		}
	})

	suite.Run("Targets", func() {
		specs, err := suite.engine.Scan(&formController{}, suite.root)
		suite.Require().Nil(err)
		button, label := suite.root.Find("button"), suite.root.Find("label")
		targets := map[string]view.Node{}
		for _, spec := range specs {
			targets[spec.Member+"/"+spec.Event] = spec.Target
		}
		suite.Same(suite.root, targets["Model/"])
		suite.Same(button, targets["Button/"])
		suite.Same(label, targets["Caption/"])
		suite.Same(button, targets["Clicked/Click"])
		suite.Same(suite.root, targets["Loaded/Loaded"])
		suite.Same(button, targets["Button_Click/Click"])
		suite.Same(suite.root, targets["Saved/"])
	})

	suite.Run("Deterministic", func() {
		first, err := suite.engine.Scan(&formController{}, nil)
		suite.Require().Nil(err)
		second, err := suite.engine.Scan(&formController{}, nil)
		suite.Require().Nil(err)
		suite.Equal(first, second)
	})

	suite.Run("Cached", func() {
		typ := (*formController)(nil)
		first, err := suite.engine.describe(reflect.TypeOf(typ))
		suite.Require().Nil(err)
		second, err := suite.engine.describe(reflect.TypeOf(typ))
		suite.Require().Nil(err)
		suite.Same(first, second)
	})

	suite.Run("NoConvention", func() {
		engine, err := Setup(WithOptions(Options{NamingConvention: OptionFalse}))
		suite.Require().Nil(err)
		specs, err := engine.Scan(&noConventionController{}, nil)
		suite.Nil(err)
		suite.Empty(specs)
	})
}

func (suite *DescribeTestSuite) TestSignatureErrors() {
	suite.Run("TwoEventArgs", func() {
		_, err := suite.engine.Scan(&badArgsController{}, nil)
		var sigErr *SignatureError
		suite.Require().True(errors.As(err, &sigErr))
		suite.Equal("Button_Click", sigErr.Member)
	})

	suite.Run("Result", func() {
		_, err := suite.engine.Scan(&badResultController{}, nil)
		var sigErr *SignatureError
		suite.True(errors.As(err, &sigErr))
	})

	suite.Run("MissingEvent", func() {
		_, err := suite.engine.Scan(&badSpecController{}, nil)
		var sigErr *SignatureError
		suite.Require().True(errors.As(err, &sigErr))
		suite.Equal("Click", sigErr.Member)
	})

	suite.Run("MixedSpec", func() {
		_, err := suite.engine.Scan(&mixedSpecController{}, nil)
		var sigErr *SignatureError
		suite.True(errors.As(err, &sigErr))
	})

	suite.Run("UnexportedField", func() {
		_, err := suite.engine.Scan(&unexportedController{}, nil)
		var descErr *DescriptorError
		suite.Require().True(errors.As(err, &descErr))
		suite.Contains(err.Error(), "must be exported")
	})

	suite.Run("UnknownTag", func() {
		_, err := suite.engine.Scan(&badTagController{}, nil)
		suite.NotNil(err)
		suite.Contains(err.Error(), `unknown binding "widget"`)
	})

	suite.Run("NotAPointer", func() {
		_, err := suite.engine.Scan(formController{}, nil)
		suite.ErrorIs(err, ErrInvalidController)
	})

	suite.Run("Nil", func() {
		_, err := suite.engine.Scan((*formController)(nil), nil)
		suite.ErrorIs(err, ErrInvalidController)
	})
}

func TestDescribeTestSuite(t *testing.T) {
	suite.Run(t, new(DescribeTestSuite))
}
