package test

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/go-logr/logr/testr"
	"github.com/miruken-go/mvc"
	"github.com/miruken-go/mvc/log"
	"github.com/miruken-go/mvc/view"
	"github.com/miruken-go/mvc/view/tree"
	"github.com/stretchr/testify/suite"
)

type ButtonController struct {
	Button *tree.Element `mvc:"element,name=button"`
}

func (c *ButtonController) Button_Click() error {
	return errors.New("click failed")
}

type LogTestSuite struct {
	suite.Suite
}

func (suite *LogTestSuite) capture(verbosity int) (logr.Logger, *[]string) {
	var lines []string
	logger := funcr.New(func(prefix, args string) {
		lines = append(lines, prefix+" "+args)
	}, funcr.Options{Verbosity: verbosity})
	return logger, &lines
}

func (suite *LogTestSuite) TestLogging() {
	suite.Run("Installs", func() {
		engine, err := mvc.Setup(log.Feature(testr.New(suite.T())))
		suite.Require().Nil(err)
		suite.True(engine.Logger().Enabled())
	})

	suite.Run("Trace", func() {
		logger, lines := suite.capture(1)
		engine, err := mvc.Setup(log.Feature(logger))
		suite.Require().Nil(err)
		root := tree.New("root", tree.New("button"))
		c, err := engine.NewControllers(&ButtonController{})
		suite.Require().Nil(err)
		suite.Nil(c.AttachTo(root))
		suite.Nil(root.Initialize())
		suite.NotEmpty(*lines)
		suite.Contains((*lines)[0], "mvc")
	})

	suite.Run("Verbosity", func() {
		logger, lines := suite.capture(1)
		engine, err := mvc.Setup(log.Feature(logger, log.Verbosity(1)))
		suite.Require().Nil(err)
		suite.True(engine.Logger().Enabled())
		suite.False(engine.Logger().V(1).Enabled())
		_, err = engine.NewControllers(&ButtonController{})
		suite.Nil(err)
		suite.Empty(*lines)
	})
}

func (suite *LogTestSuite) TestErrors() {
	logger, lines := suite.capture(0)
	hub := &mvc.ErrorHub{}
	unsubscribe := log.Errors(hub, logger)
	defer unsubscribe()

	engine, err := mvc.Setup(mvc.WithErrorSink(hub))
	suite.Require().Nil(err)
	button := tree.New("button")
	root := tree.New("root", button)
	c, err := engine.NewControllers(&ButtonController{})
	suite.Require().Nil(err)
	suite.Nil(c.AttachTo(root))
	suite.Nil(root.Initialize())

	suite.NotNil(button.Raise("Click", &view.RoutedEventArgs{}))
	suite.Require().Len(*lines, 1)
	suite.Contains((*lines)[0], "click failed")
}

func TestLogTestSuite(t *testing.T) {
	suite.Run(t, new(LogTestSuite))
}
