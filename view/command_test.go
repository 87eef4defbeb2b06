package view_test

import (
	"testing"

	"github.com/miruken-go/mvc/view"
	"github.com/miruken-go/mvc/view/tree"
	"github.com/stretchr/testify/suite"
)

type CommandTestSuite struct {
	suite.Suite
	save *view.Command
	root *tree.Element
}

func (suite *CommandTestSuite) SetupTest() {
	suite.save = view.NewCommand("Save")
	suite.root = tree.New("root", tree.New("button"))
}

func (suite *CommandTestSuite) TestCommandSet() {
	set := view.NewCommandSet(suite.save)
	suite.Same(suite.save, set.Command("Save"))
	suite.Nil(set.Command("Load"))
}

func (suite *CommandTestSuite) TestExecute() {
	suite.Run("NoHandlers", func() {
		ok, err := view.ExecuteCommand(suite.root, suite.save, nil)
		suite.Nil(err)
		suite.False(ok)
	})

	suite.Run("Routed", func() {
		var param any
		suite.root.AddHandler(view.CanExecute, view.HandlerFunc(func(_ any, e view.EventArgs) error {
			e.(*view.CanExecuteEventArgs).CanExecute = true
			return nil
		}), false)
		suite.root.AddHandler(view.Executed, view.HandlerFunc(func(_ any, e view.EventArgs) error {
			args := e.(*view.ExecutedEventArgs)
			param = args.Parameter
			args.Handled = true
			return nil
		}), false)
		button := suite.root.FindChild("button")
		ok, err := view.ExecuteCommand(button, suite.save, 42)
		suite.Nil(err)
		suite.True(ok)
		suite.Equal(42, param)
	})

	suite.Run("NilCommand", func() {
		_, err := view.ExecuteCommand(suite.root, nil, nil)
		suite.ErrorIs(err, view.ErrNilCommand)
	})
}

func TestCommandTestSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}
