package tree

import (
	"errors"
	"testing"

	"github.com/miruken-go/mvc/view"
	"github.com/stretchr/testify/suite"
)

type ElementTestSuite struct {
	suite.Suite
	root   *Element
	panel  *Element
	button *Element
}

func (suite *ElementTestSuite) SetupTest() {
	suite.button = New("button")
	suite.panel = New("panel", suite.button)
	suite.root = New("root", suite.panel, New("label"))
}

func (suite *ElementTestSuite) TestTree() {
	suite.Run("FindChild", func() {
		suite.Same(suite.button, suite.root.FindChild("button"))
		suite.Nil(suite.root.FindChild("missing"))
	})

	suite.Run("Parent", func() {
		suite.Same(suite.panel, suite.button.Parent())
		suite.Nil(suite.root.Parent())
	})

	suite.Run("Reparent", func() {
		other := New("other")
		other.Add(suite.button)
		suite.Nil(suite.root.FindChild("button"))
		suite.Same(other, suite.button.Parent())
	})
}

func (suite *ElementTestSuite) TestAttachedValues() {
	key := &struct{}{}
	suite.Nil(suite.root.AttachedValue(key))
	suite.root.SetAttachedValue(key, 10)
	suite.Equal(10, suite.root.AttachedValue(key))
	suite.root.SetAttachedValue(key, nil)
	suite.Nil(suite.root.AttachedValue(key))
}

func (suite *ElementTestSuite) TestRaise() {
	suite.Run("Bubbles", func() {
		var route []string
		for _, e := range []*Element{suite.root, suite.panel, suite.button} {
			e.AddHandler("Click", view.HandlerFunc(func(sender any, _ view.EventArgs) error {
				route = append(route, sender.(*Element).Name())
				return nil
			}), false)
		}
		args := &view.RoutedEventArgs{}
		suite.Nil(suite.button.Raise("Click", args))
		suite.Equal([]string{"button", "panel", "root"}, route)
		suite.Same(suite.button, args.Source)
		suite.Equal("Click", args.Event)
	})

	suite.Run("Handled", func() {
		calls := 0
		suite.button.AddHandler("Press", view.HandlerFunc(func(_ any, e view.EventArgs) error {
			e.RoutedArgs().Handled = true
			return nil
		}), false)
		suite.root.AddHandler("Press", view.HandlerFunc(func(any, view.EventArgs) error {
			calls++
			return nil
		}), false)
		suite.root.AddHandler("Press", view.HandlerFunc(func(any, view.EventArgs) error {
			calls += 10
			return nil
		}), true)
		suite.Nil(suite.button.Raise("Press", nil))
		suite.Equal(10, calls)
	})

	suite.Run("Lifecycle", func() {
		calls := 0
		suite.root.AddHandler(view.Loaded, view.HandlerFunc(func(any, view.EventArgs) error {
			calls++
			return nil
		}), false)
		suite.Nil(suite.button.Raise(view.Loaded, nil))
		suite.Equal(0, calls)
	})

	suite.Run("Errors", func() {
		calls := 0
		suite.button.AddHandler("Fail", view.HandlerFunc(func(any, view.EventArgs) error {
			return errors.New("bad")
		}), false)
		suite.button.AddHandler("Fail", view.HandlerFunc(func(any, view.EventArgs) error {
			calls++
			return nil
		}), false)
		err := suite.button.Raise("Fail", nil)
		suite.ErrorContains(err, "bad")
		suite.Equal(1, calls)
	})

	suite.Run("Remove", func() {
		calls := 0
		h := view.HandlerFunc(func(any, view.EventArgs) error {
			calls++
			return nil
		})
		suite.panel.AddHandler("Tap", h, false)
		suite.Equal(1, suite.panel.HandlerCount("Tap"))
		suite.panel.RemoveHandler("Tap", h)
		suite.Equal(0, suite.panel.HandlerCount("Tap"))
		suite.Nil(suite.panel.Raise("Tap", nil))
		suite.Equal(0, calls)
	})
}

func (suite *ElementTestSuite) TestDataContext() {
	suite.Run("Inherited", func() {
		suite.Nil(suite.root.SetDataContext("root"))
		suite.Equal("root", suite.button.DataContext())
	})

	suite.Run("Changed", func() {
		var changed []string
		for _, e := range []*Element{suite.root, suite.panel, suite.button} {
			e.AddHandler(view.DataContextChanged, view.HandlerFunc(func(sender any, e view.EventArgs) error {
				args := e.(*view.DataContextChangedEventArgs)
				changed = append(changed, sender.(*Element).Name()+"="+args.NewValue.(string))
				return nil
			}), false)
		}
		suite.Nil(suite.panel.SetDataContext("panel"))
		suite.Nil(suite.root.SetDataContext("other"))
		suite.Equal([]string{"panel=panel", "button=panel", "root=other"}, changed)
		suite.Nil(suite.panel.ClearDataContext())
		suite.Equal("other", suite.button.DataContext())
	})
}

func (suite *ElementTestSuite) TestLifecycle() {
	var events []string
	record := view.HandlerFunc(func(sender any, e view.EventArgs) error {
		events = append(events, sender.(*Element).Name()+":"+e.RoutedArgs().Event)
		return nil
	})
	suite.panel.AddHandler(view.Initialized, record, false)
	suite.panel.AddHandler(view.Unloaded, record, false)
	suite.button.AddHandler(view.Initialized, record, false)

	suite.Nil(suite.root.Initialize())
	suite.True(suite.panel.IsInitialized())
	suite.Nil(suite.root.Initialize())
	suite.Nil(suite.root.Unload())
	suite.False(suite.panel.IsInitialized())
	suite.Equal([]string{"button:Initialized", "panel:Initialized", "panel:Unloaded"}, events)
}

func TestElementTestSuite(t *testing.T) {
	suite.Run(t, new(ElementTestSuite))
}
